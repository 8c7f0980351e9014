package ui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/saravenpi/switchboard/internal/backend"
	"github.com/saravenpi/switchboard/internal/config"
	"github.com/saravenpi/switchboard/internal/enrich"
	"github.com/saravenpi/switchboard/internal/models"
)

// Backend is the subset of *backend.Client the views call.
type Backend interface {
	ListSubaccounts(ctx context.Context) ([]models.Subaccount, error)
	GetSubaccount(ctx context.Context, sid string) (models.Subaccount, error)
	CreateSubaccount(ctx context.Context, friendlyName string) (models.Subaccount, error)
	RenameSubaccount(ctx context.Context, sid, friendlyName string) (models.Subaccount, error)
	CloseSubaccount(ctx context.Context, sid string) error
	FetchBadges(ctx context.Context, sid string) (models.Badges, error)

	ListPhoneNumbers(ctx context.Context, sid string) ([]models.PhoneNumber, error)
	GetPhoneNumber(ctx context.Context, sid, phoneSID string) (models.PhoneNumber, error)
	ReleasePhoneNumber(ctx context.Context, sid, phoneSID string) error
	RemoveEmergencyAddress(ctx context.Context, sid, phoneSID string) error

	ListConversations(ctx context.Context, sid, phoneNumber string) ([]models.Conversation, error)
	ListMessages(ctx context.Context, sid, conversationSID string) ([]models.Message, error)
	GetMessage(ctx context.Context, sid, conversationSID, messageSID string) (models.MessageDetail, error)

	PlaceCall(ctx context.Context, from, to string) (models.Call, error)
	Hangup(ctx context.Context, callSID string) error
}

var _ Backend = (*backend.Client)(nil)

// Env carries the dependencies shared by every screen.
type Env struct {
	Ctx       context.Context
	Backend   Backend
	Scheduler *enrich.Scheduler
	Log       *zap.Logger
	Config    *config.Config
}

func (e Env) ctx() context.Context {
	if e.Ctx == nil {
		return context.Background()
	}
	return e.Ctx
}

func (e Env) logger() *zap.Logger {
	if e.Log == nil {
		return zap.NewNop()
	}
	return e.Log
}

func (e Env) pageSize() int {
	if e.Config == nil {
		return 0
	}
	return e.Config.PageSize
}

// failure logs err and returns the text shown to the user. Validation
// errors are shown as-is since they describe what to fix.
func (e Env) failure(err error, userMessage string) string {
	var input *backend.InputError
	if errors.As(err, &input) {
		return input.Message
	}
	e.logger().Error(userMessage, zap.Error(err))
	return userMessage
}

type screen int

const (
	screenMenu screen = iota
	screenSubaccounts
	screenDetail
	screenConversations
	screenMessages
	screenCalls
)

type navigateMsg struct {
	to screen
}

func navigate(to screen) tea.Cmd {
	return func() tea.Msg { return navigateMsg{to: to} }
}

type selectSubaccountMsg struct {
	sub models.Subaccount
}

type selectPhoneNumberMsg struct {
	sid    string
	number models.PhoneNumber
}

type selectConversationMsg struct {
	sid          string
	conversation models.Conversation
}

type badgeResultMsg struct {
	result enrich.Result
}

// waitForBadge blocks on the scheduler's result stream; the app re-arms
// it after every delivery.
func waitForBadge(results <-chan enrich.Result) tea.Cmd {
	if results == nil {
		return nil
	}
	return func() tea.Msg {
		r, ok := <-results
		if !ok {
			return nil
		}
		return badgeResultMsg{result: r}
	}
}
