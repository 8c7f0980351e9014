package ui

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap/zaptest"

	"github.com/saravenpi/switchboard/internal/config"
	"github.com/saravenpi/switchboard/internal/enrich"
	"github.com/saravenpi/switchboard/internal/models"
)

// fakeBackend is an in-memory Backend recording every mutating call.
type fakeBackend struct {
	mu sync.Mutex

	subaccounts   []models.Subaccount
	badges        map[string]models.Badges
	numbers       map[string][]models.PhoneNumber
	conversations []models.Conversation
	messages      []models.Message
	detail        models.MessageDetail

	created  []string
	closed   []string
	released []string
	cleared  []string
	hungUp   []string
	calls    int

	hangupErr error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		subaccounts: []models.Subaccount{
			{SID: "AC001", FriendlyName: "Alpha"},
			{SID: "AC002", FriendlyName: "Bravo"},
			{SID: "AC003", FriendlyName: "Charlie"},
		},
		badges: map[string]models.Badges{},
		numbers: map[string][]models.PhoneNumber{
			"AC001": {
				{SID: "PN1", Number: "+15550000001", EmergencyAddressSID: "AD1"},
				{SID: "PN2", Number: "+15550000002"},
			},
		},
	}
}

func (f *fakeBackend) ListSubaccounts(ctx context.Context) ([]models.Subaccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Subaccount(nil), f.subaccounts...), nil
}

func (f *fakeBackend) GetSubaccount(ctx context.Context, sid string) (models.Subaccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.subaccounts {
		if s.SID == sid {
			return s, nil
		}
	}
	return models.Subaccount{}, fmt.Errorf("subaccount %s not found", sid)
}

func (f *fakeBackend) CreateSubaccount(ctx context.Context, friendlyName string) (models.Subaccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, friendlyName)
	sub := models.Subaccount{SID: fmt.Sprintf("ACnew%d", len(f.created)), FriendlyName: friendlyName}
	f.subaccounts = append(f.subaccounts, sub)
	return sub, nil
}

func (f *fakeBackend) RenameSubaccount(ctx context.Context, sid, friendlyName string) (models.Subaccount, error) {
	return models.Subaccount{SID: sid, FriendlyName: friendlyName}, nil
}

func (f *fakeBackend) CloseSubaccount(ctx context.Context, sid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = append(f.closed, sid)
	return nil
}

func (f *fakeBackend) FetchBadges(ctx context.Context, sid string) (models.Badges, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.badges[sid], nil
}

func (f *fakeBackend) ListPhoneNumbers(ctx context.Context, sid string) ([]models.PhoneNumber, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.PhoneNumber(nil), f.numbers[sid]...), nil
}

func (f *fakeBackend) GetPhoneNumber(ctx context.Context, sid, phoneSID string) (models.PhoneNumber, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.numbers[sid] {
		if n.SID == phoneSID {
			return n, nil
		}
	}
	return models.PhoneNumber{}, fmt.Errorf("phone number %s not found", phoneSID)
}

func (f *fakeBackend) ReleasePhoneNumber(ctx context.Context, sid, phoneSID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released = append(f.released, sid+"/"+phoneSID)
	return nil
}

func (f *fakeBackend) RemoveEmergencyAddress(ctx context.Context, sid, phoneSID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = append(f.cleared, sid+"/"+phoneSID)
	return nil
}

func (f *fakeBackend) ListConversations(ctx context.Context, sid, phoneNumber string) ([]models.Conversation, error) {
	return f.conversations, nil
}

func (f *fakeBackend) ListMessages(ctx context.Context, sid, conversationSID string) ([]models.Message, error) {
	return f.messages, nil
}

func (f *fakeBackend) GetMessage(ctx context.Context, sid, conversationSID, messageSID string) (models.MessageDetail, error) {
	return f.detail, nil
}

func (f *fakeBackend) PlaceCall(ctx context.Context, from, to string) (models.Call, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return models.Call{SID: fmt.Sprintf("CA%d", f.calls), From: from, To: to, Status: "queued"}, nil
}

func (f *fakeBackend) Hangup(ctx context.Context, callSID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hangupErr != nil {
		return f.hangupErr
	}
	f.hungUp = append(f.hungUp, callSID)
	return nil
}

func testEnv(t *testing.T, fb *fakeBackend) Env {
	t.Helper()
	cfg := config.Default()
	cfg.PageSize = 2
	return Env{
		Ctx:     context.Background(),
		Backend: fb,
		Log:     zaptest.NewLogger(t),
		Config:  cfg,
	}
}

func withScheduler(t *testing.T, env Env) Env {
	t.Helper()
	s := enrich.New(env.Backend, 0, env.Log)
	t.Cleanup(s.Close)
	env.Scheduler = s
	return env
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enterKey = tea.KeyMsg{Type: tea.KeyEnter}
	escKey   = tea.KeyMsg{Type: tea.KeyEsc}
	tabKey   = tea.KeyMsg{Type: tea.KeyTab}
)

// run executes cmd with a deadline so a broken command fails the test
// instead of hanging it.
func run(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	select {
	case msg := <-done:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("command did not return")
		return nil
	}
}

func updateApp(t *testing.T, a AppModel, msg tea.Msg) (AppModel, tea.Cmd) {
	t.Helper()
	next, cmd := a.Update(msg)
	app, ok := next.(AppModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return app, cmd
}

func flag(b bool) *bool { return &b }
