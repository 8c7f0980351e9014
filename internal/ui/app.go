package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/saravenpi/switchboard/internal/enrich"
)

// AppModel owns every screen and routes messages between them. Screens
// further down the drill-down chain (detail, conversations, messages) only
// exist while their parent selection does.
type AppModel struct {
	env                Env
	screen             screen
	menu               MenuModel
	subaccounts        SubaccountsModel
	subaccountsStarted bool
	detail             *SubaccountDetailModel
	conversations      *ConversationsModel
	messages           *MessagesModel
	calls              CallsModel
	windowWidth        int
	windowHeight       int
}

func NewApp(env Env) AppModel {
	backendURL := ""
	if env.Config != nil {
		backendURL = env.Config.BackendURL
	}
	return AppModel{
		env:         env,
		screen:      screenMenu,
		menu:        NewMenuModel(backendURL),
		subaccounts: NewSubaccountsModel(env),
		calls:       NewCallsModel(env),
	}
}

func (a AppModel) badges() <-chan enrich.Result {
	if a.env.Scheduler == nil {
		return nil
	}
	return a.env.Scheduler.Results()
}

func (a AppModel) Init() tea.Cmd {
	return tea.Batch(a.menu.Init(), waitForBadge(a.badges()))
}

func (a AppModel) sized() tea.WindowSizeMsg {
	return tea.WindowSizeMsg{Width: a.windowWidth, Height: a.windowHeight}
}

func (a AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.windowWidth = msg.Width
		a.windowHeight = msg.Height
		return a, a.broadcast(msg)

	case navigateMsg:
		return a.navigate(msg.to)

	case selectSubaccountMsg:
		d := NewSubaccountDetailModel(a.env, msg.sub)
		if a.windowWidth > 0 {
			d, _ = d.Update(a.sized())
		}
		a.detail = &d
		a.conversations = nil
		a.messages = nil
		a.subaccounts.selectedSID = msg.sub.SID
		a.subaccounts.refreshTable()
		a.screen = screenDetail
		a.env.logger().Debug("subaccount selected", zap.String("sid", msg.sub.SID))
		return a, d.Init()

	case selectPhoneNumberMsg:
		if a.detail == nil || a.detail.sid != msg.sid {
			return a, nil
		}
		c := NewConversationsModel(a.env, msg.sid, msg.number)
		if a.windowWidth > 0 {
			c, _ = c.Update(a.sized())
		}
		a.conversations = &c
		a.messages = nil
		a.screen = screenConversations
		return a, c.Init()

	case selectConversationMsg:
		if a.conversations == nil || a.conversations.sid != msg.sid {
			return a, nil
		}
		mm := NewMessagesModel(a.env, msg.sid, msg.conversation)
		if a.windowWidth > 0 {
			mm, _ = mm.Update(a.sized())
		}
		a.messages = &mm
		a.screen = screenMessages
		return a, mm.Init()

	case subaccountDeletedMsg:
		var cmd tea.Cmd
		a.subaccounts, cmd = a.subaccounts.Update(msg)
		if msg.err == nil && a.detail != nil && a.detail.sid == msg.sid {
			a.detail = nil
			a.conversations = nil
			a.messages = nil
			switch a.screen {
			case screenDetail, screenConversations, screenMessages:
				a.screen = screenSubaccounts
			}
		}
		return a, cmd

	case badgeResultMsg:
		var cmd tea.Cmd
		a.subaccounts, cmd = a.subaccounts.Update(msg)
		return a, tea.Batch(cmd, waitForBadge(a.badges()))

	case tea.KeyMsg:
		return a.updateActive(msg)
	}

	return a, a.broadcast(msg)
}

func (a AppModel) navigate(to screen) (tea.Model, tea.Cmd) {
	switch to {
	case screenSubaccounts:
		a.screen = screenSubaccounts
		if !a.subaccountsStarted {
			a.subaccountsStarted = true
			return a, a.subaccounts.Init()
		}
	case screenDetail:
		if a.detail == nil {
			return a.navigate(screenSubaccounts)
		}
		a.screen = screenDetail
	case screenConversations:
		if a.conversations == nil {
			return a.navigate(screenDetail)
		}
		a.screen = screenConversations
	case screenCalls:
		a.screen = screenCalls
		return a, a.calls.Init()
	default:
		a.screen = screenMenu
	}
	return a, nil
}

func (a AppModel) updateActive(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.screen {
	case screenMenu:
		a.menu, cmd = a.menu.Update(msg)
	case screenSubaccounts:
		a.subaccounts, cmd = a.subaccounts.Update(msg)
	case screenDetail:
		if a.detail != nil {
			d, c := a.detail.Update(msg)
			a.detail, cmd = &d, c
		}
	case screenConversations:
		if a.conversations != nil {
			c, cc := a.conversations.Update(msg)
			a.conversations, cmd = &c, cc
		}
	case screenMessages:
		if a.messages != nil {
			mm, c := a.messages.Update(msg)
			a.messages, cmd = &mm, c
		}
	case screenCalls:
		a.calls, cmd = a.calls.Update(msg)
	}
	return a, cmd
}

// broadcast hands msg to every live screen. Async results carry the ids
// they were requested for, so screens ignore results that are not theirs.
func (a *AppModel) broadcast(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	a.menu, cmd = a.menu.Update(msg)
	cmds = append(cmds, cmd)
	a.subaccounts, cmd = a.subaccounts.Update(msg)
	cmds = append(cmds, cmd)
	if a.detail != nil {
		d, c := a.detail.Update(msg)
		a.detail = &d
		cmds = append(cmds, c)
	}
	if a.conversations != nil {
		c, cc := a.conversations.Update(msg)
		a.conversations = &c
		cmds = append(cmds, cc)
	}
	if a.messages != nil {
		mm, c := a.messages.Update(msg)
		a.messages = &mm
		cmds = append(cmds, c)
	}
	a.calls, cmd = a.calls.Update(msg)
	cmds = append(cmds, cmd)

	return tea.Batch(cmds...)
}

func (a AppModel) View() string {
	switch a.screen {
	case screenSubaccounts:
		return a.subaccounts.View()
	case screenDetail:
		if a.detail != nil {
			return a.detail.View()
		}
	case screenConversations:
		if a.conversations != nil {
			return a.conversations.View()
		}
	case screenMessages:
		if a.messages != nil {
			return a.messages.View()
		}
	case screenCalls:
		return a.calls.View()
	}
	return a.menu.View()
}
