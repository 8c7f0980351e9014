package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/saravenpi/switchboard/internal/models"
)

type conversationItem struct {
	conversation models.Conversation
}

func (i conversationItem) Title() string {
	return i.conversation.DisplayName()
}

func (i conversationItem) Description() string {
	updated := "never updated"
	if !i.conversation.DateUpdated.IsZero() {
		updated = "updated " + humanize.Time(i.conversation.DateUpdated.Time)
	}
	return fmt.Sprintf("%s • %s", i.conversation.SID, updated)
}

func (i conversationItem) FilterValue() string {
	return i.conversation.DisplayName()
}

type conversationsFetchedMsg struct {
	sid           string
	phoneNumber   string
	conversations []models.Conversation
	err           error
}

type ConversationsModel struct {
	env           Env
	sid           string
	number        models.PhoneNumber
	conversations []models.Conversation
	list          list.Model
	loading       bool
	err           string
	spinner       spinner.Model
	windowWidth   int
	windowHeight  int
}

func NewConversationsModel(env Env, sid string, number models.PhoneNumber) ConversationsModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = statusStyle

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("5")).
		Bold(true)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("8"))

	l := list.New([]list.Item{}, delegate, 80, 20)
	l.Title = "Conversations"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	return ConversationsModel{
		env:          env,
		sid:          sid,
		number:       number,
		list:         l,
		loading:      true,
		spinner:      s,
		windowWidth:  80,
		windowHeight: 30,
	}
}

func (m ConversationsModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchConversationsCmd())
}

func (m ConversationsModel) fetchConversationsCmd() tea.Cmd {
	sid, phone := m.sid, m.number.Number
	return func() tea.Msg {
		convs, err := m.env.Backend.ListConversations(m.env.ctx(), sid, phone)
		return conversationsFetchedMsg{sid: sid, phoneNumber: phone, conversations: convs, err: err}
	}
}

func (m ConversationsModel) Update(msg tea.Msg) (ConversationsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(msg.Height - 4)
		return m, nil

	case conversationsFetchedMsg:
		if msg.sid != m.sid || msg.phoneNumber != m.number.Number {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = m.env.failure(msg.err, "Failed to fetch conversations. Please try again.")
			return m, nil
		}

		m.err = ""
		m.conversations = msg.conversations
		items := make([]list.Item, len(m.conversations))
		for i, c := range m.conversations {
			items[i] = conversationItem{conversation: c}
		}
		m.list.SetItems(items)
		m.list.Title = fmt.Sprintf("Conversations on %s - %d total", m.number.Number, len(m.conversations))
		return m, nil

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.list.FilterState() == list.Filtering {
			var cmd tea.Cmd
			m.list, cmd = m.list.Update(msg)
			return m, cmd
		}

		if msg.String() == "q" {
			return m, tea.Quit
		}

		if msg.String() == "esc" {
			return m, navigate(screenDetail)
		}

		if msg.String() == "r" && !m.loading {
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.fetchConversationsCmd())
		}

		if msg.String() == "enter" && len(m.conversations) > 0 && !m.loading {
			if item, ok := m.list.SelectedItem().(conversationItem); ok {
				sid, conv := m.sid, item.conversation
				return m, func() tea.Msg { return selectConversationMsg{sid: sid, conversation: conv} }
			}
		}

		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m ConversationsModel) View() string {
	if m.loading {
		return fmt.Sprintf("\n  %s Loading conversations...\n", m.spinner.View())
	}

	if m.err != "" {
		s := titleStyle.Render("Conversations") + "\n\n"
		s += errorStyle.Render("Error: "+m.err) + "\n\n"
		s += helpStyle.Render("r: retry • esc: back • q: quit")
		return s
	}

	if len(m.conversations) == 0 {
		s := titleStyle.Render(fmt.Sprintf("Conversations on %s", m.number.Number)) + "\n\n"
		s += normalStyle.Render("  No conversations found.") + "\n"
		s += "\n" + helpStyle.Render("r: refresh • esc: back • q: quit")
		return s
	}

	s := m.list.View() + "\n"
	s += helpStyle.Render("↑↓/jk: navigate • enter: open • /: search • r: refresh • esc: back • q: quit")

	return s
}
