package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/wordwrap"

	"github.com/saravenpi/switchboard/internal/models"
)

type messagesFetchedMsg struct {
	sid             string
	conversationSID string
	messages        []models.Message
	err             error
}

type messageDetailFetchedMsg struct {
	sid             string
	conversationSID string
	messageSID      string
	detail          models.MessageDetail
	err             error
}

// MessagesModel lists a conversation's messages; enter opens the full
// record of the highlighted one in a modal.
type MessagesModel struct {
	env          Env
	sid          string
	conversation models.Conversation
	messages     []models.Message
	offsets      []int
	cursor       int
	viewport     viewport.Model
	loading      bool
	err          string
	spinner      spinner.Model
	mode         models.ViewMode
	pendingSID   string
	detail       *models.MessageDetail
	detailErr    string
	windowWidth  int
	windowHeight int
}

func NewMessagesModel(env Env, sid string, conversation models.Conversation) MessagesModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = statusStyle

	vp := viewport.New(80, 20)

	return MessagesModel{
		env:          env,
		sid:          sid,
		conversation: conversation,
		viewport:     vp,
		loading:      true,
		spinner:      s,
		mode:         models.ViewList,
		windowWidth:  80,
		windowHeight: 30,
	}
}

func (m MessagesModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchMessagesCmd())
}

func (m MessagesModel) fetchMessagesCmd() tea.Cmd {
	sid, convSID := m.sid, m.conversation.SID
	return func() tea.Msg {
		messages, err := m.env.Backend.ListMessages(m.env.ctx(), sid, convSID)
		return messagesFetchedMsg{sid: sid, conversationSID: convSID, messages: messages, err: err}
	}
}

func (m MessagesModel) fetchMessageDetailCmd(messageSID string) tea.Cmd {
	sid, convSID := m.sid, m.conversation.SID
	return func() tea.Msg {
		detail, err := m.env.Backend.GetMessage(m.env.ctx(), sid, convSID, messageSID)
		return messageDetailFetchedMsg{sid: sid, conversationSID: convSID, messageSID: messageSID, detail: detail, err: err}
	}
}

func (m MessagesModel) Update(msg tea.Msg) (MessagesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = max(3, msg.Height-8)
		m.updateViewportContent()
		return m, nil

	case messagesFetchedMsg:
		if msg.sid != m.sid || msg.conversationSID != m.conversation.SID {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = m.env.failure(msg.err, "Failed to fetch messages. Please try again.")
			return m, nil
		}
		m.err = ""
		m.messages = msg.messages
		m.cursor = max(0, len(m.messages)-1)
		m.updateViewportContent()
		m.viewport.GotoBottom()
		return m, nil

	case messageDetailFetchedMsg:
		if msg.sid != m.sid || msg.conversationSID != m.conversation.SID ||
			m.mode != models.ViewDetail || msg.messageSID != m.pendingSID {
			return m, nil
		}
		m.pendingSID = ""
		if msg.err != nil {
			m.detailErr = m.env.failure(msg.err, "Failed to fetch message details. Please try again.")
			return m, nil
		}
		detail := msg.detail
		m.detail = &detail
		return m, nil

	case spinner.TickMsg:
		if m.loading || m.pendingSID != "" {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.mode == models.ViewDetail {
			switch msg.String() {
			case "esc", "enter", "q":
				m.closeDetail()
			}
			return m, nil
		}

		switch msg.String() {
		case "q":
			return m, tea.Quit

		case "esc":
			return m, navigate(screenConversations)

		case "r":
			if m.loading {
				return m, nil
			}
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.fetchMessagesCmd())

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				m.updateViewportContent()
			}
			return m, nil

		case "down", "j":
			if m.cursor < len(m.messages)-1 {
				m.cursor++
				m.updateViewportContent()
			}
			return m, nil

		case "enter":
			if m.loading || m.cursor >= len(m.messages) {
				return m, nil
			}
			m.mode = models.ViewDetail
			m.detail = nil
			m.detailErr = ""
			m.pendingSID = m.messages[m.cursor].SID
			return m, tea.Batch(m.spinner.Tick, m.fetchMessageDetailCmd(m.pendingSID))

		default:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m *MessagesModel) closeDetail() {
	m.mode = models.ViewList
	m.detail = nil
	m.detailErr = ""
	m.pendingSID = ""
}

func (m *MessagesModel) updateViewportContent() {
	if len(m.messages) == 0 {
		m.viewport.SetContent("")
		return
	}

	wrapWidth := m.viewport.Width
	if wrapWidth <= 0 {
		wrapWidth = 80
	}

	var content strings.Builder
	m.offsets = make([]int, 0, len(m.messages))
	line := 0
	for i, message := range m.messages {
		if i > 0 {
			content.WriteString("\n")
			line++
		}
		m.offsets = append(m.offsets, line)

		author := message.Author
		if author == "" {
			author = "Unknown"
		}
		when := "unknown time"
		if !message.DateCreated.IsZero() {
			when = humanize.Time(message.DateCreated.Time)
		}

		prefix := "  "
		authorStyle := messageAuthorStyle
		if i == m.cursor {
			prefix = "▸ "
			authorStyle = selectedStyle
		}
		header := prefix + authorStyle.Render(author) + messageHeaderStyle.Render(" • "+when)
		content.WriteString(header + "\n")
		line++

		body := wordwrap.String(message.Body, max(10, wrapWidth-10))
		if body == "" {
			body = messageHeaderStyle.Render("(empty)")
		} else {
			body = messageBodyStyle.Render(body)
		}
		for _, l := range strings.Split(body, "\n") {
			content.WriteString("  " + l + "\n")
			line++
		}
	}

	m.viewport.SetContent(content.String())
	m.scrollToCursor()
}

func (m *MessagesModel) scrollToCursor() {
	if m.cursor >= len(m.offsets) {
		return
	}
	top := m.offsets[m.cursor]
	bottom := top + 2
	if m.cursor+1 < len(m.offsets) {
		bottom = m.offsets[m.cursor+1]
	}
	switch {
	case top < m.viewport.YOffset:
		m.viewport.SetYOffset(top)
	case bottom > m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(bottom - m.viewport.Height)
	}
}

func (m MessagesModel) detailView() string {
	width := min(80, max(30, m.windowWidth-12))

	if m.pendingSID != "" {
		return fmt.Sprintf("%s Loading message...", m.spinner.View())
	}
	if m.detailErr != "" {
		return errorStyle.Render("Error: "+m.detailErr) + "\n\n" + helpStyle.Render("esc: close")
	}
	if m.detail == nil {
		return helpStyle.Render("esc: close")
	}

	d := m.detail
	s := titleStyle.Render("Message "+d.SID) + "\n"
	s += field("Author", d.Author)
	s += field("Conversation", d.ConversationSID)
	s += field("Index", strconv.Itoa(d.Index))
	s += field("Participant", d.ParticipantSID)
	if !d.DateCreated.IsZero() {
		s += field("Created", d.DateCreated.Format("2006-01-02 15:04:05"))
	}
	if !d.DateUpdated.IsZero() {
		s += field("Updated", d.DateUpdated.Format("2006-01-02 15:04:05"))
	}
	s += "\n" + messageBodyStyle.Render(wordwrap.String(d.Body, width)) + "\n\n"
	s += inputStyle.Render("Attributes") + "\n"
	s += normalStyle.Render(d.Attributes.Pretty()) + "\n\n"
	s += helpStyle.Render("esc: close")
	return s
}

func (m MessagesModel) View() string {
	if m.mode == models.ViewDetail {
		return modal(m.windowWidth, m.windowHeight, m.detailView())
	}

	if m.loading && len(m.messages) == 0 {
		return fmt.Sprintf("\n  %s Loading messages...\n", m.spinner.View())
	}

	s := titleStyle.Render(fmt.Sprintf("💬 %s", m.conversation.DisplayName())) + "\n\n"

	if m.err != "" {
		s += errorStyle.Render("Error: "+m.err) + "\n\n"
	}

	if len(m.messages) == 0 && !m.loading {
		s += normalStyle.Render("  No messages in this conversation.") + "\n"
	} else {
		s += m.viewport.View() + "\n"
	}

	scrollPercent := int(m.viewport.ScrollPercent() * 100)
	s += "\n" + helpStyle.Render(fmt.Sprintf("↑↓/jk: select • enter: details • pgup/pgdn: scroll • r: refresh • esc: back • q: quit • %d%%", scrollPercent))

	return s
}
