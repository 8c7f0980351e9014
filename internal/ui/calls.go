package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/saravenpi/switchboard/internal/models"
	"github.com/saravenpi/switchboard/internal/state"
)

type callPlacedMsg struct {
	call models.Call
	err  error
}

type callHungUpMsg struct {
	sid string
	err error
}

const (
	focusFrom = iota
	focusTo
	focusCalls
	focusCount
)

// CallsModel places calls and keeps the calls it placed until they are
// hung up from here.
type CallsModel struct {
	env          Env
	fromInput    textinput.Model
	toInput      textinput.Model
	focusIndex   int
	book         state.CallBook
	cursor       int
	placing      bool
	hangingUp    string
	err          string
	status       string
	windowWidth  int
	windowHeight int
}

func NewCallsModel(env Env) CallsModel {
	fromInput := textinput.New()
	fromInput.Placeholder = "Caller number (e.g., +15551234567)"
	fromInput.Focus()
	fromInput.CharLimit = 16
	fromInput.Width = 40

	toInput := textinput.New()
	toInput.Placeholder = "Destination number (e.g., +15557654321)"
	toInput.CharLimit = 16
	toInput.Width = 40

	return CallsModel{
		env:          env,
		fromInput:    fromInput,
		toInput:      toInput,
		focusIndex:   focusFrom,
		windowWidth:  80,
		windowHeight: 30,
	}
}

func (m CallsModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m CallsModel) placeCallCmd(from, to string) tea.Cmd {
	return func() tea.Msg {
		call, err := m.env.Backend.PlaceCall(m.env.ctx(), from, to)
		return callPlacedMsg{call: call, err: err}
	}
}

func (m CallsModel) hangupCmd(sid string) tea.Cmd {
	return func() tea.Msg {
		return callHungUpMsg{sid: sid, err: m.env.Backend.Hangup(m.env.ctx(), sid)}
	}
}

func (m *CallsModel) focus(index int) tea.Cmd {
	m.focusIndex = index
	m.fromInput.Blur()
	m.toInput.Blur()
	switch index {
	case focusFrom:
		return m.fromInput.Focus()
	case focusTo:
		return m.toInput.Focus()
	}
	return nil
}

func (m CallsModel) Update(msg tea.Msg) (CallsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		m.fromInput.Width = msg.Width - 20
		m.toInput.Width = msg.Width - 20
		return m, nil

	case callPlacedMsg:
		m.placing = false
		if msg.err != nil {
			m.err = m.env.failure(msg.err, "Failed to place call. Please try again.")
			return m, nil
		}
		m.err = ""
		m.book = m.book.Placed(msg.call)
		m.status = fmt.Sprintf("Calling %s (%s)", msg.call.To, msg.call.Status)
		return m, nil

	case callHungUpMsg:
		if m.hangingUp == msg.sid {
			m.hangingUp = ""
		}
		if msg.err != nil {
			m.err = m.env.failure(msg.err, "Failed to hang up call. Please try again.")
			return m, nil
		}
		m.err = ""
		m.book = m.book.HungUp(msg.sid)
		m.cursor = min(m.cursor, max(0, len(m.book.Calls)-1))
		m.status = "Call ended"
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "esc":
			return m, navigate(screenMenu)

		case "tab":
			return m, m.focus((m.focusIndex + 1) % focusCount)

		case "shift+tab":
			return m, m.focus((m.focusIndex - 1 + focusCount) % focusCount)
		}

		if m.focusIndex == focusCalls {
			return m.updateCallList(msg)
		}

		if msg.String() == "enter" {
			from := strings.TrimSpace(m.fromInput.Value())
			to := strings.TrimSpace(m.toInput.Value())
			if from == "" || to == "" || m.placing {
				return m, nil
			}
			m.placing = true
			m.status = ""
			return m, m.placeCallCmd(from, to)
		}
	}

	var cmd tea.Cmd
	switch m.focusIndex {
	case focusFrom:
		m.fromInput, cmd = m.fromInput.Update(msg)
	case focusTo:
		m.toInput, cmd = m.toInput.Update(msg)
	}
	return m, cmd
}

func (m CallsModel) updateCallList(msg tea.KeyMsg) (CallsModel, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.book.Calls)-1 {
			m.cursor++
		}

	case "x", "enter":
		if m.cursor < len(m.book.Calls) && m.hangingUp == "" {
			m.hangingUp = m.book.Calls[m.cursor].SID
			return m, m.hangupCmd(m.hangingUp)
		}
	}
	return m, nil
}

func (m CallsModel) View() string {
	fromLabel := "Caller:"
	if m.focusIndex == focusFrom {
		fromLabel = "> " + fromLabel
	} else {
		fromLabel = "  " + fromLabel
	}

	toLabel := "Destination:"
	if m.focusIndex == focusTo {
		toLabel = "> " + toLabel
	} else {
		toLabel = "  " + toLabel
	}

	content := titleStyle.Render("Call Control") + "\n\n"
	content += boxStyle.Render(
		fromLabel + "\n" +
			m.fromInput.View() + "\n\n" +
			toLabel + "\n" +
			m.toInput.View(),
	)

	if m.placing {
		content += "\n\n" + statusStyle.Render("  Placing call...")
	} else if m.status != "" {
		content += "\n\n" + statusStyle.Render("  "+m.status)
	}

	if m.err != "" {
		content += "\n\n" + errorStyle.Render("Error: "+m.err)
	}

	listTitle := fmt.Sprintf("Ongoing Calls - %d", len(m.book.Calls))
	if m.focusIndex == focusCalls {
		listTitle = "> " + listTitle
	}
	content += "\n\n" + inputStyle.Render(listTitle) + "\n"
	if len(m.book.Calls) == 0 {
		content += normalStyle.Render("  No calls placed from this session.") + "\n"
	}
	for i, c := range m.book.Calls {
		line := fmt.Sprintf("%s → %s • %s • %s", c.From, c.To, c.Status, c.SID)
		if c.SID == m.hangingUp {
			line += " • hanging up..."
		}
		if m.focusIndex == focusCalls && i == m.cursor {
			content += selectedStyle.Render("▸ "+line) + "\n"
		} else {
			content += normalStyle.Render("  "+line) + "\n"
		}
	}

	content += "\n" + helpStyle.Render("tab: switch field • enter: call • x: hang up selected • esc: back • ctrl+c: quit")

	return content
}
