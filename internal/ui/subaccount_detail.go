package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/saravenpi/switchboard/internal/models"
)

type phoneNumberItem struct {
	number models.PhoneNumber
}

func (i phoneNumberItem) FilterValue() string { return i.number.Number }

func (i phoneNumberItem) Title() string {
	if i.number.FriendlyName != "" && i.number.FriendlyName != i.number.Number {
		return fmt.Sprintf("%s (%s)", i.number.Number, i.number.FriendlyName)
	}
	return i.number.Number
}

func (i phoneNumberItem) Description() string {
	emergency := "no emergency address"
	if i.number.HasEmergencyAddress() {
		emergency = "emergency address registered"
	}
	desc := emergency
	if i.number.Status != "" {
		desc = i.number.Status + " • " + desc
	}
	if !i.number.DateCreated.IsZero() {
		desc += " • added " + humanize.Time(i.number.DateCreated.Time)
	}
	return desc
}

type subaccountFetchedMsg struct {
	sid        string
	subaccount models.Subaccount
	err        error
}

type phoneNumbersFetchedMsg struct {
	sid     string
	numbers []models.PhoneNumber
	err     error
}

type phoneNumberFetchedMsg struct {
	sid    string
	number models.PhoneNumber
	err    error
}

type phoneNumberReleasedMsg struct {
	sid      string
	phoneSID string
	err      error
}

type emergencyAddressRemovedMsg struct {
	sid      string
	phoneSID string
	err      error
}

// SubaccountDetailModel shows one subaccount and its phone numbers. Every
// async result carries the sid it was requested for and is dropped when it
// no longer matches.
type SubaccountDetailModel struct {
	env            Env
	sid            string
	subaccount     models.Subaccount
	numbers        []models.PhoneNumber
	list           list.Model
	loading        bool
	numbersLoading bool
	err            string
	spinner        spinner.Model
	renaming       bool
	input          textinput.Model
	formErr        string
	confirmRelease *models.PhoneNumber
	info           *models.PhoneNumber
	status         string
	windowWidth    int
	windowHeight   int
}

func NewSubaccountDetailModel(env Env, sub models.Subaccount) SubaccountDetailModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = statusStyle

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("5")).
		Bold(true)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("8"))

	l := list.New([]list.Item{}, delegate, 80, 14)
	l.Title = "Phone Numbers"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	input := textinput.New()
	input.Placeholder = "Friendly name"
	input.CharLimit = 64
	input.Width = 50

	return SubaccountDetailModel{
		env:            env,
		sid:            sub.SID,
		subaccount:     sub,
		list:           l,
		loading:        true,
		numbersLoading: true,
		spinner:        s,
		input:          input,
		windowWidth:    80,
		windowHeight:   30,
	}
}

func (m SubaccountDetailModel) SID() string { return m.sid }

func (m SubaccountDetailModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchSubaccountCmd(), m.fetchPhoneNumbersCmd())
}

func (m SubaccountDetailModel) fetchSubaccountCmd() tea.Cmd {
	sid := m.sid
	return func() tea.Msg {
		sub, err := m.env.Backend.GetSubaccount(m.env.ctx(), sid)
		return subaccountFetchedMsg{sid: sid, subaccount: sub, err: err}
	}
}

func (m SubaccountDetailModel) fetchPhoneNumbersCmd() tea.Cmd {
	sid := m.sid
	return func() tea.Msg {
		numbers, err := m.env.Backend.ListPhoneNumbers(m.env.ctx(), sid)
		return phoneNumbersFetchedMsg{sid: sid, numbers: numbers, err: err}
	}
}

func (m SubaccountDetailModel) fetchPhoneNumberCmd(phoneSID string) tea.Cmd {
	sid := m.sid
	return func() tea.Msg {
		number, err := m.env.Backend.GetPhoneNumber(m.env.ctx(), sid, phoneSID)
		return phoneNumberFetchedMsg{sid: sid, number: number, err: err}
	}
}

func (m SubaccountDetailModel) releaseCmd(phoneSID string) tea.Cmd {
	sid := m.sid
	return func() tea.Msg {
		err := m.env.Backend.ReleasePhoneNumber(m.env.ctx(), sid, phoneSID)
		return phoneNumberReleasedMsg{sid: sid, phoneSID: phoneSID, err: err}
	}
}

func (m SubaccountDetailModel) removeEmergencyAddressCmd(number models.PhoneNumber) tea.Cmd {
	sid := m.sid
	return func() tea.Msg {
		err := m.env.Backend.RemoveEmergencyAddress(m.env.ctx(), sid, number.SID)
		return emergencyAddressRemovedMsg{sid: sid, phoneSID: number.SID, err: err}
	}
}

func (m SubaccountDetailModel) renameCmd(name string) tea.Cmd {
	sid := m.sid
	return func() tea.Msg {
		sub, err := m.env.Backend.RenameSubaccount(m.env.ctx(), sid, name)
		return subaccountRenamedMsg{sid: sid, subaccount: sub, err: err}
	}
}

func (m *SubaccountDetailModel) setNumbers(numbers []models.PhoneNumber) {
	m.numbers = numbers
	items := make([]list.Item, len(numbers))
	for i, n := range numbers {
		items[i] = phoneNumberItem{number: n}
	}
	m.list.SetItems(items)
	m.list.Title = fmt.Sprintf("Phone Numbers - %d total", len(numbers))
}

func (m SubaccountDetailModel) selectedNumber() (models.PhoneNumber, bool) {
	item, ok := m.list.SelectedItem().(phoneNumberItem)
	if !ok {
		return models.PhoneNumber{}, false
	}
	return item.number, true
}

func (m SubaccountDetailModel) Update(msg tea.Msg) (SubaccountDetailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(max(6, msg.Height-14))
		m.input.Width = msg.Width - 20
		return m, nil

	case subaccountFetchedMsg:
		if msg.sid != m.sid {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = m.env.failure(msg.err, "Failed to fetch subaccount details. Please try again.")
			return m, nil
		}
		m.subaccount = msg.subaccount
		return m, nil

	case phoneNumbersFetchedMsg:
		if msg.sid != m.sid {
			return m, nil
		}
		m.numbersLoading = false
		if msg.err != nil {
			m.err = m.env.failure(msg.err, "Failed to fetch phone numbers. Please try again.")
			return m, nil
		}
		m.setNumbers(msg.numbers)
		return m, nil

	case phoneNumberFetchedMsg:
		if msg.sid != m.sid {
			return m, nil
		}
		if msg.err != nil {
			m.err = m.env.failure(msg.err, "Failed to fetch phone number details. Please try again.")
			return m, nil
		}
		number := msg.number
		m.info = &number
		return m, nil

	case phoneNumberReleasedMsg:
		if msg.sid != m.sid {
			return m, nil
		}
		if msg.err != nil {
			m.err = m.env.failure(msg.err, "Failed to release phone number. Please try again.")
			return m, nil
		}
		kept := make([]models.PhoneNumber, 0, len(m.numbers))
		for _, n := range m.numbers {
			if n.SID != msg.phoneSID {
				kept = append(kept, n)
			}
		}
		m.setNumbers(kept)
		m.err = ""
		m.status = "Phone number released"
		return m, nil

	case emergencyAddressRemovedMsg:
		if msg.sid != m.sid {
			return m, nil
		}
		if msg.err != nil {
			m.err = m.env.failure(msg.err, "Failed to remove emergency address. Please try again.")
			return m, nil
		}
		numbers := make([]models.PhoneNumber, len(m.numbers))
		copy(numbers, m.numbers)
		for i := range numbers {
			if numbers[i].SID == msg.phoneSID {
				numbers[i].EmergencyAddressSID = ""
			}
		}
		m.setNumbers(numbers)
		m.err = ""
		m.status = "Emergency address removed"
		return m, nil

	case subaccountRenamedMsg:
		if msg.sid != m.sid {
			return m, nil
		}
		if msg.err != nil {
			m.formErr = m.env.failure(msg.err, "Failed to rename subaccount. Please try again.")
			return m, nil
		}
		m.renaming = false
		m.formErr = ""
		m.input.Blur()
		m.subaccount = msg.subaccount
		m.status = "Renamed to " + msg.subaccount.DisplayName()
		return m, nil

	case spinner.TickMsg:
		if m.loading || m.numbersLoading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.info != nil {
			if msg.String() == "esc" || msg.String() == "enter" || msg.String() == "i" {
				m.info = nil
			}
			return m, nil
		}
		if m.confirmRelease != nil {
			switch msg.String() {
			case "y", "Y":
				phoneSID := m.confirmRelease.SID
				m.confirmRelease = nil
				return m, m.releaseCmd(phoneSID)
			case "n", "N", "esc":
				m.confirmRelease = nil
			}
			return m, nil
		}
		if m.renaming {
			return m.updateRenameForm(msg)
		}
		if m.list.FilterState() == list.Filtering {
			var cmd tea.Cmd
			m.list, cmd = m.list.Update(msg)
			return m, cmd
		}
		return m.updateNumbers(msg)
	}

	if m.renaming {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m SubaccountDetailModel) updateRenameForm(msg tea.KeyMsg) (SubaccountDetailModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.renaming = false
		m.formErr = ""
		m.input.Blur()
		return m, nil
	case "enter":
		return m, m.renameCmd(strings.TrimSpace(m.input.Value()))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m SubaccountDetailModel) updateNumbers(msg tea.KeyMsg) (SubaccountDetailModel, tea.Cmd) {
	m.status = ""

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "esc":
		return m, navigate(screenSubaccounts)

	case "r":
		m.loading = true
		m.numbersLoading = true
		m.err = ""
		return m, tea.Batch(m.spinner.Tick, m.fetchSubaccountCmd(), m.fetchPhoneNumbersCmd())

	case "c":
		m.renaming = true
		m.formErr = ""
		m.input.SetValue(m.subaccount.FriendlyName)
		m.input.CursorEnd()
		return m, m.input.Focus()
	}

	if m.numbersLoading {
		return m, nil
	}

	switch msg.String() {
	case "enter":
		if number, ok := m.selectedNumber(); ok {
			sid := m.sid
			return m, func() tea.Msg { return selectPhoneNumberMsg{sid: sid, number: number} }
		}
		return m, nil

	case "x":
		if number, ok := m.selectedNumber(); ok {
			m.confirmRelease = &number
		}
		return m, nil

	case "e":
		if number, ok := m.selectedNumber(); ok && number.HasEmergencyAddress() {
			return m, m.removeEmergencyAddressCmd(number)
		}
		return m, nil

	case "i":
		if number, ok := m.selectedNumber(); ok {
			return m, m.fetchPhoneNumberCmd(number.SID)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m SubaccountDetailModel) View() string {
	if m.info != nil {
		n := m.info
		content := titleStyle.Render(n.Number) + "\n"
		content += field("SID", n.SID)
		content += field("Friendly name", n.FriendlyName)
		content += field("Status", n.Status)
		content += field("Emergency address", n.EmergencyAddressSID)
		if !n.DateCreated.IsZero() {
			content += field("Added", n.DateCreated.Format("2006-01-02 15:04")+" ("+humanize.Time(n.DateCreated.Time)+")")
		}
		content += "\n" + helpStyle.Render("esc: close")
		return modal(m.windowWidth, m.windowHeight, content)
	}

	if m.confirmRelease != nil {
		s := titleStyle.Render("Release Phone Number") + "\n\n"
		s += normalStyle.Render(fmt.Sprintf("Are you sure you want to release %s from '%s'?", m.confirmRelease.Number, m.subaccount.DisplayName())) + "\n\n"
		s += errorStyle.Render("Released numbers return to the carrier pool.") + "\n\n"
		s += helpStyle.Render("y: confirm release • n/esc: cancel")
		return s
	}

	if m.renaming {
		s := titleStyle.Render("Rename Subaccount") + "\n\n"
		s += boxStyle.Render(inputStyle.Render("Friendly name:") + "\n" + m.input.View())
		if m.formErr != "" {
			s += "\n\n" + errorStyle.Render("Error: "+m.formErr)
		}
		s += "\n\n" + helpStyle.Render("enter: save • esc: cancel")
		return s
	}

	sub := m.subaccount
	s := titleStyle.Render(sub.DisplayName()) + "\n"
	if m.loading {
		s += fmt.Sprintf("  %s Loading details...\n", m.spinner.View())
	} else {
		s += field("SID", sub.SID)
		s += field("Status", sub.Status)
		s += field("Owner", sub.OwnerAccountSID)
		if !sub.DateCreated.IsZero() {
			s += field("Created", humanize.Time(sub.DateCreated.Time))
		}
		if !sub.DateUpdated.IsZero() {
			s += field("Updated", humanize.Time(sub.DateUpdated.Time))
		}
	}
	s += "\n"

	if m.err != "" {
		s += errorStyle.Render("Error: "+m.err) + "\n\n"
	}

	switch {
	case m.numbersLoading:
		s += fmt.Sprintf("  %s Loading phone numbers...\n", m.spinner.View())
	case len(m.numbers) == 0:
		s += normalStyle.Render("  No phone numbers on this subaccount.") + "\n"
	default:
		s += m.list.View() + "\n"
	}

	if m.status != "" {
		s += statusStyle.Render("  "+m.status) + "\n"
	}
	s += helpStyle.Render("↑↓/jk: navigate • enter: conversations • i: info • x: release • e: remove emergency address • c: rename • r: refresh • esc: back • q: quit")
	return s
}
