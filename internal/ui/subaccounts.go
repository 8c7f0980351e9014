package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/saravenpi/switchboard/internal/models"
	"github.com/saravenpi/switchboard/internal/state"
)

type subaccountsFetchedMsg struct {
	subaccounts []models.Subaccount
	err         error
}

type subaccountCreatedMsg struct {
	subaccount models.Subaccount
	err        error
}

type subaccountDeletedMsg struct {
	sid string
	err error
}

type subaccountRenamedMsg struct {
	sid        string
	subaccount models.Subaccount
	err        error
}

type SubaccountsModel struct {
	env           Env
	state         state.Subaccounts
	rows          []state.Row
	table         table.Model
	pager         paginator.Model
	help          help.Model
	spinner       spinner.Model
	input         textinput.Model
	creating      bool
	submitting    bool
	formErr       string
	confirmDelete *models.Subaccount
	selectedSID   string
	status        string
	windowWidth   int
	windowHeight  int
}

func NewSubaccountsModel(env Env) SubaccountsModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = statusStyle

	t := table.New(
		table.WithColumns(subaccountColumns(80)),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("213")).
		Background(lipgloss.Color("236")).
		Bold(true)
	t.SetStyles(styles)

	p := paginator.New()
	p.Type = paginator.Dots
	p.ActiveDot = selectedStyle.Render("•")
	p.InactiveDot = helpStyle.Render("•")

	input := textinput.New()
	input.Placeholder = "Friendly name"
	input.CharLimit = 64
	input.Width = 50

	return SubaccountsModel{
		env:          env,
		state:        state.NewSubaccounts(env.pageSize()).Fetching(),
		table:        t,
		pager:        p,
		help:         help.New(),
		spinner:      s,
		input:        input,
		windowWidth:  80,
		windowHeight: 30,
	}
}

func subaccountColumns(width int) []table.Column {
	name := max(16, width-36-10-8-14-12)
	return []table.Column{
		{Title: "Name", Width: name},
		{Title: "SID", Width: 36},
		{Title: "Emergency", Width: 10},
		{Title: "Auth", Width: 8},
		{Title: "Created", Width: 14},
	}
}

func (m SubaccountsModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchSubaccountsCmd())
}

func (m SubaccountsModel) fetchSubaccountsCmd() tea.Cmd {
	return func() tea.Msg {
		subs, err := m.env.Backend.ListSubaccounts(m.env.ctx())
		return subaccountsFetchedMsg{subaccounts: subs, err: err}
	}
}

func (m SubaccountsModel) createSubaccountCmd(name string) tea.Cmd {
	return func() tea.Msg {
		sub, err := m.env.Backend.CreateSubaccount(m.env.ctx(), name)
		return subaccountCreatedMsg{subaccount: sub, err: err}
	}
}

func (m SubaccountsModel) deleteSubaccountCmd(sid string) tea.Cmd {
	return func() tea.Msg {
		return subaccountDeletedMsg{sid: sid, err: m.env.Backend.CloseSubaccount(m.env.ctx(), sid)}
	}
}

// enrich queues badge fetches for everything still unknown, visible rows
// first. A new submission replaces the previous pass.
func (m SubaccountsModel) enrich() {
	if m.env.Scheduler == nil {
		return
	}
	if order := m.state.EnrichmentOrder(); len(order) > 0 {
		m.env.Scheduler.Submit(order)
	}
}

func (m *SubaccountsModel) refreshTable() {
	page := m.state.View()
	m.rows = page.Rows

	rows := make([]table.Row, len(page.Rows))
	for i, r := range page.Rows {
		name := r.DisplayName()
		if r.SID == m.selectedSID {
			name = "▸ " + name
		}
		created := "-"
		if !r.DateCreated.IsZero() {
			created = humanize.Time(r.DateCreated.Time)
		}
		rows[i] = table.Row{
			name,
			r.SID,
			badgeText(r.Badges.AllEmergenciesRegistered),
			badgeText(r.Badges.BasicAuthMedia),
			created,
		}
	}
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) {
		m.table.SetCursor(max(0, len(rows)-1))
	}

	m.pager.TotalPages = page.TotalPages
	m.pager.Page = max(0, m.state.Page-1)
}

func (m SubaccountsModel) selected() (state.Row, bool) {
	c := m.table.Cursor()
	if c < 0 || c >= len(m.rows) {
		return state.Row{}, false
	}
	return m.rows[c], true
}

func (m SubaccountsModel) Update(msg tea.Msg) (SubaccountsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		m.table.SetColumns(subaccountColumns(msg.Width))
		m.table.SetHeight(max(5, msg.Height-10))
		m.input.Width = msg.Width - 20
		m.help.Width = msg.Width
		return m, nil

	case subaccountsFetchedMsg:
		if msg.err != nil {
			m.state = m.state.Failed(m.env.failure(msg.err, "Failed to fetch subaccounts. Please try again."))
			return m, nil
		}
		m.state = m.state.Loaded(msg.subaccounts)
		m.refreshTable()
		m.enrich()
		return m, nil

	case badgeResultMsg:
		r := msg.result
		if r.Err != nil {
			return m, nil
		}
		if _, ok := m.state.Find(r.SID); !ok {
			return m, nil
		}
		m.state = m.state.WithBadges(r.SID, r.Badges)
		m.refreshTable()
		return m, nil

	case subaccountCreatedMsg:
		m.submitting = false
		if msg.err != nil {
			m.formErr = m.env.failure(msg.err, "Failed to create subaccount. Please try again.")
			return m, nil
		}
		m.creating = false
		m.formErr = ""
		m.input.Blur()
		m.input.Reset()
		m.state = m.state.Added(msg.subaccount)
		m.status = fmt.Sprintf("Created %s", msg.subaccount.DisplayName())
		m.refreshTable()
		m.enrich()
		return m, nil

	case subaccountDeletedMsg:
		if msg.err != nil {
			m.state = m.state.Errored(m.env.failure(msg.err, "Failed to delete subaccount. Please try again."))
			return m, nil
		}
		m.state = m.state.Removed(msg.sid)
		if m.selectedSID == msg.sid {
			m.selectedSID = ""
		}
		m.status = "Subaccount deleted"
		m.refreshTable()
		return m, nil

	case subaccountRenamedMsg:
		if msg.err == nil {
			m.state = m.state.Updated(msg.subaccount)
			m.refreshTable()
		}
		return m, nil

	case spinner.TickMsg:
		if m.state.Loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.confirmDelete != nil {
			return m.updateConfirmDelete(msg)
		}
		if m.creating {
			return m.updateCreateForm(msg)
		}
		return m.updateList(msg)
	}

	if m.creating {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m SubaccountsModel) updateConfirmDelete(msg tea.KeyMsg) (SubaccountsModel, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		sid := m.confirmDelete.SID
		m.confirmDelete = nil
		return m, m.deleteSubaccountCmd(sid)
	case "n", "N", "esc":
		m.confirmDelete = nil
	}
	return m, nil
}

func (m SubaccountsModel) updateCreateForm(msg tea.KeyMsg) (SubaccountsModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.creating = false
		m.formErr = ""
		m.input.Blur()
		m.input.Reset()
		return m, nil
	case "enter":
		if m.submitting {
			return m, nil
		}
		m.submitting = true
		m.formErr = ""
		return m, m.createSubaccountCmd(strings.TrimSpace(m.input.Value()))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m SubaccountsModel) updateList(msg tea.KeyMsg) (SubaccountsModel, tea.Cmd) {
	m.status = ""

	switch {
	case key.Matches(msg, subaccountKeys.Quit):
		return m, tea.Quit

	case key.Matches(msg, subaccountKeys.Back):
		return m, navigate(screenMenu)

	case key.Matches(msg, subaccountKeys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, subaccountKeys.Refresh):
		if m.state.Loading {
			return m, nil
		}
		if m.env.Scheduler != nil {
			m.env.Scheduler.Reset()
		}
		m.state = m.state.ClearBadges().Fetching()
		return m, tea.Batch(m.spinner.Tick, m.fetchSubaccountsCmd())

	case key.Matches(msg, subaccountKeys.New):
		m.creating = true
		m.formErr = ""
		m.input.Reset()
		return m, m.input.Focus()

	case key.Matches(msg, subaccountKeys.Filter):
		m.state = m.state.ToggleMissingOnly()
		m.table.SetCursor(0)
		m.refreshTable()
		m.enrich()
		return m, nil

	case key.Matches(msg, subaccountKeys.PrevPage):
		m.state = m.state.PrevPage()
		m.refreshTable()
		m.enrich()
		return m, nil

	case key.Matches(msg, subaccountKeys.NextPage):
		m.state = m.state.NextPage()
		m.refreshTable()
		m.enrich()
		return m, nil
	}

	if m.state.Loading {
		return m, nil
	}

	switch {
	case key.Matches(msg, subaccountKeys.Open):
		if row, ok := m.selected(); ok {
			m.selectedSID = row.SID
			m.refreshTable()
			sub := row.Subaccount
			return m, func() tea.Msg { return selectSubaccountMsg{sub: sub} }
		}
		return m, nil

	case key.Matches(msg, subaccountKeys.Delete):
		if row, ok := m.selected(); ok {
			sub := row.Subaccount
			m.confirmDelete = &sub
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m SubaccountsModel) View() string {
	if m.confirmDelete != nil {
		s := titleStyle.Render("Delete Subaccount") + "\n\n"
		s += normalStyle.Render(fmt.Sprintf("Are you sure you want to close '%s' (%s)?", m.confirmDelete.DisplayName(), m.confirmDelete.SID)) + "\n\n"
		s += errorStyle.Render("Closed subaccounts cannot be reopened.") + "\n\n"
		s += helpStyle.Render("y: confirm delete • n/esc: cancel")
		return s
	}

	if m.creating {
		s := titleStyle.Render("New Subaccount") + "\n\n"
		s += boxStyle.Render(inputStyle.Render("Friendly name:") + "\n" + m.input.View())
		if m.submitting {
			s += "\n\n" + statusStyle.Render("  Creating...")
		}
		if m.formErr != "" {
			s += "\n\n" + errorStyle.Render("Error: "+m.formErr)
		}
		s += "\n\n" + helpStyle.Render("enter: create • esc: cancel")
		return s
	}

	if m.state.Loading && len(m.state.Items) == 0 {
		return fmt.Sprintf("\n  %s Loading subaccounts...\n", m.spinner.View())
	}

	title := fmt.Sprintf("Subaccounts - %d total", len(m.state.Items))
	if m.state.MissingOnly {
		title += " • missing emergency address only"
	}
	s := titleStyle.Render(title) + "\n"

	if m.state.Err != "" {
		s += errorStyle.Render("Error: "+m.state.Err) + "\n\n"
	}

	if len(m.rows) == 0 {
		if m.state.MissingOnly {
			s += normalStyle.Render("  No subaccounts known to be missing an emergency address.") + "\n"
		} else {
			s += normalStyle.Render("  No subaccounts found. Press 'n' to create one.") + "\n"
		}
		s += "\n" + m.help.View(subaccountKeys)
		return s
	}

	s += m.table.View() + "\n"
	page := m.state.View()
	s += fmt.Sprintf("  %s  %s\n", m.pager.View(), helpStyle.Render(fmt.Sprintf("page %d of %d", page.Number, page.TotalPages)))
	if m.state.Loading {
		s += fmt.Sprintf("  %s Refreshing...\n", m.spinner.View())
	} else if m.status != "" {
		s += statusStyle.Render("  "+m.status) + "\n"
	}
	s += "\n" + m.help.View(subaccountKeys)
	return s
}
