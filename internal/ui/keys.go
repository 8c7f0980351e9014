package ui

import "github.com/charmbracelet/bubbles/key"

type subaccountKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PrevPage key.Binding
	NextPage key.Binding
	Open     key.Binding
	New      key.Binding
	Delete   key.Binding
	Filter   key.Binding
	Refresh  key.Binding
	Help     key.Binding
	Back     key.Binding
	Quit     key.Binding
}

var subaccountKeys = subaccountKeyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	PrevPage: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev page")),
	NextPage: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next page")),
	Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	New:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
	Delete:   key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
	Filter:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "missing emergency only")),
	Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
	Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k subaccountKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.New, k.Delete, k.Filter, k.PrevPage, k.NextPage, k.Help, k.Quit}
}

func (k subaccountKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PrevPage, k.NextPage},
		{k.Open, k.New, k.Delete},
		{k.Filter, k.Refresh},
		{k.Help, k.Back, k.Quit},
	}
}
