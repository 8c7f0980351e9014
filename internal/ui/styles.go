package ui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("213")).
			MarginBottom(1)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("213"))

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("117"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Width(18)

	messageAuthorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("111")).
				Bold(true)

	messageBodyStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("120"))

	messageHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243")).
				Italic(true)

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("117")).
			Bold(true)

	badgeOKStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("120"))

	badgeMissingStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("196")).
				Bold(true)

	badgePendingStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243"))

	boxStyle = lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("5"))
)

// badge renders a nullable indicator: unknown values show a placeholder
// until enrichment delivers them.
func badge(v *bool) string {
	switch {
	case v == nil:
		return badgePendingStyle.Render("…")
	case *v:
		return badgeOKStyle.Render("✓")
	default:
		return badgeMissingStyle.Render("✗")
	}
}

// badgeText is the unstyled form used inside table cells.
func badgeText(v *bool) string {
	switch {
	case v == nil:
		return "…"
	case *v:
		return "yes"
	default:
		return "MISSING"
	}
}

// modal centers content in a bordered box over the whole window.
func modal(width, height int, content string) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, boxStyle.Render(content))
}

func field(label, value string) string {
	if value == "" {
		value = "-"
	}
	return labelStyle.Render(label) + normalStyle.Render(value) + "\n"
}
