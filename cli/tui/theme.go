package tui

import "github.com/charmbracelet/lipgloss"

type Theme struct {
	TitleStyle  lipgloss.Style
	BorderStyle lipgloss.Style
	StatusStyle lipgloss.Style
	ErrorStyle  lipgloss.Style
	HelpStyle   lipgloss.Style
}

func DefaultTheme() *Theme {
	return &Theme{
		TitleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#f2b233")).
			Padding(0, 1),
		BorderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4c4c4c")),
		StatusStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#999999")).
			Padding(0, 1),
		ErrorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#cc4c4c")).
			Padding(0, 1),
		HelpStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4c99b2")).
			Padding(0, 1),
	}
}
