package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorGold   = lipgloss.Color("#C9A227")
	colorMuted  = lipgloss.Color("#7A7A7A")
	colorError  = lipgloss.Color("#E06C75")
	colorAccent = lipgloss.Color("#E5C07B")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorGold)

	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)

	errorStyle = lipgloss.NewStyle().Foreground(colorError)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent)

	badgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1E1E1E")).
			Background(colorGold).
			Padding(0, 1)

	filterLabelStyle = lipgloss.NewStyle().Foreground(colorMuted)
	filterValueStyle = lipgloss.NewStyle().Foreground(colorAccent)

	currentPageStyle = lipgloss.NewStyle().
				Bold(true).
				Underline(true).
				Foreground(colorGold)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorGold).
			Padding(1, 2)

	helpStyle = lipgloss.NewStyle().Foreground(colorMuted).MarginTop(1)
)
