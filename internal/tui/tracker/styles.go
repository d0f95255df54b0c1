package tracker

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor = lipgloss.Color("212")
	mutedColor   = lipgloss.Color("241")
	successColor = lipgloss.Color("42")
	warningColor = lipgloss.Color("214")
	errorColor   = lipgloss.Color("196")

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Background(lipgloss.Color("237")).
			Foreground(lipgloss.Color("255")).
			Padding(0, 1)

	subtleStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	activeStyle   = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	cursorStyle   = lipgloss.NewStyle().Background(lipgloss.Color("238"))
	downStyle     = lipgloss.NewStyle().Foreground(errorColor)
	bloodiedStyle = lipgloss.NewStyle().Foreground(warningColor)
	okStyle       = lipgloss.NewStyle().Foreground(successColor)
	errorStyle    = lipgloss.NewStyle().Foreground(errorColor)
	promptStyle   = lipgloss.NewStyle().Foreground(primaryColor).Bold(true)
)
