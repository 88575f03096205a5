package tui

import "github.com/charmbracelet/lipgloss"

// Palette shared with the PNG export.
const (
	colorOpen   = lipgloss.Color("#8957e5")
	colorClosed = lipgloss.Color("#3fb950")
	colorToday  = lipgloss.Color("#f85149")
)

var (
	// TitleStyle is used for screen titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")). // Purple
			MarginBottom(1)

	// SelectedItemStyle is used for highlighted/selected items.
	SelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("170")). // Light purple
				Bold(true)

	// NormalItemStyle is used for non-selected items.
	NormalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")) // Light gray

	// ErrorStyle is used for error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")). // Red
			Bold(true)

	// PromptStyle is used for prompt text.
	PromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")). // Light blue
			MarginBottom(1)

	// HelpStyle is used for help text.
	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")). // Dark gray
			MarginTop(1)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	headerTitleStyle = lipgloss.NewStyle().
				Bold(true)

	paneTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	openBarStyle   = lipgloss.NewStyle().Foreground(colorOpen)
	closedBarStyle = lipgloss.NewStyle().Foreground(colorClosed)
	todayStyle     = lipgloss.NewStyle().Foreground(colorToday)

	toastStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))
)
