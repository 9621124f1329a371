package tui

import "github.com/charmbracelet/lipgloss"

// Palette shared by the tab bar, status line and confirmation prompt.
const (
	colorAccent  = lipgloss.Color("205")
	colorSurface = lipgloss.Color("236")
	colorMuted   = lipgloss.Color("240")
	colorSubtle  = lipgloss.Color("245")
	colorDanger  = lipgloss.Color("196")
	colorWarning = lipgloss.Color("214")
	colorDone    = lipgloss.Color("42")
)

var (
	tabStyle = lipgloss.NewStyle().Padding(0, 1)

	activeTabStyle   = tabStyle.Foreground(colorAccent).Background(colorSurface).Bold(true)
	inactiveTabStyle = tabStyle.Foreground(colorMuted)

	userStyle   = lipgloss.NewStyle().Foreground(colorSubtle).Italic(true).PaddingLeft(2)
	statusStyle = lipgloss.NewStyle().Foreground(colorDone).PaddingLeft(2)

	dangerStyle  = lipgloss.NewStyle().Foreground(colorDanger).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning).Italic(true)

	docStyle = lipgloss.NewStyle().Padding(1, 2)
)
