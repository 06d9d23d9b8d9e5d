// Package tui provides the terminal user interface.
package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Colors optimized for dark terminals
var (
	colorPrimary = lipgloss.Color("205") // Pink/Magenta
	colorSuccess = lipgloss.Color("42")  // Green
	colorWarning = lipgloss.Color("220") // Yellow
	colorError   = lipgloss.Color("196") // Red
	colorMuted   = lipgloss.Color("245") // Gray (brighter for dark terminals)
	colorAccent  = lipgloss.Color("141") // Light purple
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWarning).
			Padding(0, 1)

	inputLabelStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)

	inputFocusStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 1)

	viewerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1)

	logSuccessStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	logWarningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	logErrorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	logInfoStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(colorPrimary)

	helpBarStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(colorWarning).
			Bold(true)
)
