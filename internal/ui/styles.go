package ui

import "github.com/charmbracelet/lipgloss"

// StoppedMessage confirms the shutdown procedure finished.
const StoppedMessage = "✓ All services stopped"

var (
	colorActiveBlue = lipgloss.Color("39")  // Bright Cyan/Blue for active elements
	colorDimGray    = lipgloss.Color("240") // Faded text for timestamps, logs
	colorGreen      = lipgloss.Color("42")  // Success
	colorRed        = lipgloss.Color("196") // Failure
	colorYellow     = lipgloss.Color("220") // Running/Pending
	colorWhite      = lipgloss.Color("255")
	colorLightGray  = lipgloss.Color("250") // Slightly brighter gray for keys

	styleBoldWhite = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	styleDim       = lipgloss.NewStyle().Foreground(colorDimGray)
	styleActive    = lipgloss.NewStyle().Foreground(colorActiveBlue).Bold(true)
	styleSuccess   = lipgloss.NewStyle().Foreground(colorGreen)
	styleFailure   = lipgloss.NewStyle().Foreground(colorRed)
	styleRunning   = lipgloss.NewStyle().Foreground(colorYellow)

	styleHelpKey  = lipgloss.NewStyle().Foreground(colorLightGray)
	styleHelpText = lipgloss.NewStyle().Foreground(colorDimGray)

	styleHeader = lipgloss.NewStyle().PaddingLeft(1).PaddingBottom(1)
	styleFooter = lipgloss.NewStyle().PaddingTop(1).PaddingLeft(1)
	styleScreen = lipgloss.NewStyle().Margin(1, 2)
)
