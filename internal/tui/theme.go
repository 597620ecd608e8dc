package tui

import "github.com/charmbracelet/lipgloss"

// Color palette. ANSI colors so the picker follows the terminal theme.
var (
	colorAccent = lipgloss.Color("5") // magenta
	colorHead   = lipgloss.Color("4") // blue
	colorMuted  = lipgloss.Color("8") // bright black
)

// Shared styles for the picker.
var (
	// Section header above the list (e.g. "SELECT REPOSITORY").
	// NOTE: No MarginBottom — use explicit \n in view functions for predictable height.
	sectionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorHead)

	// Selected item in the list.
	selectedItemStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorAccent)

	// Normal (unselected) item in the list.
	normalItemStyle = lipgloss.NewStyle()

	// Muted text (store prefixes, empty-state hints).
	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	// Help text at the bottom.
	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted)
)
