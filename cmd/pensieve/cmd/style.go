package cmd

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Output styles. ANSI palette colors so output follows the terminal theme.
var (
	fadedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	infoStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	headingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	badStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	goodStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
)

func init() {
	// PENSIEVE_COLOR=no forces plain output even on a terminal. Non-terminal
	// output is already plain via lipgloss's profile detection.
	if os.Getenv("PENSIEVE_COLOR") == "no" {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}
