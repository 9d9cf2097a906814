package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/nocturne/cli"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("160"))

	styleNarration = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("160"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	styleSpinner = lipgloss.NewStyle().
			Foreground(lipgloss.Color("160"))

	styleSidebar = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)

	styleSidebarTitle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("160")).
				Bold(true)
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarration lineKind = iota
	kindInput
	kindSystem
	kindError
	kindTrace
)

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindInput:
		return stylePlayerInput.Render(line)
	case kindSystem:
		return styledSystemMsg(line)
	case kindError:
		return styleError.Render(line)
	case kindTrace:
		return styleTrace.Render(line)
	default:
		return styleNarration.Render(line)
	}
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}

// healthStyle colors text with the band color of the given health.
func healthStyle(health, maxHealth int) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(cli.GetHealthStatus(health, maxHealth).Color)).Bold(true)
}
