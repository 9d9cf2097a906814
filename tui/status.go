package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/nocturne/cli"
	"github.com/nathoo/nocturne/engine/state"
)

// renderStatusBar produces a full-width inverted status line showing
// the player's health band, level, experience and turn count.
func (m Model) renderStatusBar() string {
	p := m.snap.Player
	hs := cli.GetHealthStatus(p.Health, p.MaxHealth)

	name := p.Name
	if name == "" {
		name = m.engine.Scenario.Title
	}
	health := fmt.Sprintf("Vida %d/%d %s", p.Health, p.MaxHealth, hs.Label)
	left := fmt.Sprintf(" %s | %s | Nivel %d | XP %d/%d", name, health, p.Level, p.Experience, state.XPNeeded(p.Level))
	right := fmt.Sprintf("T:%d ", m.snap.TurnCount)
	if m.busy {
		right = m.spinner.View() + " narrando... " + right
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	bar = strings.Replace(bar, health, healthStyle(p.Health, p.MaxHealth).Inherit(styleStatusBar).Render(health), 1)
	return styleStatusBar.Width(m.width).Render(bar)
}

// renderInventory draws the inventory side panel at the given height.
func (m Model) renderInventory(height int) string {
	inner := sidebarWidth - 4 // border + padding
	lines := []string{styleSidebarTitle.Render("Inventario"), ""}
	if len(m.snap.Inventory) == 0 {
		lines = append(lines, styleSystem.Render("(vacío)"))
	}
	for _, it := range m.snap.Inventory {
		lines = append(lines, truncate("• "+it.Name, inner))
		if it.Condition != "" && it.Condition != state.DefaultCondition {
			lines = append(lines, styleSystem.Render(truncate("  "+it.Condition, inner)))
		}
	}

	h := height - 2
	if h < 1 {
		h = 1
	}
	if len(lines) > h {
		lines = append(lines[:h-1], styleSystem.Render("…"))
	}
	return styleSidebar.Width(inner + 2).Height(h).Render(strings.Join(lines, "\n"))
}

// truncate shortens s to width cells, marking the cut with an ellipsis.
func truncate(s string, width int) string {
	if width < 1 || lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}
