package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/wburn/internal/tui/theme"
)

// RenderStatusBar renders the bottom status bar: key hints on the left, a
// transient message in the middle and the data age on the right.
func RenderStatusBar(width int, hints, message, dataAge string, isError bool) string {
	t := theme.Active

	base := lipgloss.NewStyle().Background(t.Surface)
	hintStyle := base.Foreground(t.TextMuted)
	msgStyle := base.Foreground(t.Green)
	if isError {
		msgStyle = base.Foreground(t.Red).Bold(true)
	}
	ageStyle := base.Foreground(t.TextDim)

	left := hintStyle.Render(" " + hints)
	if message != "" {
		left += hintStyle.Render("  ") + msgStyle.Render(message)
	}
	right := ""
	if dataAge != "" {
		right = ageStyle.Render(dataAge + " ")
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + base.Width(gap).Render("") + right
}
