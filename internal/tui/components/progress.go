package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/wburn/internal/tui/theme"
)

// NewCycleBar returns the animated bar used for elapsed cycle time.
func NewCycleBar(width int) progress.Model {
	t := theme.Active
	bar := progress.New(
		progress.WithGradient(string(t.Accent), string(t.AccentBright)),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)
	return bar
}

// RemainingColor picks a color for a remaining/limit pair: red when over,
// orange under 20% left, green otherwise.
func RemainingColor(remaining, limit int) lipgloss.Color {
	t := theme.Active
	switch {
	case remaining < 0:
		return t.Red
	case limit > 0 && float64(remaining)/float64(limit) < 0.2:
		return t.Orange
	default:
		return t.Green
	}
}

// UsageBar renders "label ████░░ used/limit". Usage past the limit shows a
// full red bar.
func UsageBar(label string, used, limit, labelW, barWidth int) string {
	t := theme.Active

	frac := 0.0
	if limit > 0 {
		frac = float64(used) / float64(limit)
	}
	if frac > 1 {
		frac = 1
	}
	if frac < 0 {
		frac = 0
	}

	color := RemainingColor(limit-used, limit)
	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	countStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) +
		spaceStyle.Render(" ") +
		bar.ViewAs(frac) +
		spaceStyle.Render(" ") +
		countStyle.Render(fmt.Sprintf("%d/%d", used, limit))
}
