package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/wburn/internal/tui/theme"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	peak := values[0]
	for _, v := range values[1:] {
		peak = max(peak, v)
	}
	if peak == 0 {
		peak = 1
	}

	var buf strings.Builder
	for _, v := range values {
		idx := int(v / peak * float64(len(sparkBlocks)-1))
		idx = min(max(idx, 0), len(sparkBlocks)-1)
		buf.WriteRune(sparkBlocks[idx])
	}
	return lipgloss.NewStyle().Foreground(color).Background(theme.Active.Surface).Render(buf.String())
}

// UsageColumns draws one column per value, oldest left, scaled so that the
// limit line sits at the top. Columns over the limit are capped and drawn red.
func UsageColumns(values []int, limit int, labels []string, height int) string {
	if len(values) == 0 || height < 2 {
		return ""
	}
	t := theme.Active

	scale := limit
	for _, v := range values {
		scale = max(scale, v)
	}
	if scale <= 0 {
		scale = 1
	}

	const colW = 4
	base := lipgloss.NewStyle().Background(t.Surface)
	okStyle := base.Foreground(t.Accent)
	overStyle := base.Foreground(t.Red)
	limitStyle := base.Foreground(t.TextDim)
	axisStyle := base.Foreground(t.TextDim)

	limitRow := -1
	if limit > 0 {
		limitRow = (limit*height + scale - 1) / scale
	}

	var b strings.Builder
	for row := height; row >= 1; row-- {
		label := "   "
		if row == limitRow {
			label = fmt.Sprintf("%3d", limit)
		}
		b.WriteString(axisStyle.Render(label + "│"))
		for _, v := range values {
			filled := v * height / scale
			style := okStyle
			if limit > 0 && v > limit {
				style = overStyle
			}
			switch {
			case filled >= row:
				b.WriteString(style.Render(strings.Repeat("█", colW-1)) + base.Render(" "))
			case row == limitRow:
				b.WriteString(limitStyle.Render(strings.Repeat("┄", colW)))
			default:
				b.WriteString(base.Render(strings.Repeat(" ", colW)))
			}
		}
		b.WriteString("\n")
	}
	b.WriteString(axisStyle.Render("   └" + strings.Repeat("─", len(values)*colW)))

	if len(labels) == len(values) {
		b.WriteString("\n")
		b.WriteString(base.Render("    "))
		for _, l := range labels {
			if len(l) > colW {
				l = l[:colW]
			}
			b.WriteString(axisStyle.Render(fmt.Sprintf("%-*s", colW, l)))
		}
	}
	return b.String()
}
