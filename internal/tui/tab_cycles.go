package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/wburn/internal/cli"
	"github.com/theirongolddev/wburn/internal/model"
	"github.com/theirongolddev/wburn/internal/tui/components"
	"github.com/theirongolddev/wburn/internal/tui/theme"
)

const (
	cycleChartHeight        = 8
	cycleChartHeightCompact = 6
	maxCycleRows            = 12
)

func (a App) renderCyclesTab(cw int) string {
	t := theme.Active
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	cycles := a.report.Cycles
	if len(cycles) == 0 {
		return components.ContentCard("Cycles", dimStyle.Render("Nothing logged yet."), cw)
	}

	var b strings.Builder

	// Chart: ClassPass credits per cycle against the base allowance.
	inner := components.CardInnerWidth(cw)
	fit := max((inner-6)/4, 1)
	n := min(len(cycles), fit)
	values := make([]int, n)
	labels := make([]string, n)
	for i := 0; i < n; i++ {
		c := cycles[n-1-i] // oldest left
		values[i] = c.ClassPass
		labels[i] = c.Start.Format("Jan")
	}
	height := cycleChartHeight
	if a.isCompactLayout() {
		height = cycleChartHeightCompact
	}
	title := fmt.Sprintf("ClassPass credits per cycle (last %d)", n)
	b.WriteString(components.ContentCard(title,
		components.UsageColumns(values, a.svc.Limits().ClassPass, labels, height), cw))
	b.WriteString("\n")

	halves := components.LayoutRow(cw, 2)
	if a.isCompactLayout() {
		b.WriteString(components.ContentCard("Totals", a.cycleTotalsBody(), cw))
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Rollover", a.ledgerBody(), cw))
		return b.String()
	}
	b.WriteString(components.CardRow([]string{
		components.ContentCard("Totals", a.cycleTotalsBody(), halves[0]),
		components.ContentCard("Rollover", a.ledgerBody(), halves[1]),
	}))
	return b.String()
}

func (a App) cycleTotalsBody() string {
	t := theme.Active
	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	overStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	limits := a.svc.Limits()
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-11s %9s %9s %7s", "Cycle", "ClassPass", "Solidcore", "Entries")))
	for i, c := range a.report.Cycles {
		if i == maxCycleRows {
			b.WriteString("\n")
			b.WriteString(dimStyle.Render(fmt.Sprintf("… %d older", len(a.report.Cycles)-maxCycleRows)))
			break
		}
		line := fmt.Sprintf("%-11s %9d %9d %7d",
			cli.FormatCycleShort(c.Start), c.ClassPass, c.Solidcore, c.Events)
		style := rowStyle
		if c.ClassPass > limits.ClassPass || c.Solidcore > limits.Solidcore {
			style = overStyle
		}
		b.WriteString("\n")
		b.WriteString(style.Render(line))
	}
	return b.String()
}

// ledgerBody shows the rollover walk, newest first, headed by the current
// cycle with the bonus it received.
func (a App) ledgerBody() string {
	t := theme.Active
	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	nowStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	const rowFmt = "%-11s %5s %5d %5d %6s %5s"

	bal := a.report.Balance
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-11s %5s %5s %5s %6s %5s",
		"Cycle", "Bonus", "Limit", "Used", "Left", "Carry")))
	b.WriteString("\n")
	b.WriteString(nowStyle.Render(fmt.Sprintf(rowFmt,
		cli.FormatCycleShort(bal.CycleStart), cli.FormatSigned(bal.Bonus),
		bal.ClassPassLimit, bal.ClassPassUsed, cli.FormatSigned(bal.ClassPassRemaining), "now")))

	rows := a.report.Ledger
	if len(rows) == 0 {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("No earlier cycles to carry from."))
		return b.String()
	}
	shown := 0
	for i := len(rows) - 1; i >= 0; i-- {
		if shown == maxCycleRows-1 {
			b.WriteString("\n")
			b.WriteString(dimStyle.Render(fmt.Sprintf("… %d older", i+1)))
			break
		}
		b.WriteString("\n")
		b.WriteString(rowStyle.Render(ledgerLine(rowFmt, rows[i])))
		shown++
	}
	return b.String()
}

func ledgerLine(format string, r model.LedgerRow) string {
	return fmt.Sprintf(format,
		cli.FormatCycleShort(r.Start), cli.FormatSigned(r.BonusIn),
		r.Limit, r.Used, cli.FormatSigned(r.Leftover), cli.FormatSigned(r.CarryOut))
}
