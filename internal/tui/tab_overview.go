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

const recentEntries = 6

func (a App) renderOverviewTab(cw int) string {
	r := a.report
	bal := r.Balance
	var b strings.Builder

	// Row 1: balances
	cpNote := "no rollover"
	if bal.Bonus > 0 {
		cpNote = fmt.Sprintf("incl. +%d rollover", bal.Bonus)
	}
	scNote := fmt.Sprintf("%d used", bal.SolidcoreUsed)
	if bal.SolidcoreRemaining < 0 {
		scNote = fmt.Sprintf("%d over", -bal.SolidcoreRemaining)
	}
	metrics := []components.Metric{
		{
			Label: "ClassPass left",
			Value: fmt.Sprintf("%d / %d", bal.ClassPassRemaining, bal.ClassPassLimit),
			Note:  cpNote,
			Color: components.RemainingColor(bal.ClassPassRemaining, bal.ClassPassLimit),
		},
		{
			Label: "Solidcore left",
			Value: fmt.Sprintf("%d / %d", bal.SolidcoreRemaining, bal.SolidcoreLimit),
			Note:  scNote,
			Color: components.RemainingColor(bal.SolidcoreRemaining, bal.SolidcoreLimit),
		},
		{
			Label: "Resets in",
			Value: cli.FormatDays(bal.DaysLeft(r.Now)),
			Note:  cli.FormatDate(bal.CycleEnd),
		},
	}
	b.WriteString(components.MetricCardRow(metrics, cw))
	b.WriteString("\n")

	// Row 2: cycle progress and usage
	halves := components.LayoutRow(cw, 2)
	if a.isCompactLayout() {
		halves = []int{cw, cw}
	}
	cycleCard := components.ContentCard("Cycle", a.cycleProgressBody(halves[0]), halves[0])
	usageCard := components.ContentCard("Used this cycle", usageBody(bal, halves[1]), halves[1])
	if a.isCompactLayout() {
		b.WriteString(cycleCard + "\n" + usageCard)
	} else {
		b.WriteString(components.CardRow([]string{cycleCard, usageCard}))
	}
	b.WriteString("\n")

	// Row 3: recent entries and year to date
	recent := components.ContentCard("Recent", a.recentBody(), halves[0])
	ytd := components.ContentCard("Year to date", a.ytdBody(), halves[1])
	if a.isCompactLayout() {
		b.WriteString(recent + "\n" + ytd)
	} else {
		b.WriteString(components.CardRow([]string{recent, ytd}))
	}

	return b.String()
}

func (a App) cycleProgressBody(outerW int) string {
	t := theme.Active
	bal := a.report.Balance
	inner := components.CardInnerWidth(outerW)

	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	bar := components.NewCycleBar(max(inner-6, 10))
	var b strings.Builder
	b.WriteString(bar.ViewAs(bal.ProgressPercent / 100))
	b.WriteString(spaceStyle.Render(" "))
	b.WriteString(pctStyle.Render(fmt.Sprintf("%4s", cli.FormatPercent(bal.ProgressPercent))))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(cli.FormatCycle(bal.CycleStart, bal.CycleEnd)))

	// ClassPass per cycle, oldest left.
	if n := len(a.report.Cycles); n > 1 {
		vals := make([]float64, n)
		for i, c := range a.report.Cycles {
			vals[n-1-i] = float64(c.ClassPass)
		}
		if room := max(inner-12, 1); len(vals) > room {
			vals = vals[len(vals)-room:]
		}
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("history  "))
		b.WriteString(components.Sparkline(vals, t.Activity(model.ClassPass)))
	}
	return b.String()
}

func usageBody(bal model.Balance, outerW int) string {
	const labelW = 10
	barW := max(components.CardInnerWidth(outerW)-labelW-8, 10)
	return components.UsageBar(model.ClassPass.Label(), bal.ClassPassUsed, bal.ClassPassLimit, labelW, barW) + "\n" +
		components.UsageBar(model.Solidcore.Label(), bal.SolidcoreUsed, bal.SolidcoreLimit, labelW, barW)
}

func (a App) recentBody() string {
	t := theme.Active
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	if len(a.report.Events) == 0 {
		return dimStyle.Render("Nothing logged yet. Press n to add an entry.")
	}

	dateStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	amountStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	lines := make([]string, 0, recentEntries)
	for i, e := range a.report.Events {
		if i == recentEntries {
			break
		}
		typeStyle := lipgloss.NewStyle().Foreground(t.Activity(e.Type)).Background(t.Surface)
		line := dateStyle.Render(fmt.Sprintf("%-11s", cli.FormatDate(e.Date))) +
			spaceStyle.Render(" ") +
			typeStyle.Render(fmt.Sprintf("%-10s", e.Type.Label())) +
			amountStyle.Render(fmt.Sprintf("%3d", e.Amount)) +
			dateStyle.Render(" "+e.Type.Unit())
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (a App) ytdBody() string {
	t := theme.Active
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)

	anchor := model.FormatDate(a.svc.YTDAnchor())
	ytd := a.report.YTD
	if ytd == nil {
		return mutedStyle.Render("Nothing logged since " + anchor)
	}

	rows := []struct {
		label string
		value int
	}{
		{model.ClassPass.Label() + " credits", ytd.ClassPass},
		{model.Solidcore.Label() + " classes", ytd.Solidcore},
		{"Entries", ytd.Events},
	}
	var b strings.Builder
	for _, row := range rows {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%-18s", row.label)))
		b.WriteString(valueStyle.Render(cli.FormatNumber(int64(row.value))))
		b.WriteString("\n")
	}
	b.WriteString(mutedStyle.Render("since " + anchor))
	return b.String()
}
