package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/wburn/internal/cli"
	"github.com/theirongolddev/wburn/internal/model"
	"github.com/theirongolddev/wburn/internal/pipeline"
	"github.com/theirongolddev/wburn/internal/tui/components"
	"github.com/theirongolddev/wburn/internal/tui/theme"
)

func (a App) renderHistoryTab(cw, h int) string {
	events := a.historyEvents()

	if a.isCompactLayout() {
		return a.renderHistoryList(events, cw, h)
	}

	widths := components.LayoutRow(cw, 3)
	listW := widths[0] + widths[1]
	detailW := widths[2]
	return components.CardRow([]string{
		a.renderHistoryList(events, listW, h),
		a.renderHistoryDetail(events, detailW),
	})
}

func (a App) renderHistoryList(events []model.UsageEvent, w, h int) string {
	t := theme.Active

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover).Bold(true)
	warnStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Bold(true)

	inner := components.CardInnerWidth(w)
	var body strings.Builder

	switch {
	case a.hist.filtering:
		body.WriteString(a.hist.filterInput.View())
		body.WriteString("\n")
	case a.hist.query != "":
		body.WriteString(mutedStyle.Render(fmt.Sprintf("filter %q · %d of %d · esc to clear",
			a.hist.query, len(events), len(a.report.Events))))
		body.WriteString("\n")
	}

	if len(events) == 0 {
		msg := "Nothing logged yet. Press n to add an entry."
		if a.hist.query != "" {
			msg = "No entries match the filter."
		}
		body.WriteString(dimStyle.Render(msg))
		return components.ContentCard("History", body.String(), w)
	}

	body.WriteString(headerStyle.Render(fmt.Sprintf("  %-11s %-10s %6s  %-8s", "Date", "Activity", "Amount", "ID")))
	body.WriteString("\n")

	// Border, title, column header and the optional filter line.
	visible := max(h-5, 1)
	if a.hist.filtering || a.hist.query != "" {
		visible = max(visible-1, 1)
	}
	if a.hist.confirmID != "" {
		visible = max(visible-1, 1)
	}
	start := 0
	if a.hist.cursor >= visible {
		start = a.hist.cursor - visible + 1
	}
	end := min(start+visible, len(events))

	for i := start; i < end; i++ {
		e := events[i]
		marker := "  "
		if i == a.hist.cursor {
			marker = "▸ "
		}
		line := fmt.Sprintf("%s%-11s %-10s %6d  %-8s",
			marker, cli.FormatDate(e.Date), e.Type.Label(), e.Amount, cli.FormatShortID(e.ID))
		line = fmt.Sprintf("%-*s", inner, line)
		if i == a.hist.cursor {
			body.WriteString(selectedStyle.Render(line))
		} else {
			body.WriteString(rowStyle.Render(line))
		}
		if i < end-1 {
			body.WriteString("\n")
		}
	}

	if a.hist.confirmID != "" {
		body.WriteString("\n")
		body.WriteString(warnStyle.Render(fmt.Sprintf("Delete %s? y/n", cli.FormatShortID(a.hist.confirmID))))
	}

	title := fmt.Sprintf("History [%d]", len(events))
	return components.ContentCard(title, body.String(), w)
}

func (a App) renderHistoryDetail(events []model.UsageEvent, w int) string {
	t := theme.Active
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	e, ok := a.selectedEvent()
	if !ok || len(events) == 0 {
		return components.ContentCard("Entry", labelStyle.Render("No entry selected"), w)
	}

	start := pipeline.CycleStart(e.Date, a.svc.Limits().ResetDay)
	typeStyle := lipgloss.NewStyle().Foreground(t.Activity(e.Type)).Background(t.Surface).Bold(true)

	type detailRow struct {
		label string
		value string
	}
	rows := []detailRow{
		{"Date", model.FormatDate(e.Date) + " " + e.Date.Weekday().String()[:3]},
		{"Amount", fmt.Sprintf("%d %s", e.Amount, e.Type.Unit())},
		{"Cycle", cli.FormatCycle(start, pipeline.CycleEnd(start))},
		{"ID", e.ID},
	}
	if !e.CreatedAt.IsZero() {
		rows = append(rows, detailRow{"Logged", e.CreatedAt.In(a.loc).Format("2006-01-02 15:04")})
	}

	inner := components.CardInnerWidth(w)
	var b strings.Builder
	b.WriteString(typeStyle.Render(e.Type.Label()))
	for _, row := range rows {
		b.WriteString("\n")
		value := row.value
		if room := inner - 8; room > 0 && len(value) > room {
			value = value[:room]
		}
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-8s", row.label)))
		b.WriteString(valueStyle.Render(value))
	}
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("e edit · d delete"))
	return components.ContentCard("Entry", b.String(), w)
}
