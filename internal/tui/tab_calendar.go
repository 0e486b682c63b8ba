package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/wburn/internal/cli"
	"github.com/theirongolddev/wburn/internal/model"
	"github.com/theirongolddev/wburn/internal/tui/components"
	"github.com/theirongolddev/wburn/internal/tui/theme"
)

const (
	monthGridWidth = 20 // 7 cells of 2 plus 6 separators
	monthCardWidth = monthGridWidth + 4
	calendarRows   = 2
)

// renderCalendarTab lays out the months ending with the current one, newest
// first, one card per month.
func (a App) renderCalendarTab(cw int) string {
	perRow := max(cw/monthCardWidth, 1)
	count := perRow * calendarRows

	marks := make(map[int]model.CalendarMonth, len(a.report.Calendar))
	for _, m := range a.report.Calendar {
		marks[monthKey(m.Year, m.Month)] = m
	}

	today := model.CivilDate(a.report.Now)
	first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)

	cards := make([]string, 0, count)
	for i := 0; i < count; i++ {
		m := first.AddDate(0, -i, 0)
		cm := marks[monthKey(m.Year(), m.Month())]
		todayDay := 0
		if i == 0 {
			todayDay = today.Day()
		}
		title := fmt.Sprintf("%s %d", m.Month(), m.Year())
		if n := len(cm.Days); n > 0 {
			title += fmt.Sprintf(" · %d", n)
		}
		cards = append(cards, components.ContentCard(title,
			monthGrid(m.Year(), m.Month(), cm.Active, todayDay), monthCardWidth))
	}

	var rows []string
	for start := 0; start < len(cards); start += perRow {
		end := min(start+perRow, len(cards))
		rows = append(rows, components.CardRow(cards[start:end]))
	}

	t := theme.Active
	legend := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Background).Render(
		fmt.Sprintf(" %d active days in %d months on record", totalActiveDays(a.report.Calendar), len(a.report.Calendar)))
	return strings.Join(rows, "\n") + "\n" + legend
}

func monthGrid(year int, month time.Month, active func(day int) bool, today int) string {
	t := theme.Active
	headStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dayStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	activeStyle := lipgloss.NewStyle().Foreground(t.Background).Background(t.Accent).Bold(true)
	todayStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Underline(true)
	sepStyle := lipgloss.NewStyle().Background(t.Surface)

	var head []string
	for wd := 0; wd < 7; wd++ {
		head = append(head, cli.FormatDayOfWeek(wd)[:2])
	}

	var b strings.Builder
	b.WriteString(headStyle.Render(strings.Join(head, " ")))
	for _, week := range cli.CalendarWeeks(year, month) {
		b.WriteString("\n")
		for i, day := range week {
			if i > 0 {
				b.WriteString(sepStyle.Render(" "))
			}
			cell := fmt.Sprintf("%2d", day)
			switch {
			case day == 0:
				b.WriteString(sepStyle.Render("  "))
			case active(day):
				b.WriteString(activeStyle.Render(cell))
			case day == today:
				b.WriteString(todayStyle.Render(cell))
			default:
				b.WriteString(dayStyle.Render(cell))
			}
		}
	}
	return b.String()
}

func monthKey(year int, month time.Month) int {
	return year*12 + int(month)
}

func totalActiveDays(months []model.CalendarMonth) int {
	n := 0
	for _, m := range months {
		n += len(m.Days)
	}
	return n
}
