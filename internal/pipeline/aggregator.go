// Package pipeline derives cycles, rollover, balances and summaries from the
// usage event log. Every function here is pure: callers pass the events and
// the time they consider "now".
package pipeline

import (
	"sort"
	"strings"
	"time"

	"github.com/theirongolddev/wburn/internal/model"
)

// CycleSummaries totals events per billing cycle, newest cycle first.
// Only cycles containing at least one event are reported.
func CycleSummaries(events []model.UsageEvent, resetDay int) []model.CycleSummary {
	byCycle := make(map[int64]*model.CycleSummary)

	for _, e := range events {
		start := CycleStart(e.Date, resetDay)
		cs, ok := byCycle[cycleKey(start)]
		if !ok {
			cs = &model.CycleSummary{Start: start, End: CycleEnd(start)}
			byCycle[cycleKey(start)] = cs
		}
		cs.Add(e)
	}

	out := make([]model.CycleSummary, 0, len(byCycle))
	for _, cs := range byCycle {
		out = append(out, *cs)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Start.After(out[j].Start)
	})
	return out
}

// YearToDate totals events dated on or after anchor. ok is false when no
// event qualifies, in which case the summary should not be shown.
func YearToDate(events []model.UsageEvent, anchor time.Time) (model.Totals, bool) {
	anchor = model.CivilDate(anchor)

	var tot model.Totals
	for _, e := range events {
		if e.Date.Before(anchor) {
			continue
		}
		tot.Add(e)
	}
	return tot, tot.Events > 0
}

// CalendarMarks groups the civil days that have any event by month, newest
// month first. Days within a month are ascending and unique.
func CalendarMarks(events []model.UsageEvent) []model.CalendarMonth {
	type monthKey struct {
		year  int
		month time.Month
	}
	days := make(map[monthKey]map[int]struct{})

	for _, e := range events {
		y, m, d := e.Date.Date()
		k := monthKey{y, m}
		if days[k] == nil {
			days[k] = make(map[int]struct{})
		}
		days[k][d] = struct{}{}
	}

	out := make([]model.CalendarMonth, 0, len(days))
	for k, set := range days {
		cm := model.CalendarMonth{Year: k.year, Month: k.month, Days: make([]int, 0, len(set))}
		for d := range set {
			cm.Days = append(cm.Days, d)
		}
		sort.Ints(cm.Days)
		out = append(out, cm)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].Month > out[j].Month
	})
	return out
}

// SortNewestFirst orders events by date descending; same-day events keep the
// most recently created first.
func SortNewestFirst(events []model.UsageEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}

// FilterByTime returns events whose date falls within [since, until).
// A zero bound is open.
func FilterByTime(events []model.UsageEvent, since, until time.Time) []model.UsageEvent {
	if since.IsZero() && until.IsZero() {
		return events
	}

	var result []model.UsageEvent
	for _, e := range events {
		if !since.IsZero() && e.Date.Before(since) {
			continue
		}
		if !until.IsZero() && !e.Date.Before(until) {
			continue
		}
		result = append(result, e)
	}
	return result
}

// FilterByType returns events of the given type. An empty type keeps all.
func FilterByType(events []model.UsageEvent, t model.EventType) []model.UsageEvent {
	if t == "" {
		return events
	}
	var result []model.UsageEvent
	for _, e := range events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// FilterByText keeps events whose date, type or id contains q.
func FilterByText(events []model.UsageEvent, q string) []model.UsageEvent {
	q = strings.TrimSpace(q)
	if q == "" {
		return events
	}
	var result []model.UsageEvent
	for _, e := range events {
		if containsIgnoreCase(model.FormatDate(e.Date), q) ||
			containsIgnoreCase(string(e.Type), q) ||
			containsIgnoreCase(e.ID, q) {
			result = append(result, e)
		}
	}
	return result
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
