package model

import "time"

// Totals sums event amounts by type.
type Totals struct {
	ClassPass int `json:"classpass"`
	Solidcore int `json:"solidcore"`
	Events    int `json:"events"`
}

// Add counts e toward the totals.
func (t *Totals) Add(e UsageEvent) {
	switch e.Type {
	case ClassPass:
		t.ClassPass += e.Amount
	case Solidcore:
		t.Solidcore += e.Amount
	}
	t.Events++
}

// CycleSummary holds the totals for one billing cycle [Start, End).
type CycleSummary struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Totals
}

// LedgerRow is one step of the rollover walk.
type LedgerRow struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	BonusIn  int       `json:"bonus_in"`
	Limit    int       `json:"limit"`
	Used     int       `json:"used"`
	Leftover int       `json:"leftover"`
	CarryOut int       `json:"carry_out"`
}

// CalendarMonth lists the days of one month with at least one event.
type CalendarMonth struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Days  []int      `json:"days"` // ascending, unique
}

// Active reports whether day has an event.
func (m CalendarMonth) Active(day int) bool {
	for _, d := range m.Days {
		if d == day {
			return true
		}
	}
	return false
}
