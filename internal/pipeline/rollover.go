package pipeline

import (
	"time"

	"github.com/theirongolddev/wburn/internal/model"
)

// Ledger walks every cycle from the first event's cycle up to the cycle
// containing now, carrying unused class-pass allowance forward. Each row's
// carry is clamped to [0, limits.ClassPass]. Cycles without events still
// produce a row. Returns nil for an empty log.
func Ledger(events []model.UsageEvent, now time.Time, limits model.Limits) []model.LedgerRow {
	if len(events) == 0 {
		return nil
	}

	first := events[0].Date
	for _, e := range events[1:] {
		if e.Date.Before(first) {
			first = e.Date
		}
	}

	used := classPassByCycle(events, limits.ResetDay)
	starts := Cycles(first, model.WallClock(now), limits.ResetDay)

	rows := make([]model.LedgerRow, 0, len(starts))
	carry := 0
	for _, start := range starts {
		limit := limits.ClassPass + carry
		u := used[cycleKey(start)]
		leftover := limit - u
		next := clamp(leftover, 0, limits.ClassPass)

		rows = append(rows, model.LedgerRow{
			Start:    start,
			End:      CycleEnd(start),
			BonusIn:  carry,
			Limit:    limit,
			Used:     u,
			Leftover: leftover,
			CarryOut: next,
		})
		carry = next
	}
	return rows
}

// RolloverBonus returns the carry fed into the cycle containing now.
func RolloverBonus(events []model.UsageEvent, now time.Time, limits model.Limits) int {
	rows := Ledger(events, now, limits)
	if len(rows) == 0 {
		return 0
	}
	return rows[len(rows)-1].CarryOut
}

func classPassByCycle(events []model.UsageEvent, resetDay int) map[int64]int {
	used := make(map[int64]int)
	for _, e := range events {
		if e.Type != model.ClassPass {
			continue
		}
		used[cycleKey(CycleStart(e.Date, resetDay))] += e.Amount
	}
	return used
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
