package pipeline

import "time"

// Reset days are limited to 1..28 so every month has one.
const (
	minResetDay = 1
	maxResetDay = 28
)

func clampResetDay(day int) int {
	switch {
	case day < minResetDay:
		return minResetDay
	case day > maxResetDay:
		return maxResetDay
	default:
		return day
	}
}

// CycleStart returns the first day of the billing cycle containing d.
// Days before resetDay belong to the cycle that began the previous month.
// The calendar day is read in d's own location and the result is midnight UTC.
func CycleStart(d time.Time, resetDay int) time.Time {
	resetDay = clampResetDay(resetDay)
	y, m, day := d.Date()
	if day < resetDay {
		m-- // time.Date normalizes month 0 to December of the prior year
	}
	return time.Date(y, m, resetDay, 0, 0, 0, 0, time.UTC)
}

// CycleEnd returns the exclusive end of the cycle beginning at start,
// one calendar month later.
func CycleEnd(start time.Time) time.Time {
	return start.AddDate(0, 1, 0)
}

// Cycles lists the start of every cycle from the one containing from up to,
// but not including, the one containing to. Empty when from's cycle is not
// before to's.
func Cycles(from, to time.Time, resetDay int) []time.Time {
	start := CycleStart(from, resetDay)
	stop := CycleStart(to, resetDay)

	var starts []time.Time
	for s := start; s.Before(stop); s = CycleEnd(s) {
		starts = append(starts, s)
	}
	return starts
}

// cycleKey identifies a cycle by its start for map bucketing.
func cycleKey(start time.Time) int64 {
	return start.Unix()
}
