package pipeline

import (
	"time"

	"github.com/theirongolddev/wburn/internal/model"
)

// ComputeBalance derives the remaining allowances and elapsed progress for
// the cycle containing now. Remaining counts are not floored.
func ComputeBalance(events []model.UsageEvent, now time.Time, limits model.Limits) model.Balance {
	wall := model.WallClock(now)
	start := CycleStart(wall, limits.ResetDay)
	end := CycleEnd(start)

	bonus := RolloverBonus(events, now, limits)

	var cur model.Totals
	for _, e := range FilterByTime(events, start, end) {
		cur.Add(e)
	}

	b := model.Balance{
		CycleStart:     start,
		CycleEnd:       end,
		Bonus:          bonus,
		ClassPassLimit: limits.ClassPass + bonus,
		ClassPassUsed:  cur.ClassPass,
		SolidcoreLimit: limits.Solidcore,
		SolidcoreUsed:  cur.Solidcore,
	}
	b.ClassPassRemaining = b.ClassPassLimit - b.ClassPassUsed
	b.SolidcoreRemaining = b.SolidcoreLimit - b.SolidcoreUsed
	b.ProgressPercent = progressPercent(wall, start, end)
	return b
}

func progressPercent(now, start, end time.Time) float64 {
	total := end.Sub(start)
	if total <= 0 {
		return 0
	}
	pct := float64(now.Sub(start)) / float64(total) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
