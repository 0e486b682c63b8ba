package pipeline

import (
	"testing"

	"github.com/theirongolddev/wburn/internal/model"
)

func syntheticLog(b *testing.B, years int) []model.UsageEvent {
	b.Helper()
	start := mustDate(b, "2020-01-01")
	var events []model.UsageEvent
	for d := 0; d < years*365; d += 2 {
		typ := model.ClassPass
		if d%6 == 0 {
			typ = model.Solidcore
		}
		events = append(events, model.UsageEvent{
			ID:     "bench",
			Date:   start.AddDate(0, 0, d),
			Type:   typ,
			Amount: 1 + d%4,
		})
	}
	return events
}

func BenchmarkComputeBalance(b *testing.B) {
	events := syntheticLog(b, 6)
	now := mustTime(b, "2026-01-10 12:00")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ComputeBalance(events, now, stock)
	}
}

func BenchmarkCycleSummaries(b *testing.B) {
	events := syntheticLog(b, 6)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = CycleSummaries(events, 22)
	}
}
