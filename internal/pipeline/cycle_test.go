package pipeline

import (
	"testing"
	"time"
)

func TestCycleStart(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"day before reset", "2026-01-21", "2025-12-22"},
		{"reset day", "2026-01-22", "2026-01-22"},
		{"after reset", "2026-01-31", "2026-01-22"},
		{"new year wraps back", "2026-01-01", "2025-12-22"},
		{"march before reset", "2026-03-21", "2026-02-22"},
		{"december after reset", "2025-12-30", "2025-12-22"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CycleStart(mustDate(t, tt.in), 22)
			if want := mustDate(t, tt.want); !got.Equal(want) {
				t.Fatalf("CycleStart(%s) = %s, want %s", tt.in, got.Format("2006-01-02"), tt.want)
			}
		})
	}
}

func TestCycleStart_IntervalContainsOrigin(t *testing.T) {
	for _, resetDay := range []int{1, 15, 22, 28} {
		d := mustTime(t, "2023-12-01 23:59")
		end := mustDate(t, "2027-03-01")
		for ; d.Before(end); d = d.AddDate(0, 0, 1) {
			start := CycleStart(d, resetDay)
			if d.Before(start) || !d.Before(CycleEnd(start)) {
				t.Fatalf("reset %d: %v not in [%v, %v)", resetDay, d, start, CycleEnd(start))
			}
			if again := CycleStart(start, resetDay); !again.Equal(start) {
				t.Fatalf("reset %d: CycleStart not idempotent: %v -> %v", resetDay, start, again)
			}
			if start.Day() != resetDay {
				t.Fatalf("reset %d: start %v not on reset day", resetDay, start)
			}
		}
	}
}

func TestCycleStart_LocalCalendarDay(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// 00:30 on the 22nd in New York is still the 22nd locally.
	now := time.Date(2026, time.March, 22, 0, 30, 0, 0, ny)
	if got := CycleStart(now, 22); !got.Equal(mustDate(t, "2026-03-22")) {
		t.Fatalf("CycleStart = %v, want 2026-03-22", got)
	}
	// 21:00 on the 21st in New York is the 22nd in UTC but still the prior cycle.
	now = time.Date(2026, time.March, 21, 21, 0, 0, 0, ny)
	if got := CycleStart(now, 22); !got.Equal(mustDate(t, "2026-02-22")) {
		t.Fatalf("CycleStart = %v, want 2026-02-22", got)
	}
}

func TestCycleStart_ClampsResetDay(t *testing.T) {
	if got := CycleStart(mustDate(t, "2026-02-28"), 31); !got.Equal(mustDate(t, "2026-02-28")) {
		t.Fatalf("CycleStart reset 31 = %v, want 2026-02-28", got)
	}
	if got := CycleStart(mustDate(t, "2026-02-05"), 0); !got.Equal(mustDate(t, "2026-02-01")) {
		t.Fatalf("CycleStart reset 0 = %v, want 2026-02-01", got)
	}
}

func TestCycles_ContiguousAndIncreasing(t *testing.T) {
	starts := Cycles(mustDate(t, "2024-01-10"), mustDate(t, "2027-01-10"), 22)
	if len(starts) != 36 {
		t.Fatalf("len(Cycles) = %d, want 36", len(starts))
	}
	if !starts[0].Equal(mustDate(t, "2023-12-22")) {
		t.Fatalf("first = %v, want 2023-12-22", starts[0])
	}
	for i := 1; i < len(starts); i++ {
		if !starts[i].After(starts[i-1]) {
			t.Fatalf("cycle %d (%v) not after %v", i, starts[i], starts[i-1])
		}
		if !CycleEnd(starts[i-1]).Equal(starts[i]) {
			t.Fatalf("gap between %v and %v", starts[i-1], starts[i])
		}
	}
}

func TestCycles_EmptyWhenSameCycle(t *testing.T) {
	if got := Cycles(mustDate(t, "2026-01-22"), mustDate(t, "2026-02-21"), 22); len(got) != 0 {
		t.Fatalf("Cycles = %v, want empty", got)
	}
	if got := Cycles(mustDate(t, "2026-05-01"), mustDate(t, "2026-01-01"), 22); len(got) != 0 {
		t.Fatalf("Cycles reversed = %v, want empty", got)
	}
}
