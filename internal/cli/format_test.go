package cli

import (
	"testing"
	"time"
)

func TestFormatNumber(t *testing.T) {
	tests := map[int64]string{
		0:        "0",
		999:      "999",
		1000:     "1,000",
		1234567:  "1,234,567",
		-1234567: "-1,234,567",
	}
	for in, want := range tests {
		if got := FormatNumber(in); got != want {
			t.Errorf("FormatNumber(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatSigned(t *testing.T) {
	for in, want := range map[int]string{6: "+6", 0: "0", -8: "-8"} {
		if got := FormatSigned(in); got != want {
			t.Errorf("FormatSigned(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatCycle(t *testing.T) {
	start := time.Date(2025, 12, 22, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 22, 0, 0, 0, 0, time.UTC)
	if got, want := FormatCycle(start, end), "Dec 22, 2025 - Jan 21, 2026"; got != want {
		t.Fatalf("FormatCycle = %q, want %q", got, want)
	}
	if got := FormatCycleShort(start); got != "Dec 22 '25" {
		t.Fatalf("FormatCycleShort = %q", got)
	}
}

func TestFormatDaysAndIDs(t *testing.T) {
	if FormatDays(1) != "1 day" || FormatDays(3) != "3 days" {
		t.Fatal("FormatDays plural mismatch")
	}
	if got := FormatShortID("5b0f0d8e-3c1f-4d5e"); got != "5b0f0d8e" {
		t.Fatalf("FormatShortID = %q", got)
	}
	if got := FormatShortID("abc"); got != "abc" {
		t.Fatalf("FormatShortID(short) = %q", got)
	}
	if got := FormatDayOfWeek(9); got != "???" {
		t.Fatalf("FormatDayOfWeek(9) = %q", got)
	}
}
