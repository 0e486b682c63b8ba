package pipeline

import (
	"fmt"
	"testing"
	"time"

	"github.com/theirongolddev/wburn/internal/model"
)

func mustDate(t testing.TB, s string) time.Time {
	t.Helper()
	d, err := time.Parse(model.DateLayout, s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

func mustTime(t testing.TB, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

var evSeq int

func ev(t testing.TB, date string, typ model.EventType, amount int) model.UsageEvent {
	t.Helper()
	evSeq++
	return model.UsageEvent{
		ID:     fmt.Sprintf("ev-%03d", evSeq),
		Date:   mustDate(t, date),
		Type:   typ,
		Amount: amount,
	}
}

var stock = model.DefaultLimits()
