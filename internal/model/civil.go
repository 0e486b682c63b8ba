package model

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the civil date format used for input, storage keys and display.
const DateLayout = "2006-01-02"

// CivilDate drops the time of day and zone from t, keeping the calendar day
// as seen in t's own location. The result is midnight UTC.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WallClock re-expresses t's local wall-clock reading in UTC so it can be
// compared with civil dates without any DST or offset arithmetic.
func WallClock(t time.Time) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()
	return time.Date(y, m, d, hh, mm, ss, t.Nanosecond(), time.UTC)
}

// ParseDate reads either a plain YYYY-MM-DD date or an RFC 3339 timestamp.
// Timestamps are moved into loc before the calendar day is taken, which is how
// exported browser timestamps of local midnight map back to the intended day.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: date is required", ErrInvalidDate)
	}
	if loc == nil {
		loc = time.Local
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		ts, tsErr := time.Parse(time.RFC3339Nano, s)
		if tsErr != nil {
			return time.Time{}, fmt.Errorf("%w: %q (want YYYY-MM-DD)", ErrInvalidDate, s)
		}
		t = CivilDate(ts.In(loc))
	}
	// The zero time marks a missing date everywhere else.
	if t.IsZero() {
		return time.Time{}, fmt.Errorf("%w: %q is out of range", ErrInvalidDate, s)
	}
	return t, nil
}

// FormatDate renders a civil date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
