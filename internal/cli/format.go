// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-100 value as a percentage string.
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.0f%%", pct)
}

// FormatSigned formats n with an explicit sign, e.g. "+6", "-8", "0".
func FormatSigned(n int) string {
	if n > 0 {
		return "+" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// FormatDayOfWeek returns a 3-letter day abbreviation from a weekday number.
func FormatDayOfWeek(weekday int) string {
	days := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	if weekday >= 0 && weekday < 7 {
		return days[weekday]
	}
	return "???"
}

// FormatDate renders a civil date as "Mon Jan 2".
func FormatDate(t time.Time) string {
	return t.Format("Mon Jan 2")
}

// FormatCycle renders a half-open cycle as its first and last day,
// e.g. "Dec 22, 2025 - Jan 21, 2026".
func FormatCycle(start, end time.Time) string {
	last := end.AddDate(0, 0, -1)
	return start.Format("Jan 2, 2006") + " - " + last.Format("Jan 2, 2006")
}

// FormatCycleShort renders a cycle start as "Dec 22 '25".
func FormatCycleShort(start time.Time) string {
	return start.Format("Jan 2 '06")
}

// FormatDays renders a day count with the right plural.
func FormatDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

// FormatShortID shortens an event id for tables. Ids can be typed back by
// any unique prefix.
func FormatShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
