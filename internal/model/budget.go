package model

import "time"

// Default allowances.
const (
	DefaultClassPassLimit = 26
	DefaultSolidcoreLimit = 5
	DefaultResetDay       = 22
)

// Limits are the per-cycle allowances and the day of month a cycle starts on.
type Limits struct {
	ClassPass int
	Solidcore int
	ResetDay  int
}

// DefaultLimits returns the stock allowances.
func DefaultLimits() Limits {
	return Limits{
		ClassPass: DefaultClassPassLimit,
		Solidcore: DefaultSolidcoreLimit,
		ResetDay:  DefaultResetDay,
	}
}

// Balance is the state of the cycle containing "now".
// Remaining values go negative on overuse.
type Balance struct {
	CycleStart time.Time `json:"cycle_start"`
	CycleEnd   time.Time `json:"cycle_end"`

	Bonus              int `json:"bonus"`
	ClassPassLimit     int `json:"classpass_limit"`
	ClassPassUsed      int `json:"classpass_used"`
	ClassPassRemaining int `json:"classpass_remaining"`

	SolidcoreLimit     int `json:"solidcore_limit"`
	SolidcoreUsed      int `json:"solidcore_used"`
	SolidcoreRemaining int `json:"solidcore_remaining"`

	ProgressPercent float64 `json:"progress_percent"`
}

// DaysLeft counts whole days from now until the cycle resets.
func (b Balance) DaysLeft(now time.Time) int {
	d := b.CycleEnd.Sub(CivilDate(now))
	if d <= 0 {
		return 0
	}
	return int(d.Hours() / 24)
}
