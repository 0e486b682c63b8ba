// Package model defines domain types for wburn usage events and the balances derived from them.
package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Validation errors returned before any change reaches the event log.
var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidType   = errors.New("invalid activity type")
)

// EventType is the kind of activity an event consumes.
type EventType string

const (
	ClassPass EventType = "classpass"
	Solidcore EventType = "solidcore"
)

// EventTypes lists every known activity type in display order.
var EventTypes = []EventType{ClassPass, Solidcore}

// Valid reports whether t is a known activity type.
func (t EventType) Valid() bool {
	return t == ClassPass || t == Solidcore
}

// Label returns the display name for t.
func (t EventType) Label() string {
	switch t {
	case ClassPass:
		return "ClassPass"
	case Solidcore:
		return "Solidcore"
	default:
		return string(t)
	}
}

// Unit names what a single amount of t counts.
func (t EventType) Unit() string {
	if t == Solidcore {
		return "classes"
	}
	return "credits"
}

// ParseEventType accepts a type name case-insensitively.
func ParseEventType(s string) (EventType, error) {
	t := EventType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q (want classpass or solidcore)", ErrInvalidType, s)
	}
	return t, nil
}

// UsageEvent is one recorded use of credits or classes.
// Date is a civil date: midnight UTC carrying the calendar day the user meant.
type UsageEvent struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	Type      EventType `json:"type"`
	Amount    int       `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the fields a stored event must satisfy.
func (e UsageEvent) Validate() error {
	if err := ValidateAmount(e.Amount); err != nil {
		return err
	}
	if err := ValidateDate(e.Date); err != nil {
		return err
	}
	if !e.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, e.Type)
	}
	return nil
}

// ValidateAmount rejects zero and negative amounts.
func ValidateAmount(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: must be positive, got %d", ErrInvalidAmount, n)
	}
	return nil
}

// ValidateDate rejects the zero time, which stands for a missing date.
func ValidateDate(t time.Time) error {
	if t.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidDate)
	}
	return nil
}

// ParseAmount parses user input into a positive amount.
func ParseAmount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: amount is required", ErrInvalidAmount)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a whole number", ErrInvalidAmount, s)
	}
	if err := ValidateAmount(n); err != nil {
		return 0, err
	}
	return n, nil
}
