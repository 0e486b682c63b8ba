// Package store persists the usage event log.
package store

import (
	"context"
	"errors"

	"github.com/theirongolddev/wburn/internal/model"
)

var (
	// ErrNotFound is returned when no event has the requested id.
	ErrNotFound = errors.New("event not found")
	// ErrDuplicateID is returned when inserting an id that is already stored.
	ErrDuplicateID = errors.New("event id already exists")
)

// EventStore is the persistence contract for the event log. Implementations
// round-trip every UsageEvent field exactly and never store a partial write.
type EventStore interface {
	List(ctx context.Context) ([]model.UsageEvent, error)
	Get(ctx context.Context, id string) (model.UsageEvent, error)
	Insert(ctx context.Context, e model.UsageEvent) error
	Update(ctx context.Context, e model.UsageEvent) error
	Delete(ctx context.Context, id string) error
	Close() error
}
