package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/theirongolddev/wburn/internal/model"
)

// Memory keeps events in process memory. Used for fixtures and tests.
type Memory struct {
	mu     sync.Mutex
	order  []string
	events map[string]model.UsageEvent
}

var _ EventStore = (*Memory)(nil)

// NewMemory returns an empty in-memory store seeded with events.
func NewMemory(seed ...model.UsageEvent) *Memory {
	m := &Memory{events: make(map[string]model.UsageEvent)}
	for _, e := range seed {
		m.order = append(m.order, e.ID)
		m.events[e.ID] = e
	}
	return m
}

func (m *Memory) List(_ context.Context) ([]model.UsageEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.UsageEvent, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.events[id])
	}
	return out, nil
}

func (m *Memory) Get(_ context.Context, id string) (model.UsageEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.events[id]
	if !ok {
		return model.UsageEvent{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, nil
}

func (m *Memory) Insert(_ context.Context, e model.UsageEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.events[e.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, e.ID)
	}
	m.order = append(m.order, e.ID)
	m.events[e.ID] = e
	return nil
}

func (m *Memory) Update(_ context.Context, e model.UsageEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	old, ok := m.events[e.ID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, e.ID)
	}
	e.CreatedAt = old.CreatedAt
	m.events[e.ID] = e
	return nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.events[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(m.events, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) Close() error { return nil }
