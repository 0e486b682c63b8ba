// Package tracker is the boundary between callers and the event log. It
// validates input before any write, serializes writers, and recomputes every
// derived figure from the full log on each read.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/theirongolddev/wburn/internal/model"
	"github.com/theirongolddev/wburn/internal/pipeline"
	"github.com/theirongolddev/wburn/internal/store"
)

// ErrAmbiguousID is returned when an id prefix matches more than one event.
var ErrAmbiguousID = errors.New("id prefix matches more than one event")

// DefaultYTDAnchor is the first day counted by the year-to-date summary.
var DefaultYTDAnchor = time.Date(2025, time.December, 22, 0, 0, 0, 0, time.UTC)

// Options configures a Service. Zero values fall back to defaults.
type Options struct {
	Limits    model.Limits
	YTDAnchor time.Time
	Clock     Clock
	// Location is the zone "now" is read in before taking the civil day.
	// Nil keeps whatever zone the clock returns.
	Location *time.Location
	Logger   zerolog.Logger
}

// Service owns the event log for one local user.
type Service struct {
	mu     sync.RWMutex
	store  store.EventStore
	limits model.Limits
	anchor time.Time
	clock  Clock
	loc    *time.Location
	log    zerolog.Logger
	newID  func() string
}

// New returns a Service backed by st.
func New(st store.EventStore, opts Options) *Service {
	if opts.Limits == (model.Limits{}) {
		opts.Limits = model.DefaultLimits()
	}
	if opts.YTDAnchor.IsZero() {
		opts.YTDAnchor = DefaultYTDAnchor
	}
	if opts.Clock == nil {
		opts.Clock = RealClock{Location: opts.Location}
	}
	return &Service{
		store:  st,
		limits: opts.Limits,
		anchor: model.CivilDate(opts.YTDAnchor),
		clock:  opts.Clock,
		loc:    opts.Location,
		log:    opts.Logger.With().Str("component", "tracker").Logger(),
		newID:  uuid.NewString,
	}
}

// Now returns the service clock's current time in the configured zone.
func (s *Service) Now() time.Time {
	now := s.clock.Now()
	if s.loc != nil {
		return now.In(s.loc)
	}
	return now
}

// Limits returns the configured allowances.
func (s *Service) Limits() model.Limits { return s.limits }

// YTDAnchor returns the first day counted toward the year-to-date summary.
func (s *Service) YTDAnchor() time.Time { return s.anchor }

// Create validates and records a new event.
func (s *Service) Create(ctx context.Context, typ model.EventType, amount int, date time.Time) (model.UsageEvent, error) {
	e := model.UsageEvent{
		Date:   model.CivilDate(date),
		Type:   typ,
		Amount: amount,
	}
	if err := e.Validate(); err != nil {
		s.reject("create", err)
		return model.UsageEvent{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = s.newID()
	e.CreatedAt = s.clock.Now().UTC()
	if err := s.store.Insert(ctx, e); err != nil {
		return model.UsageEvent{}, fmt.Errorf("saving event: %w", err)
	}

	s.log.Debug().Str("id", e.ID).Str("type", string(e.Type)).Int("amount", e.Amount).
		Str("date", model.FormatDate(e.Date)).Msg("event created")
	return e, nil
}

// Update replaces the amount, type and date of an existing event.
func (s *Service) Update(ctx context.Context, id string, amount int, typ model.EventType, date time.Time) (model.UsageEvent, error) {
	e := model.UsageEvent{ID: id, Date: model.CivilDate(date), Type: typ, Amount: amount}
	if err := e.Validate(); err != nil {
		s.reject("update", err)
		return model.UsageEvent{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old, err := s.store.Get(ctx, id)
	if err != nil {
		return model.UsageEvent{}, err
	}
	e.CreatedAt = old.CreatedAt
	if err := s.store.Update(ctx, e); err != nil {
		return model.UsageEvent{}, err
	}

	s.log.Debug().Str("id", id).Int("amount", e.Amount).Msg("event updated")
	return e, nil
}

// Delete removes an event.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Debug().Str("id", id).Msg("event deleted")
	return nil
}

// Get returns a single event.
func (s *Service) Get(ctx context.Context, id string) (model.UsageEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Get(ctx, id)
}

// List returns the log newest first.
func (s *Service) List(ctx context.Context) ([]model.UsageEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked(ctx)
}

// Resolve expands a unique id prefix into a full id.
func (s *Service) Resolve(ctx context.Context, prefix string) (string, error) {
	events, err := s.List(ctx)
	if err != nil {
		return "", err
	}
	e, err := MatchID(events, prefix)
	if err != nil {
		return "", err
	}
	return e.ID, nil
}

// MatchID finds the event whose id equals prefix, or failing that the one
// event whose id starts with it.
func MatchID(events []model.UsageEvent, prefix string) (model.UsageEvent, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return model.UsageEvent{}, fmt.Errorf("%w: empty id", store.ErrNotFound)
	}

	var (
		match model.UsageEvent
		found bool
	)
	for _, e := range events {
		if e.ID == prefix {
			return e, nil
		}
		if strings.HasPrefix(e.ID, prefix) {
			if found {
				return model.UsageEvent{}, fmt.Errorf("%w: %s", ErrAmbiguousID, prefix)
			}
			match, found = e, true
		}
	}
	if !found {
		return model.UsageEvent{}, fmt.Errorf("%w: %s", store.ErrNotFound, prefix)
	}
	return match, nil
}

// Balance computes the current cycle's balances.
func (s *Service) Balance(ctx context.Context) (model.Balance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events, err := s.store.List(ctx)
	if err != nil {
		return model.Balance{}, fmt.Errorf("listing events: %w", err)
	}
	return pipeline.ComputeBalance(events, s.Now(), s.limits), nil
}

// CycleSummaries totals the log per cycle, newest first.
func (s *Service) CycleSummaries(ctx context.Context) ([]model.CycleSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	return pipeline.CycleSummaries(events, s.limits.ResetDay), nil
}

// YearToDate totals events since the anchor; ok is false when there are none.
func (s *Service) YearToDate(ctx context.Context) (tot model.Totals, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events, err := s.store.List(ctx)
	if err != nil {
		return model.Totals{}, false, fmt.Errorf("listing events: %w", err)
	}
	tot, ok = pipeline.YearToDate(events, s.anchor)
	return tot, ok, nil
}

// CalendarMarks lists active days per month, newest month first.
func (s *Service) CalendarMarks(ctx context.Context) ([]model.CalendarMonth, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	return pipeline.CalendarMarks(events), nil
}

// Ledger returns the rollover walk up to the current cycle.
func (s *Service) Ledger(ctx context.Context) ([]model.LedgerRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	return pipeline.Ledger(events, s.Now(), s.limits), nil
}

// Report is every derived view computed from one consistent read of the log.
type Report struct {
	Now      time.Time             `json:"now"`
	Balance  model.Balance         `json:"balance"`
	Events   []model.UsageEvent    `json:"events"`
	Cycles   []model.CycleSummary  `json:"cycles"`
	Ledger   []model.LedgerRow     `json:"ledger"`
	YTD      *model.Totals         `json:"ytd,omitempty"`
	Calendar []model.CalendarMonth `json:"calendar"`
}

// Report computes all views under a single read lock.
func (s *Service) Report(ctx context.Context) (Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events, err := s.listLocked(ctx)
	if err != nil {
		return Report{}, err
	}
	now := s.Now()
	r := Report{
		Now:      now,
		Balance:  pipeline.ComputeBalance(events, now, s.limits),
		Events:   events,
		Cycles:   pipeline.CycleSummaries(events, s.limits.ResetDay),
		Ledger:   pipeline.Ledger(events, now, s.limits),
		Calendar: pipeline.CalendarMarks(events),
	}
	if tot, ok := pipeline.YearToDate(events, s.anchor); ok {
		r.YTD = &tot
	}
	return r, nil
}

// ImportResult counts the outcome of an import.
type ImportResult struct {
	Imported int
	Skipped  int // id already stored
	Invalid  int
}

// Import stores events that pass validation and are not already present.
// Events without an id get a fresh one.
func (s *Service) Import(ctx context.Context, events []model.UsageEvent) (ImportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res ImportResult
	for _, e := range events {
		e.Date = model.CivilDate(e.Date)
		if err := e.Validate(); err != nil {
			res.Invalid++
			s.log.Info().Err(err).Str("id", e.ID).Msg("skipping invalid import record")
			continue
		}
		if e.ID == "" {
			e.ID = s.newID()
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = s.clock.Now().UTC()
		}
		err := s.store.Insert(ctx, e)
		switch {
		case errors.Is(err, store.ErrDuplicateID):
			res.Skipped++
		case err != nil:
			return res, fmt.Errorf("importing %s: %w", e.ID, err)
		default:
			res.Imported++
		}
	}
	s.log.Debug().Int("imported", res.Imported).Int("skipped", res.Skipped).
		Int("invalid", res.Invalid).Msg("import finished")
	return res, nil
}

func (s *Service) listLocked(ctx context.Context) ([]model.UsageEvent, error) {
	events, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	pipeline.SortNewestFirst(events)
	return events, nil
}

func (s *Service) reject(op string, err error) {
	s.log.Info().Err(err).Str("op", op).Msg("rejected")
}
