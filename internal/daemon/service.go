// Package daemon provides the long-running balance monitor and its HTTP API.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/theirongolddev/wburn/internal/model"
	"github.com/theirongolddev/wburn/internal/tracker"
)

// Event types published on the stream.
const (
	EventSnapshot       = "snapshot"
	EventBalanceChanged = "balance_changed"
	EventCycleReset     = "cycle_reset"
	EventCreated        = "event_created"
	EventUpdated        = "event_updated"
	EventDeleted        = "event_deleted"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Addr         string
	Interval     time.Duration
	EventsBuffer int
	DBPath       string
	// Location interprets RFC 3339 timestamps posted to the API.
	Location *time.Location
}

// Snapshot is a compact balance state for status/event payloads.
type Snapshot struct {
	At                 time.Time `json:"at"`
	CycleStart         time.Time `json:"cycle_start"`
	CycleEnd           time.Time `json:"cycle_end"`
	Bonus              int       `json:"bonus"`
	ClassPassLimit     int       `json:"classpass_limit"`
	ClassPassRemaining int       `json:"classpass_remaining"`
	SolidcoreLimit     int       `json:"solidcore_limit"`
	SolidcoreRemaining int       `json:"solidcore_remaining"`
	ProgressPercent    float64   `json:"progress_percent"`
	Events             int       `json:"events"`
}

// Delta captures snapshot deltas between polls.
type Delta struct {
	ClassPassRemaining int  `json:"classpass_remaining"`
	SolidcoreRemaining int  `json:"solidcore_remaining"`
	Bonus              int  `json:"bonus"`
	Events             int  `json:"events"`
	CycleChanged       bool `json:"cycle_changed,omitempty"`
}

func (d Delta) isZero() bool {
	return d.ClassPassRemaining == 0 &&
		d.SolidcoreRemaining == 0 &&
		d.Bonus == 0 &&
		d.Events == 0 &&
		!d.CycleChanged
}

// Event is emitted whenever the balance or the event log changes.
type Event struct {
	ID        int64             `json:"id"`
	Type      string            `json:"type"`
	Timestamp time.Time         `json:"timestamp"`
	Snapshot  Snapshot          `json:"snapshot"`
	Delta     Delta             `json:"delta"`
	Subject   *model.UsageEvent `json:"subject,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	DBPath          string    `json:"db_path,omitempty"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg     Config
	tracker *tracker.Service
	metrics *Metrics
	log     zerolog.Logger

	// refreshMu orders report reads with snapshot swaps.
	refreshMu sync.Mutex

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a daemon service serving tr.
func New(tr *tracker.Service, cfg Config, logger zerolog.Logger) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 60 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	return &Service{
		cfg:       cfg,
		tracker:   tr,
		metrics:   NewMetrics(),
		log:       logger.With().Str("component", "daemon").Logger(),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Info().Str("addr", s.cfg.Addr).Dur("interval", s.cfg.Interval).Msg("daemon listening")

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.log.Info().Msg("daemon shutting down")
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce(ctx)
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

// pollOnce recomputes the balance. The clock alone can move the balance
// (a new cycle starts), so this runs even when nothing was logged.
func (s *Service) pollOnce(ctx context.Context) {
	if err := s.refresh(ctx, "", nil); err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = time.Now()
		s.pollCount++
		s.mu.Unlock()
		s.metrics.polls.WithLabelValues("error").Inc()
		s.log.Error().Err(err).Msg("poll failed")
		return
	}
	s.metrics.polls.WithLabelValues("ok").Inc()
}

// refresh takes a fresh snapshot and publishes an event when something moved.
// A non-empty trigger always publishes, with subject attached.
func (s *Service) refresh(ctx context.Context, trigger string, subject *model.UsageEvent) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	report, err := s.tracker.Report(ctx)
	if err != nil {
		return err
	}
	snap := snapshotFromReport(report)
	s.metrics.observeSnapshot(snap)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	if trigger == "" {
		s.lastPollAt = time.Now()
		s.pollCount++
		s.lastError = ""
	}

	var delta Delta
	if prevExists {
		delta = diffSnapshots(prev, snap)
	}

	switch {
	case trigger != "":
		ev = Event{Type: trigger, Delta: delta, Subject: subject}
		publish = true
	case !prevExists:
		ev = Event{Type: EventSnapshot}
		publish = true
	case delta.CycleChanged:
		ev = Event{Type: EventCycleReset, Delta: delta}
		publish = true
	case !delta.isZero():
		ev = Event{Type: EventBalanceChanged, Delta: delta}
		publish = true
	}
	if publish {
		s.nextEventID++
		ev.ID = s.nextEventID
		ev.Timestamp = snap.At
		ev.Snapshot = snap
		s.appendEventLocked(ev)
	}
	s.mu.Unlock()

	if publish {
		s.log.Debug().Str("type", ev.Type).Int64("id", ev.ID).Msg("published event")
	}
	return nil
}

func snapshotFromReport(r tracker.Report) Snapshot {
	b := r.Balance
	return Snapshot{
		At:                 r.Now,
		CycleStart:         b.CycleStart,
		CycleEnd:           b.CycleEnd,
		Bonus:              b.Bonus,
		ClassPassLimit:     b.ClassPassLimit,
		ClassPassRemaining: b.ClassPassRemaining,
		SolidcoreLimit:     b.SolidcoreLimit,
		SolidcoreRemaining: b.SolidcoreRemaining,
		ProgressPercent:    b.ProgressPercent,
		Events:             len(r.Events),
	}
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		ClassPassRemaining: curr.ClassPassRemaining - prev.ClassPassRemaining,
		SolidcoreRemaining: curr.SolidcoreRemaining - prev.SolidcoreRemaining,
		Bonus:              curr.Bonus - prev.Bonus,
		Events:             curr.Events - prev.Events,
		CycleChanged:       !curr.CycleStart.Equal(prev.CycleStart),
	}
}

// appendEventLocked adds ev to the ring buffer and fans it out. s.mu must be
// held for writing.
func (s *Service) appendEventLocked(ev Event) {
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		DBPath:          s.cfg.DBPath,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	current := Event{
		Type:      EventSnapshot,
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
