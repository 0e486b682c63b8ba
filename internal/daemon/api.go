package daemon

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/theirongolddev/wburn/internal/model"
	"github.com/theirongolddev/wburn/internal/pipeline"
	"github.com/theirongolddev/wburn/internal/store"
	"github.com/theirongolddev/wburn/internal/tracker"
)

// Handler returns the daemon's HTTP routes.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.Middleware())
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/stream", s.handleStream)
		r.Get("/feed", s.handleFeed)

		r.Get("/balance", s.handleBalance)
		r.Get("/cycles", s.handleCycles)
		r.Get("/ledger", s.handleLedger)
		r.Get("/ytd", s.handleYTD)
		r.Get("/calendar", s.handleCalendar)
		r.Get("/report", s.handleReport)

		r.Route("/events", func(r chi.Router) {
			r.Get("/", s.handleListEvents)
			r.Post("/", s.handleCreateEvent)
			r.Get("/{id}", s.handleGetEvent)
			r.Put("/{id}", s.handleUpdateEvent)
			r.Delete("/{id}", s.handleDeleteEvent)
		})
	})
	return r
}

func (s *Service) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

// eventRequest is the body of POST and PUT on /v1/events.
// Amount is raw so "3" and 3 are both accepted.
type eventRequest struct {
	Type   string          `json:"type"`
	Amount json.RawMessage `json:"amount"`
	Date   string          `json:"date"`
}

func (req eventRequest) parse(loc *time.Location) (model.EventType, int, time.Time, error) {
	amount, err := model.ParseAmount(strings.Trim(string(req.Amount), `"`))
	if err != nil {
		return "", 0, time.Time{}, err
	}
	date, err := model.ParseDate(req.Date, loc)
	if err != nil {
		return "", 0, time.Time{}, err
	}
	typ, err := model.ParseEventType(req.Type)
	if err != nil {
		return "", 0, time.Time{}, err
	}
	return typ, amount, date, nil
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, errorStatus(err), errorBody{Error: err.Error()})
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrDuplicateID):
		return http.StatusConflict
	case errors.Is(err, tracker.ErrAmbiguousID):
		return http.StatusConflict
	case errors.Is(err, model.ErrInvalidAmount),
		errors.Is(err, model.ErrInvalidDate),
		errors.Is(err, model.ErrInvalidType):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

// handleFeed returns the buffered stream events.
func (s *Service) handleFeed(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleBalance(w http.ResponseWriter, r *http.Request) {
	b, err := s.tracker.Balance(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Service) handleCycles(w http.ResponseWriter, r *http.Request) {
	cycles, err := s.tracker.CycleSummaries(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cycles)
}

func (s *Service) handleLedger(w http.ResponseWriter, r *http.Request) {
	rows, err := s.tracker.Ledger(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Service) handleYTD(w http.ResponseWriter, r *http.Request) {
	tot, ok, err := s.tracker.YearToDate(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, tot)
}

func (s *Service) handleCalendar(w http.ResponseWriter, r *http.Request) {
	months, err := s.tracker.CalendarMarks(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, months)
}

func (s *Service) handleReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.tracker.Report(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleListEvents supports ?type=, ?q= and ?limit=.
func (s *Service) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.tracker.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	q := r.URL.Query()
	if t := q.Get("type"); t != "" {
		typ, err := model.ParseEventType(t)
		if err != nil {
			writeError(w, err)
			return
		}
		events = pipeline.FilterByType(events, typ)
	}
	if text := q.Get("q"); text != "" {
		events = pipeline.FilterByText(events, text)
	}
	if l := q.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "limit must be a non-negative integer"})
			return
		}
		if n < len(events) {
			events = events[:n]
		}
	}
	if events == nil {
		events = []model.UsageEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	e, err := s.tracker.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Service) decodeEvent(w http.ResponseWriter, r *http.Request) (model.EventType, int, time.Time, error) {
	var req eventRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	if err := dec.Decode(&req); err != nil {
		return "", 0, time.Time{}, &badRequest{err: err}
	}
	return req.parse(s.cfg.Location)
}

type badRequest struct{ err error }

func (e *badRequest) Error() string { return "malformed request body: " + e.err.Error() }

func (s *Service) writeDecodeError(w http.ResponseWriter, err error) {
	var br *badRequest
	if errors.As(err, &br) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	writeError(w, err)
}

func (s *Service) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	typ, amount, date, err := s.decodeEvent(w, r)
	if err != nil {
		s.writeDecodeError(w, err)
		return
	}
	e, err := s.tracker.Create(r.Context(), typ, amount, date)
	if err != nil {
		writeError(w, err)
		return
	}
	s.metrics.mutations.WithLabelValues("create").Inc()
	s.afterMutation(r, EventCreated, &e)
	writeJSON(w, http.StatusCreated, e)
}

func (s *Service) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	typ, amount, date, err := s.decodeEvent(w, r)
	if err != nil {
		s.writeDecodeError(w, err)
		return
	}
	e, err := s.tracker.Update(r.Context(), chi.URLParam(r, "id"), amount, typ, date)
	if err != nil {
		writeError(w, err)
		return
	}
	s.metrics.mutations.WithLabelValues("update").Inc()
	s.afterMutation(r, EventUpdated, &e)
	writeJSON(w, http.StatusOK, e)
}

func (s *Service) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	e, err := s.tracker.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.tracker.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	s.metrics.mutations.WithLabelValues("delete").Inc()
	s.afterMutation(r, EventDeleted, &e)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) afterMutation(r *http.Request, typ string, subject *model.UsageEvent) {
	if err := s.refresh(r.Context(), typ, subject); err != nil {
		s.log.Warn().Err(err).Str("type", typ).Msg("refresh after mutation failed")
	}
}
