package daemon

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wburn"

// Metrics holds the daemon's collectors on a private registry so several
// services can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	classPassRemaining prometheus.Gauge
	solidcoreRemaining prometheus.Gauge
	rolloverBonus      prometheus.Gauge
	cycleProgress      prometheus.Gauge
	loggedEvents       prometheus.Gauge
	mutations          *prometheus.CounterVec
	polls              *prometheus.CounterVec

	httpRequestDuration *prometheus.HistogramVec
	httpRequestsTotal   *prometheus.CounterVec
}

// NewMetrics creates and registers the daemon collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		classPassRemaining: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "classpass_remaining",
			Help:      "ClassPass credits left in the current cycle (negative when over)",
		}),
		solidcoreRemaining: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "solidcore_remaining",
			Help:      "Solidcore classes left in the current cycle (negative when over)",
		}),
		rolloverBonus: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rollover_bonus",
			Help:      "ClassPass credits carried into the current cycle",
		}),
		cycleProgress: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cycle_progress_percent",
			Help:      "Elapsed share of the current cycle",
		}),
		loggedEvents: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "logged_events",
			Help:      "Number of usage events in the log",
		}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_mutations_total",
			Help:      "Event log changes made through the API",
		}, []string{"op"}),
		polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_total",
			Help:      "Balance recomputations by result",
		}, []string{"result"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"method", "path", "status"}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
	}

	m.registry.MustRegister(
		m.classPassRemaining,
		m.solidcoreRemaining,
		m.rolloverBonus,
		m.cycleProgress,
		m.loggedEvents,
		m.mutations,
		m.polls,
		m.httpRequestDuration,
		m.httpRequestsTotal,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observeSnapshot(s Snapshot) {
	m.classPassRemaining.Set(float64(s.ClassPassRemaining))
	m.solidcoreRemaining.Set(float64(s.SolidcoreRemaining))
	m.rolloverBonus.Set(float64(s.Bonus))
	m.cycleProgress.Set(s.ProgressPercent)
	m.loggedEvents.Set(float64(s.Events))
}

// Middleware records HTTP request duration and count.
func (m *Metrics) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)

			status := strconv.Itoa(ww.status)
			path := routePattern(r)
			m.httpRequestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
			m.httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		})
	}
}

// routePattern uses the chi pattern so ids don't explode label cardinality.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unknown"
}

// statusWriter captures the response status code.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.wroteHeader = true
	}
	return w.ResponseWriter.Write(b)
}

// Flush lets the event stream push through the wrapper.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
