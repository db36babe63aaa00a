// Package metrics exposes the console's Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// breakerStates maps gobreaker state names onto gauge values.
var breakerStates = map[string]float64{
	"closed":    0,
	"half-open": 1,
	"open":      2,
}

// Metrics holds every collector. Create one per process with New.
type Metrics struct {
	gatherer prometheus.Gatherer

	// HTTPRequestsTotal counts console requests by route pattern and status.
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTPRequestDuration tracks console request latency in seconds.
	HTTPRequestDuration *prometheus.HistogramVec

	// UpstreamRequestsTotal counts rental API calls by operation and status.
	UpstreamRequestsTotal *prometheus.CounterVec
	// UpstreamRequestDuration tracks rental API latency in seconds.
	UpstreamRequestDuration *prometheus.HistogramVec

	// CircuitBreakerState is the current state (0=closed, 1=half-open, 2=open).
	CircuitBreakerState prometheus.Gauge
	// CircuitBreakerStateChanges counts transitions by new state.
	CircuitBreakerStateChanges *prometheus.CounterVec

	// AdminEventsTotal counts logins and mutations by event, action and result.
	AdminEventsTotal *prometheus.CounterVec

	// MaintenanceRemovedTotal counts rows removed by cleanup, by kind.
	MaintenanceRemovedTotal *prometheus.CounterVec
}

// New registers the collectors with reg. A nil reg uses a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)

	return &Metrics{
		gatherer: reg,
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "motoadmin_http_requests_total",
				Help: "Total console HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "motoadmin_http_request_duration_seconds",
				Help:    "Console HTTP request duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "route"},
		),
		UpstreamRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "motoadmin_upstream_requests_total",
				Help: "Total rental API calls by operation and HTTP status (0 when no response)",
			},
			[]string{"operation", "status"},
		),
		UpstreamRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "motoadmin_upstream_request_duration_seconds",
				Help:    "Rental API call duration in seconds",
				Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"operation"},
		),
		CircuitBreakerState: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "motoadmin_circuit_breaker_state",
				Help: "Current rental API circuit breaker state (0=closed, 1=half-open, 2=open)",
			},
		),
		CircuitBreakerStateChanges: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "motoadmin_circuit_breaker_state_changes_total",
				Help: "Rental API circuit breaker transitions by new state",
			},
			[]string{"state"},
		),
		AdminEventsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "motoadmin_admin_events_total",
				Help: "Admin logins and mutations by event, action and result",
			},
			[]string{"event", "action", "result"},
		),
		MaintenanceRemovedTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "motoadmin_maintenance_removed_total",
				Help: "Rows removed by the cleanup job by kind",
			},
			[]string{"kind"},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveUpstream matches motoadmin.ClientConfig.OnRequest.
func (m *Metrics) ObserveUpstream(op string, status int, elapsed time.Duration) {
	m.UpstreamRequestsTotal.WithLabelValues(op, strconv.Itoa(status)).Inc()
	m.UpstreamRequestDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// BreakerStateChanged matches motoadmin.ClientConfig.OnBreakerStateChange.
func (m *Metrics) BreakerStateChanged(from, to string) {
	m.CircuitBreakerState.Set(breakerStates[to])
	m.CircuitBreakerStateChanges.WithLabelValues(to).Inc()
}

// HookMetric matches the hooks.MetricsHooks callback. Metric names look
// like "motoadmin.login" or "motoadmin.mutation".
func (m *Metrics) HookMetric(name string, value float64, tags map[string]string) {
	event := name
	if i := len("motoadmin."); len(name) > i && name[:i] == "motoadmin." {
		event = name[i:]
	}
	m.AdminEventsTotal.WithLabelValues(event, tags["action"], tags["result"]).Add(value)
}

// Removed matches the maintenance cleanup callback.
func (m *Metrics) Removed(kind string, n int) {
	m.MaintenanceRemovedTotal.WithLabelValues(kind).Add(float64(n))
}

// statusRecorder captures the status written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Middleware records request counts and latency. route names the request
// for labels; it must map to a bounded set.
func (m *Metrics) Middleware(route func(*http.Request) string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		name := route(r)
		m.HTTPRequestsTotal.WithLabelValues(r.Method, name, strconv.Itoa(rec.status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, name).Observe(time.Since(start).Seconds())
	})
}

// RouteGroup labels a request by its first path segment, which keeps the
// label set bounded: "/motorcycles/abc/delete" becomes "/motorcycles".
func RouteGroup(r *http.Request) string {
	p := r.URL.Path
	if p == "" || p == "/" {
		return "/"
	}
	for i := 1; i < len(p); i++ {
		if p[i] == '/' {
			p = p[:i]
			break
		}
	}
	switch p {
	case "/login", "/logout", "/dashboard", "/motorcycles", "/users", "/rentals",
		"/api", "/static", "/health", "/metrics":
		return p
	}
	return "other"
}
