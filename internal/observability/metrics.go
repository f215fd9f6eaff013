// Package observability exposes the Prometheus metrics of the quotation service.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the registry and every collector the service records to.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	quotationsCreated   prometheus.Counter
	revisionsRecorded   prometheus.Counter
	terminalTransitions *prometheus.CounterVec
	numberingRetries    prometheus.Counter
	quotationsPurged    prometheus.Counter
	jobRuns             *prometheus.CounterVec
}

// NewMetrics creates a registry with the HTTP and quotation collectors
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quotation_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quotation_http_request_duration_seconds",
			Help:    "HTTP request duration by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		quotationsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quotation_created_total",
			Help: "Quotations created.",
		}),
		revisionsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quotation_revisions_total",
			Help: "Substantive updates recorded as a new revision.",
		}),
		terminalTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quotation_terminal_transitions_total",
			Help: "Quotations moved to a terminal status.",
		}, []string{"status"}),
		numberingRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quotation_numbering_retries_total",
			Help: "Quotation inserts retried after a number collision.",
		}),
		quotationsPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quotation_purged_total",
			Help: "Soft-deleted quotations removed by the purge job.",
		}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quotation_job_runs_total",
			Help: "Background job runs by job and outcome.",
		}, []string{"job", "outcome"}),
	}
	registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.quotationsCreated,
		m.revisionsRecorded,
		m.terminalTransitions,
		m.numberingRetries,
		m.quotationsPurged,
		m.jobRuns,
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler returns the /metrics endpoint
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records count and duration of every request by route pattern
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// Registerer exposes the registry for extra collectors
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

func (m *Metrics) QuotationCreated() {
	if m != nil {
		m.quotationsCreated.Inc()
	}
}

func (m *Metrics) RevisionRecorded() {
	if m != nil {
		m.revisionsRecorded.Inc()
	}
}

func (m *Metrics) TerminalTransition(status string) {
	if m != nil {
		m.terminalTransitions.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) NumberingRetried() {
	if m != nil {
		m.numberingRetries.Inc()
	}
}

func (m *Metrics) QuotationsPurged(n int) {
	if m != nil && n > 0 {
		m.quotationsPurged.Add(float64(n))
	}
}

// JobRun counts one run of a background job; outcome is "success" or "error"
func (m *Metrics) JobRun(job, outcome string) {
	if m != nil {
		m.jobRuns.WithLabelValues(job, outcome).Inc()
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
