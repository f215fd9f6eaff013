package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	return rr.Body.String()
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/api/v1/quotations/{id}")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/quotations/abc", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusTeapot, rr.Code)

	body := scrape(t, metrics)
	assert.Contains(t, body, `quotation_http_requests_total{code="418",route="/api/v1/quotations/{id}"} 1`)
	assert.Contains(t, body, `quotation_http_request_duration_seconds_bucket{route="/api/v1/quotations/{id}"`)
}

func TestMetricsDomainCounters(t *testing.T) {
	metrics := NewMetrics()

	metrics.QuotationCreated()
	metrics.QuotationCreated()
	metrics.RevisionRecorded()
	metrics.TerminalTransition("complete")
	metrics.NumberingRetried()
	metrics.QuotationsPurged(3)
	metrics.JobRun("purge_deleted_quotations", "success")

	body := scrape(t, metrics)
	assert.Contains(t, body, "quotation_created_total 2")
	assert.Contains(t, body, "quotation_revisions_total 1")
	assert.Contains(t, body, `quotation_terminal_transitions_total{status="complete"} 1`)
	assert.Contains(t, body, "quotation_numbering_retries_total 1")
	assert.Contains(t, body, "quotation_purged_total 3")
	assert.Contains(t, body, `quotation_job_runs_total{job="purge_deleted_quotations",outcome="success"} 1`)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var metrics *Metrics

	assert.NotPanics(t, func() {
		metrics.QuotationCreated()
		metrics.RevisionRecorded()
		metrics.TerminalTransition("failed")
		metrics.NumberingRetried()
		metrics.QuotationsPurged(1)
		metrics.JobRun("x", "error")
	})

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
