package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

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
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/test")

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusTeapot, rr.Code)

	body := scrape(t, metrics)
	assert.Contains(t, body, `galaxy_http_requests_total{code="418",route="/test"} 1`)
	assert.Contains(t, body, `galaxy_http_request_duration_seconds_bucket{route="/test"`)
}

func TestObserveBackend(t *testing.T) {
	metrics := NewMetrics()
	metrics.ObserveBackend("list_events", http.StatusOK, 20*time.Millisecond)
	metrics.ObserveBackend("list_events", http.StatusOK, 30*time.Millisecond)
	metrics.ObserveBackend("login", 0, time.Second)

	body := scrape(t, metrics)
	assert.Contains(t, body, `galaxy_backend_requests_total{code="200",op="list_events"} 2`)
	assert.Contains(t, body, `galaxy_backend_requests_total{code="0",op="login"} 1`)
	assert.True(t, strings.Contains(body, `galaxy_backend_request_duration_seconds_count{op="list_events"} 2`))
}

func TestNilMetricsAreInert(t *testing.T) {
	var metrics *Metrics
	metrics.ObserveBackend("me", http.StatusOK, time.Millisecond)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	rr := httptest.NewRecorder()
	metrics.Middleware(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
