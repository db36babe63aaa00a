package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveUpstream(t *testing.T) {
	m := New(nil)
	m.ObserveUpstream("list motorcycles", 200, 30*time.Millisecond)
	m.ObserveUpstream("list motorcycles", 200, 40*time.Millisecond)
	m.ObserveUpstream("login", 0, time.Second)

	assert.InDelta(t, 2, testutil.ToFloat64(m.UpstreamRequestsTotal.WithLabelValues("list motorcycles", "200")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.UpstreamRequestsTotal.WithLabelValues("login", "0")), 0)
}

func TestBreakerStateChanged(t *testing.T) {
	m := New(nil)
	m.BreakerStateChanged("closed", "open")
	assert.InDelta(t, 2, testutil.ToFloat64(m.CircuitBreakerState), 0)

	m.BreakerStateChanged("open", "half-open")
	assert.InDelta(t, 1, testutil.ToFloat64(m.CircuitBreakerState), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.CircuitBreakerStateChanges.WithLabelValues("open")), 0)
}

func TestHookMetric(t *testing.T) {
	m := New(nil)
	m.HookMetric("motoadmin.login", 1, map[string]string{"result": "failure"})
	m.HookMetric("motoadmin.mutation", 1, map[string]string{"action": "Verify user", "result": "success"})

	assert.InDelta(t, 1, testutil.ToFloat64(m.AdminEventsTotal.WithLabelValues("login", "", "failure")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.AdminEventsTotal.WithLabelValues("mutation", "Verify user", "success")), 0)
}

func TestMiddleware(t *testing.T) {
	m := New(nil)
	h := m.Middleware(RouteGroup, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))

	for _, p := range []string{"/motorcycles/abc/delete", "/motorcycles", "/missing"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	assert.InDelta(t, 2, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/motorcycles", "200")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "other", "404")), 0)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "motoadmin_http_requests_total"))
}

func TestRouteGroup(t *testing.T) {
	tests := map[string]string{
		"/":                   "/",
		"/login":              "/login",
		"/api/dashboard":      "/api",
		"/users/u1/verify":    "/users",
		"/static/app.js":      "/static",
		"/wp-admin/setup.php": "other",
	}
	for path, want := range tests {
		assert.Equal(t, want, RouteGroup(httptest.NewRequest(http.MethodGet, path, nil)), path)
	}
}
