package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_CountsRequests(t *testing.T) {
	m := New()
	h := m.Middleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "missing") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))

	for _, path := range []string{"/api/orders", "/api/orders", "/api/missing"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.inFlight))
}

func TestMiddleware_UsesLabeler(t *testing.T) {
	m := New()
	h := m.Middleware(func(*http.Request) string { return "/api/orders/{id}" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/api/orders/abc", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("DELETE", "/api/orders/{id}", "204")))
}

func TestHandler_ExposesCollectors(t *testing.T) {
	m := New()
	m.RecordMutation("orders", "created")
	m.RecordSweep(true)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `atelier_records_mutations_total{action="created",resource="orders"} 1`)
	assert.Contains(t, body, `atelier_reminders_sweeps_total{success="true"} 1`)
}

func TestNew_IndependentRegistries(t *testing.T) {
	// two instances must not panic on duplicate registration
	a, b := New(), New()
	a.RecordMutation("clients", "deleted")
	assert.Equal(t, 0.0, testutil.ToFloat64(b.mutations.WithLabelValues("clients", "deleted")))
}

func TestStatusRecorder_Flush(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := &statusRecorder{ResponseWriter: rec, status: http.StatusOK}
	sr.Flush()
	assert.True(t, rec.Flushed)
	assert.Equal(t, rec, sr.Unwrap())
}
