// Package metrics holds the Prometheus collectors for one API server.
//
// Each server owns its own registry so several servers (for example in
// tests) never collide on collector registration.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "atelier"

// PathLabeler returns the label used for a request path. Servers with a
// router pass the matched route template so ids do not explode cardinality.
type PathLabeler func(r *http.Request) string

// Metrics is a registry plus the HTTP and domain collectors.
type Metrics struct {
	registry *prometheus.Registry

	inFlight  prometheus.Gauge
	requests  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	mutations *prometheus.CounterVec
	sweeps    *prometheus.CounterVec
}

// New creates a registry with HTTP, mutation and runtime collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "path", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		}, []string{"method", "path"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "records",
			Name:      "mutations_total",
			Help:      "Records created, updated or deleted through the API.",
		}, []string{"resource", "action"}),
		sweeps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reminders",
			Name:      "sweeps_total",
			Help:      "Reminder sweeps run, by outcome.",
		}, []string{"success"}),
	}

	m.registry.MustRegister(
		m.inFlight,
		m.requests,
		m.duration,
		m.mutations,
		m.sweeps,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return m
}

// Handler returns an HTTP handler exposing the registered metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordMutation counts a successful write through the API.
func (m *Metrics) RecordMutation(resource, action string) {
	m.mutations.WithLabelValues(resource, action).Inc()
}

// RecordSweep counts a reminder sweep.
func (m *Metrics) RecordSweep(success bool) {
	m.sweeps.WithLabelValues(strconv.FormatBool(success)).Inc()
}

// Middleware wraps next with request count, duration and in-flight metrics.
// A nil label uses the first path segment.
func (m *Metrics) Middleware(label PathLabeler) func(http.Handler) http.Handler {
	if label == nil {
		label = firstSegment
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			m.inFlight.Inc()
			defer m.inFlight.Dec()

			next.ServeHTTP(rec, r)

			path := label(r)
			method := strings.ToUpper(r.Method)
			m.requests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
			m.duration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE streaming working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func firstSegment(r *http.Request) string {
	trimmed := strings.Trim(r.URL.Path, "/")
	if trimmed == "" {
		return "/"
	}
	return "/" + strings.SplitN(trimmed, "/", 2)[0]
}
