// Package server — metrics.go registers all Prometheus metrics for the HTTP
// server and exposes helpers used by handlers and middleware.
package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric label values shared across registrations.
const (
	// labelHandler is the "handler" label value used to partition metrics by
	// the logical endpoint name rather than the raw URL path.
	labelHandler = "handler"

	// labelStage is the "stage" label partitioning query metrics by the
	// pipeline tier that produced the answer.
	labelStage = "stage"
)

// serverMetrics holds all Prometheus metrics owned by the HTTP server.
// A single instance is created in New and stored on Server so that tests can
// inject a fresh prometheus.Registry without polluting the default one.
type serverMetrics struct {
	// queriesTotal counts resolved /api/chat queries, partitioned by the
	// pipeline stage that answered: "clarify", "attendance", "faq",
	// "knowledge", "generative", or "fallback".
	queriesTotal *prometheus.CounterVec

	// queryDurationSeconds records the wall-clock duration of each query,
	// partitioned by the answering stage. Generative answers dominate the
	// upper buckets.
	queryDurationSeconds *prometheus.HistogramVec

	// ingestChunksTotal counts chunks indexed through POST /api/ingest.
	ingestChunksTotal prometheus.Counter

	// httpRequestsTotal counts all HTTP requests handled by the mux,
	// partitioned by method, path pattern, and status code.
	httpRequestsTotal *prometheus.CounterVec

	// httpDurationSeconds records the latency of all HTTP requests.
	httpDurationSeconds *prometheus.HistogramVec
}

// newServerMetrics registers all server metrics against reg and returns the
// populated serverMetrics. promauto.With(reg) is used so that each call
// registers into the provided registry rather than the global default —
// this keeps unit tests hermetic.
func newServerMetrics(reg prometheus.Registerer) *serverMetrics {
	factory := promauto.With(reg)

	return &serverMetrics{
		queriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "copilot",
			Subsystem: "query",
			Name:      "resolved_total",
			Help:      "Total number of queries resolved, partitioned by answering pipeline stage.",
		}, []string{labelStage}),

		queryDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "copilot",
			Subsystem: "query",
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of query resolution, partitioned by answering pipeline stage.",
			Buckets:   []float64{0.005, 0.05, 0.25, 1, 5, 15, 30, 60},
		}, []string{labelStage}),

		ingestChunksTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "copilot",
			Subsystem: "ingest",
			Name:      "chunks_total",
			Help:      "Total number of document chunks indexed via the ingest endpoint.",
		}),

		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "copilot",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled by the server, partitioned by method, handler, and status code.",
		}, []string{"method", labelHandler, "code"}),

		httpDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "copilot",
			Subsystem: "http",
			Name:      "duration_seconds",
			Help:      "Latency of HTTP requests handled by the server.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", labelHandler}),
	}
}

// instrument wraps the mux to record per-request HTTP metrics. The handler
// label is the raw URL path; the route surface is small and fixed, so the
// label cardinality stays bounded.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		start := time.Now()
		next.ServeHTTP(rw, r)
		elapsed := time.Since(start)

		s.metrics.httpRequestsTotal.WithLabelValues(
			r.Method, r.URL.Path, strconv.Itoa(rw.status),
		).Inc()
		s.metrics.httpDurationSeconds.WithLabelValues(
			r.Method, r.URL.Path,
		).Observe(elapsed.Seconds())
	})
}
