package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the server's prometheus collectors.
type Metrics struct {
	queries      *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	responses    *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "osm_spt",
			Name:      "shortest_path_queries_total",
			Help:      "Shortest-path runs by query kind, queue backend and outcome.",
		}, []string{"kind", "queue", "outcome"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "osm_spt",
			Name:      "request_duration_seconds",
			Help:      "The duration of HTTP requests.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "path"}),
		responses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "osm_spt",
			Name:      "responses_total",
			Help:      "HTTP responses by status code.",
		}, []string{"method", "path", "status"}),
	}
	reg.MustRegister(m.queries, m.httpDuration, m.responses)
	return m
}

func (m *Metrics) observeQuery(kind, queue string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.queries.With(prometheus.Labels{"kind": kind, "queue": queue, "outcome": outcome}).Inc()
}

// instrument records request duration and status per route pattern.
func (m *Metrics) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
			m.httpDuration.With(prometheus.Labels{"method": r.Method, "path": routePattern(r)}).Observe(v)
		}))

		next.ServeHTTP(ww, r)

		timer.ObserveDuration()
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.responses.With(prometheus.Labels{
			"method": r.Method,
			"path":   routePattern(r),
			"status": strconv.Itoa(status),
		}).Inc()
	})
}

// routePattern keeps label cardinality bounded for unmatched paths.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
