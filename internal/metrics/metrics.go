// Package metrics exposes Prometheus metrics of the web server and its database.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so that several servers can run in one process, e.g., in tests.
type Metrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	writesTotal     *prometheus.CounterVec
}

// New registers the process and Go runtime collectors together with the pool statistics of dbs.
func New(dbs map[string]*sqlx.DB) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "masks_http_requests_total",
			Help: "Total number of HTTP requests by route pattern and status code.",
		}, []string{"pattern", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "masks_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"pattern"}),
		writesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "masks_campaign_writes_total",
			Help: "Total number of successful writes by entity and operation.",
		}, []string{"entity", "op"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestsTotal,
		m.requestDuration,
		m.writesTotal,
	)
	for name, db := range dbs {
		m.registry.MustRegister(collectors.NewDBStatsCollector(db.DB, name))
	}
	return m
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Write counts a successful create, update or delete of entity.
func (m *Metrics) Write(entity, op string) {
	m.writesTotal.WithLabelValues(entity, op).Inc()
}

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

// Middleware records the count and duration of requests. It must wrap the ServeMux so that the matched pattern
// is known once the request has been served.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		pattern := r.Pattern
		if pattern == "" {
			pattern = "unmatched"
		}
		m.requestsTotal.WithLabelValues(pattern, strconv.Itoa(rec.status)).Inc()
		m.requestDuration.WithLabelValues(pattern).Observe(time.Since(start).Seconds())
	})
}
