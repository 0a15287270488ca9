// Package metrics provides Prometheus instrumentation for the catalog.
//
// Metrics registered here:
//
//	catalog_http_requests_total           counter: requests by method, route, status
//	catalog_http_request_duration_seconds histogram: latency by method, route
//	catalog_ingest_total                  counter: episode acquisitions by mode, result
//	catalog_drive_fetch_duration_seconds  histogram: Google Drive download time
//	catalog_cleanup_failures_total        counter: failed file removals by kind
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Ingest results.
const (
	ResultSuccess = "success"
	ResultSkipped = "skipped"
	ResultFailure = "failure"
)

// Metrics holds the catalog collectors. A nil *Metrics records nothing.
type Metrics struct {
	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
	IngestTotal        *prometheus.CounterVec
	DriveFetchDuration prometheus.Histogram
	CleanupFailures    *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers the catalog metrics with reg. Pass prometheus.NewRegistry()
// in tests to stay clear of the default registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_http_requests_total",
			Help: "Total HTTP requests handled.",
		}, []string{"method", "route", "status"}),

		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "catalog_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),

		IngestTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_ingest_total",
			Help: "Episode video acquisitions by source mode and result.",
		}, []string{"mode", "result"}),

		DriveFetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "catalog_drive_fetch_duration_seconds",
			Help:    "Time to download a file from Google Drive.",
			Buckets: []float64{.5, 1, 5, 15, 30, 60, 120, 300, 600, 1200},
		}),

		CleanupFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_cleanup_failures_total",
			Help: "File removals that failed during best-effort cleanup.",
		}, []string{"kind"}),
	}

	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

// Handler returns the Prometheus HTTP handler for the registry the metrics
// were registered with.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency, labelled with the matched
// chi route pattern rather than the raw URL.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := routePattern(r)
		m.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// ObserveIngest counts one acquisition attempt.
func (m *Metrics) ObserveIngest(mode, result string) {
	if m == nil {
		return
	}
	m.IngestTotal.WithLabelValues(mode, result).Inc()
}

// ObserveDriveFetch records the duration of one Drive download.
func (m *Metrics) ObserveDriveFetch(d time.Duration) {
	if m == nil {
		return
	}
	m.DriveFetchDuration.Observe(d.Seconds())
}

// CleanupFailed counts a failed removal of kind ("video", "cover", "dir").
func (m *Metrics) CleanupFailed(kind string) {
	if m == nil {
		return
	}
	m.CleanupFailures.WithLabelValues(kind).Inc()
}

func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return "unmatched"
	}
	if pattern := rctx.RoutePattern(); pattern != "" {
		return pattern
	}
	return "unmatched"
}
