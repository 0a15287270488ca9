package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	assert.Panics(t, func() { New(reg) })
}

func TestMiddleware_LabelsWithRoutePattern(t *testing.T) {
	m := New(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/series/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	for _, id := range []string{"1", "2", "3"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/series/"+id, nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
	}

	assert.Equal(t, float64(3), testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/series/{id}", "204")))
}

func TestMiddleware_DefaultStatusIsOK(t *testing.T) {
	m := New(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/", "200")))
}

func TestObservers(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveIngest("gdrive", ResultSkipped)
	m.ObserveIngest("gdrive", ResultSkipped)
	m.ObserveIngest("upload", ResultSuccess)
	m.CleanupFailed("video")
	m.ObserveDriveFetch(2 * time.Second)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.IngestTotal.WithLabelValues("gdrive", ResultSkipped)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.IngestTotal.WithLabelValues("upload", ResultSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CleanupFailures.WithLabelValues("video")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveIngest("direct", ResultSuccess)
		m.ObserveDriveFetch(time.Second)
		m.CleanupFailed("cover")
	})

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	assert.NotNil(t, m.Middleware(next))
}

func TestHandler_ExposesRegisteredMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveIngest("direct", ResultSuccess)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "catalog_ingest_total"))
}
