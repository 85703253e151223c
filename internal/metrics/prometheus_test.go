package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_CacheCounters(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordCacheHit("product")
	m.RecordCacheHit("product")
	m.RecordCacheMiss("product")
	m.RecordStaleFill("latestProducts")
	m.RecordInvalidation("product", 4)
	m.RecordInvalidation("order", 3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheRequests.WithLabelValues("product", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheRequests.WithLabelValues("product", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheStaleFills.WithLabelValues("latestProducts")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.cacheKeysDeleted))
}

func TestMetrics_DomainCounters(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordOrderTransition("Processing", "Shipped")
	m.RecordRatingRecompute()
	m.RecordWorkerTask("stock", nil)
	m.RecordWorkerTask("stock", errors.New("boom"))
	m.SetWorkerQueueDepth(3)
	m.SetCacheEntries(12)
	m.SetHealthStatus(true)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.orderTransitions.WithLabelValues("Processing", "Shipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ratingRecomputes))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.workerTasks.WithLabelValues("stock", "failure")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.workerQueueDepth))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.cacheEntries))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.healthStatus))
}

func TestMetrics_SeparateRegistries(t *testing.T) {
	// Two instances on distinct registries must not collide.
	require.NotPanics(t, func() {
		NewMetrics(prometheus.NewRegistry())
		NewMetrics(prometheus.NewRegistry())
	})
}

func TestMetricsMiddleware_UsesRouteTemplate(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	router := mux.NewRouter()
	router.Use(MetricsMiddleware(m))
	router.HandleFunc("/api/v1/product/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/product/abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.requestsTotal.WithLabelValues(http.MethodGet, "/api/v1/product/{id}", "200")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.requestsInFlight))
}

func TestMetrics_RuntimeStats(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.UpdateRuntimeStats()
	assert.Greater(t, testutil.ToFloat64(m.goroutines), 0.0)

	m.RecordHTTPRequest(http.MethodGet, "/health", 200, 10*time.Millisecond)
	m.RecordResponseSize(http.MethodGet, "/health", 20)
}
