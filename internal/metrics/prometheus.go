// Package metrics provides Prometheus metrics for the storefront.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight prometheus.Gauge
	responseSize     *prometheus.HistogramVec

	// Cache metrics
	cacheRequests      *prometheus.CounterVec
	cacheInvalidations *prometheus.CounterVec
	cacheKeysDeleted   prometheus.Counter
	cacheStaleFills    *prometheus.CounterVec
	cacheEntries       prometheus.Gauge

	// Domain metrics
	orderTransitions *prometheus.CounterVec
	ratingRecomputes prometheus.Counter
	workerTasks      *prometheus.CounterVec
	workerQueueDepth prometheus.Gauge

	// Process metrics
	healthStatus prometheus.Gauge
	goroutines   prometheus.Gauge
	memoryAlloc  prometheus.Gauge
}

// NewMetrics creates and registers Prometheus metrics on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "storefront_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path", "status"},
		),
		requestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "storefront_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),
		responseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "storefront_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 500, 1000, 5000, 10000, 50000, 100000},
			},
			[]string{"method", "path"},
		),

		cacheRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_cache_requests_total",
				Help: "Cache lookups by key family and result",
			},
			[]string{"family", "result"},
		),
		cacheInvalidations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_cache_invalidations_total",
				Help: "Invalidations by affected domain",
			},
			[]string{"domain"},
		),
		cacheKeysDeleted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "storefront_cache_keys_deleted_total",
				Help: "Cache keys removed by invalidation",
			},
		),
		cacheStaleFills: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_cache_stale_fills_total",
				Help: "Loaded values discarded because the key was invalidated during the load",
			},
			[]string{"family"},
		),
		cacheEntries: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "storefront_cache_entries",
				Help: "Number of entries currently cached",
			},
		),

		orderTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_order_transitions_total",
				Help: "Order status transitions",
			},
			[]string{"from", "to"},
		),
		ratingRecomputes: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "storefront_rating_recomputes_total",
				Help: "Product rating recomputations",
			},
		),
		workerTasks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_worker_tasks_total",
				Help: "Background tasks by outcome",
			},
			[]string{"task", "result"},
		),
		workerQueueDepth: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "storefront_worker_queue_depth",
				Help: "Background tasks waiting to run",
			},
		),

		healthStatus: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "storefront_health_status",
				Help: "Health status of the storefront (1 = healthy, 0 = unhealthy)",
			},
		),
		goroutines: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "storefront_goroutines",
				Help: "Number of goroutines",
			},
		),
		memoryAlloc: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "storefront_memory_alloc_bytes",
				Help: "Bytes of allocated heap objects",
			},
		),
	}
}

// RecordHTTPRequest records metrics for an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	status := strconv.Itoa(statusCode)
	m.requestsTotal.WithLabelValues(method, path, status).Inc()
	m.requestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordResponseSize records the response size.
func (m *Metrics) RecordResponseSize(method, path string, size int) {
	m.responseSize.WithLabelValues(method, path).Observe(float64(size))
}

// IncRequestsInFlight increments the in-flight requests counter.
func (m *Metrics) IncRequestsInFlight() {
	m.requestsInFlight.Inc()
}

// DecRequestsInFlight decrements the in-flight requests counter.
func (m *Metrics) DecRequestsInFlight() {
	m.requestsInFlight.Dec()
}

// RecordCacheHit counts a cache hit for a key family.
func (m *Metrics) RecordCacheHit(family string) {
	m.cacheRequests.WithLabelValues(family, "hit").Inc()
}

// RecordCacheMiss counts a cache miss for a key family.
func (m *Metrics) RecordCacheMiss(family string) {
	m.cacheRequests.WithLabelValues(family, "miss").Inc()
}

// RecordStaleFill counts a loaded value that was not written back.
func (m *Metrics) RecordStaleFill(family string) {
	m.cacheStaleFills.WithLabelValues(family).Inc()
}

// RecordInvalidation counts one invalidation of a domain and the keys it removed.
func (m *Metrics) RecordInvalidation(domain string, keys int) {
	m.cacheInvalidations.WithLabelValues(domain).Inc()
	m.cacheKeysDeleted.Add(float64(keys))
}

// SetCacheEntries sets the cache size gauge.
func (m *Metrics) SetCacheEntries(n int) {
	m.cacheEntries.Set(float64(n))
}

// RecordOrderTransition counts an order moving between statuses.
func (m *Metrics) RecordOrderTransition(from, to string) {
	m.orderTransitions.WithLabelValues(from, to).Inc()
}

// RecordRatingRecompute counts a product rating recomputation.
func (m *Metrics) RecordRatingRecompute() {
	m.ratingRecomputes.Inc()
}

// RecordWorkerTask counts a finished background task.
func (m *Metrics) RecordWorkerTask(task string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.workerTasks.WithLabelValues(task, result).Inc()
}

// SetWorkerQueueDepth sets the background queue gauge.
func (m *Metrics) SetWorkerQueueDepth(n int) {
	m.workerQueueDepth.Set(float64(n))
}

// SetHealthStatus sets the health status.
func (m *Metrics) SetHealthStatus(healthy bool) {
	if healthy {
		m.healthStatus.Set(1)
	} else {
		m.healthStatus.Set(0)
	}
}

// UpdateRuntimeStats samples goroutine count and heap usage.
func (m *Metrics) UpdateRuntimeStats() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	m.goroutines.Set(float64(runtime.NumGoroutine()))
	m.memoryAlloc.Set(float64(memStats.Alloc))
}

// Sizer reports a current size for a gauge.
type Sizer func(ctx context.Context) int

// MetricsServer provides a separate HTTP server for Prometheus metrics.
type MetricsServer struct {
	server    *http.Server
	metrics   *Metrics
	cacheSize Sizer
	interval  time.Duration
	logger    *zap.Logger
	stopChan  chan struct{}
}

// NewMetricsServer creates a new metrics server. cacheSize, when set, is
// sampled with the runtime stats every interval.
func NewMetricsServer(port int, path string, gatherer prometheus.Gatherer, m *Metrics, cacheSize Sizer, interval time.Duration, logger *zap.Logger) *MetricsServer {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	if interval <= 0 {
		interval = 15 * time.Second
	}

	return &MetricsServer{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		metrics:   m,
		cacheSize: cacheSize,
		interval:  interval,
		logger:    logger,
		stopChan:  make(chan struct{}),
	}
}

// Start starts the metrics server.
func (ms *MetricsServer) Start() error {
	ms.logger.Info("Starting metrics server", zap.String("addr", ms.server.Addr))

	go ms.collect()

	return ms.server.ListenAndServe()
}

// Shutdown gracefully shuts down the metrics server.
func (ms *MetricsServer) Shutdown(ctx context.Context) error {
	close(ms.stopChan)
	return ms.server.Shutdown(ctx)
}

// collect periodically samples process and cache gauges
func (ms *MetricsServer) collect() {
	ticker := time.NewTicker(ms.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ms.sample()
		case <-ms.stopChan:
			return
		}
	}
}

func (ms *MetricsServer) sample() {
	ms.metrics.UpdateRuntimeStats()
	if ms.cacheSize != nil {
		ctx, cancel := context.WithTimeout(context.Background(), ms.interval)
		defer cancel()
		ms.metrics.SetCacheEntries(ms.cacheSize(ctx))
	}
}

// MetricsMiddleware creates middleware that records HTTP metrics. Requests
// are labeled with their route template so ids do not become label values.
func MetricsMiddleware(m *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m.IncRequestsInFlight()
			defer m.DecRequestsInFlight()

			start := time.Now()
			rw := &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			path := routePath(r)
			m.RecordHTTPRequest(r.Method, path, rw.statusCode, time.Since(start))
			m.RecordResponseSize(r.Method, path, rw.size)
		})
	}
}

func routePath(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return "unmatched"
}

// metricsResponseWriter wraps http.ResponseWriter to capture metrics.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

// WriteHeader captures the status code.
func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Write captures the response size.
func (rw *metricsResponseWriter) Write(b []byte) (int, error) {
	size, err := rw.ResponseWriter.Write(b)
	rw.size += size
	return size, err
}
