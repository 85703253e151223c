// Package health serves the liveness and readiness probes.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	StatusAlive    = "alive"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"

	checkHealthy = "healthy"
)

// Pinger is a dependency that readiness waits on.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatusRecorder receives the outcome of every readiness check.
type StatusRecorder interface {
	SetHealthStatus(healthy bool)
}

// HealthStatus is the probe response body.
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp int64             `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthChecker probes the document store and the cache.
type HealthChecker struct {
	deps     map[string]Pinger
	recorder StatusRecorder
	timeout  time.Duration
	logger   *zap.Logger
}

// NewHealthChecker creates a checker. Any of store, cache and recorder may
// be nil.
func NewHealthChecker(store, cache Pinger, recorder StatusRecorder, logger *zap.Logger) *HealthChecker {
	deps := make(map[string]Pinger, 2)
	if store != nil {
		deps["store"] = store
	}
	if cache != nil {
		deps["cache"] = cache
	}
	return &HealthChecker{
		deps:     deps,
		recorder: recorder,
		timeout:  5 * time.Second,
		logger:   logger,
	}
}

// Check pings every dependency concurrently and reports whether all of them
// answered.
func (h *HealthChecker) Check(ctx context.Context) (bool, map[string]string) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.deps))
	for name := range h.deps {
		names = append(names, name)
	}
	results := make([]error, len(names))

	var g errgroup.Group
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			results[i] = h.deps[name].Ping(ctx)
			return nil
		})
	}
	_ = g.Wait()

	ok := true
	checks := make(map[string]string, len(names))
	for i, name := range names {
		if err := results[i]; err != nil {
			h.logger.Error("Dependency check failed", zap.String("dependency", name), zap.Error(err))
			checks[name] = "unhealthy: " + err.Error()
			ok = false
			continue
		}
		checks[name] = checkHealthy
	}

	if h.recorder != nil {
		h.recorder.SetHealthStatus(ok)
	}
	return ok, checks
}

// LivenessHandler answers as long as the process serves HTTP.
func (h *HealthChecker) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, http.StatusOK, HealthStatus{Status: StatusAlive, Timestamp: time.Now().Unix()})
}

// ReadinessHandler answers 503 while any dependency is unreachable.
func (h *HealthChecker) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	ok, checks := h.Check(r.Context())

	status := HealthStatus{Status: StatusReady, Timestamp: time.Now().Unix(), Checks: checks}
	code := http.StatusOK
	if !ok {
		status.Status = StatusNotReady
		code = http.StatusServiceUnavailable
	}
	writeStatus(w, code, status)
}

func writeStatus(w http.ResponseWriter, code int, status HealthStatus) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(status)
}
