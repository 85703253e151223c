// Package middleware provides HTTP middleware for the storefront API.
package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	apperrors "github.com/SatishMhobiya/e-commerce-backend/internal/errors"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-ID"

// ContextKey is a type for context keys.
type ContextKey string

const (
	// RequestIDKey is the context key for request ID.
	RequestIDKey ContextKey = "request_id"
	// StartTimeKey is the context key for request start time.
	StartTimeKey ContextKey = "start_time"
)

// RequestID tags every request with an id, reusing the caller's when it sent
// one. The id is echoed in the response and left on the request header, where
// the error handler reads it.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(HeaderRequestID))
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(HeaderRequestID, id)
		r.Header.Set(HeaderRequestID, id)

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), RequestIDKey, id)))
	})
}

// Logging writes one line per request. Server errors log at error level and
// client errors at warn.
func Logging(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), StartTimeKey, start)))

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Int("bytes", rec.bytes),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", r.Header.Get(HeaderRequestID)),
				zap.String("remote_addr", r.RemoteAddr),
			}
			switch {
			case rec.status >= http.StatusInternalServerError:
				logger.Error("HTTP request", fields...)
			case rec.status >= http.StatusBadRequest:
				logger.Warn("HTTP request", fields...)
			default:
				logger.Info("HTTP request", fields...)
			}
		})
	}
}

// Recovery turns a panicking handler into a 500 response.
func Recovery(errorHandler *apperrors.Handler, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if p := recover(); p != nil {
					requestID := r.Header.Get(HeaderRequestID)
					logger.Error("Panic recovered",
						zap.Any("panic", p),
						zap.String("request_id", requestID),
						zap.String("path", r.URL.Path),
						zap.Stack("stack"))
					errorHandler.WriteErrorResponse(w, http.StatusInternalServerError,
						apperrors.KindInternal, "Internal Server Error", requestID)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// CORS answers preflight requests and sets the allow headers for origins in
// allowedOrigins. "*" admits every origin.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowAll := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" {
				w.Header().Add("Vary", "Origin")
				if _, ok := allowed[origin]; ok || allowAll {
					h := w.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
					h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+HeaderRequestID)
					h.Set("Access-Control-Expose-Headers", HeaderRequestID)
					h.Set("Access-Control-Max-Age", "86400")
				}
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimiter gives every client address its own token bucket.
type RateLimiter struct {
	rps          rate.Limit
	burst        int
	errorHandler *apperrors.Handler
	logger       *zap.Logger

	mu      sync.Mutex
	clients map[string]*rate.Limiter
}

// NewRateLimiter creates a limiter allowing requestsPerSecond per client with
// bursts of up to burstSize.
func NewRateLimiter(requestsPerSecond float64, burstSize int, errorHandler *apperrors.Handler, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		rps:          rate.Limit(requestsPerSecond),
		burst:        burstSize,
		errorHandler: errorHandler,
		logger:       logger,
		clients:      make(map[string]*rate.Limiter),
	}
}

func (rl *RateLimiter) limiterFor(client string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, ok := rl.clients[client]
	if !ok {
		l = rate.NewLimiter(rl.rps, rl.burst)
		rl.clients[client] = l
	}
	return l
}

// Limit rejects requests over the client's budget with 429.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := clientAddr(r)
		if rl.limiterFor(client).Allow() {
			next.ServeHTTP(w, r)
			return
		}

		requestID := r.Header.Get(HeaderRequestID)
		rl.logger.Warn("Rate limit exceeded",
			zap.String("client", client),
			zap.String("path", r.URL.Path),
			zap.String("request_id", requestID))

		w.Header().Set("Retry-After", "1")
		rl.errorHandler.WriteErrorResponse(w, http.StatusTooManyRequests,
			apperrors.KindRateLimited, "Too many requests", requestID)
	})
}

// Clients reports how many client buckets are held.
func (rl *RateLimiter) Clients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Timeout bounds the request context.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// statusRecorder remembers the status and size of the response.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	n, err := rec.ResponseWriter.Write(b)
	rec.bytes += n
	return n, err
}

// Chain composes middlewares so the first one listed runs outermost.
func Chain(middlewares ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}
