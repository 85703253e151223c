package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/SatishMhobiya/e-commerce-backend/internal/errors"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequestID(t *testing.T) {
	t.Run("generates request ID if not present", func(t *testing.T) {
		handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
			assert.Equal(t, r.Header.Get("X-Request-ID"), r.Context().Value(RequestIDKey))
			w.WriteHeader(http.StatusOK)
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("preserves existing request ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Request-ID", "my-custom-id-123")
		w := httptest.NewRecorder()

		RequestID(okHandler()).ServeHTTP(w, req)

		assert.Equal(t, "my-custom-id-123", w.Header().Get("X-Request-ID"))
	})
}

func TestStatusRecorder_CountsBytes(t *testing.T) {
	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}
	_, err := rec.Write([]byte("hello"))
	require.NoError(t, err)
	rec.WriteHeader(http.StatusAccepted)

	assert.Equal(t, 5, rec.bytes)
	assert.Equal(t, http.StatusAccepted, rec.status)
}

func TestLogging_CapturesStatus(t *testing.T) {
	handler := Logging(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := r.Context().Value(StartTimeKey).(time.Time)
		assert.True(t, ok)
		w.WriteHeader(http.StatusNotFound)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecovery(t *testing.T) {
	handler := Recovery(apperrors.NewHandler(zap.NewNop()), zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("test panic")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestCORS(t *testing.T) {
	handler := CORS([]string{"https://shop.example"})(okHandler())

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Origin", "https://shop.example")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)
		assert.Equal(t, "https://shop.example", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unknown origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Origin", "https://evil.example")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/test", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2, apperrors.NewHandler(zap.NewNop()), zap.NewNop())
	handler := rl.Limit(okHandler())

	send := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, send("10.0.0.1:5000").Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	t.Run("rejection body", func(t *testing.T) {
		w := send("10.0.0.1:5001")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "1", w.Header().Get("Retry-After"))
		assert.Contains(t, w.Body.String(), "RATE_LIMITED")
	})

	t.Run("other clients keep their budget", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, send("10.0.0.2:5000").Code)
		assert.Equal(t, 2, rl.Clients())
	})
}

func TestTimeout(t *testing.T) {
	handler := Timeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := r.Context().Deadline()
		assert.True(t, ok)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))
}

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	Chain(mark("a"), mark("b"), mark("c"))(okHandler()).
		ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"a", "b", "c"}, order)
}

type mockRoleChecker struct {
	mock.Mock
}

func (m *mockRoleChecker) IsAdmin(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func TestAdminOnly(t *testing.T) {
	roles := new(mockRoleChecker)
	roles.On("IsAdmin", mock.Anything, "root").Return(true, nil)
	roles.On("IsAdmin", mock.Anything, "alice").Return(false, nil)
	roles.On("IsAdmin", mock.Anything, "ghost").Return(false, apperrors.NotFound("User not found"))

	logger := zap.NewNop()
	handler := AdminOnly(roles, apperrors.NewHandler(logger), logger)(okHandler())

	tests := []struct {
		name    string
		target  string
		status  int
		message string
	}{
		{"missing id", "/admin", http.StatusBadRequest, "Please provide a valid admin id"},
		{"unknown user", "/admin?id=ghost", http.StatusNotFound, "User not found"},
		{"not an admin", "/admin?id=alice", http.StatusForbidden, "You are not authorized to access this resource"},
		{"admin", "/admin?id=root", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.target, nil))

			assert.Equal(t, tt.status, w.Code)
			if tt.message == "" {
				return
			}
			var body apperrors.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.message, body.Message)
		})
	}

	roles.AssertExpectations(t)
}
