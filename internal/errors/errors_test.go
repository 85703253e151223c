package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestKindOf_WrappedError(t *testing.T) {
	base := NotFound("Product not found")
	wrapped := fmt.Errorf("load product: %w", base)

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindNotFound))
	assert.False(t, Is(wrapped, KindValidation))
	assert.Equal(t, KindInternal, KindOf(fmt.Errorf("plain")))
	assert.False(t, Is(nil, KindInternal))
}

func TestAppError_Message(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Upstream("failed to load orders", cause)

	assert.Equal(t, "failed to load orders: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)

	err.WithDetail("order_id", "o1")
	assert.Equal(t, "o1", err.Details["order_id"])
}

func TestHandler_HandleError(t *testing.T) {
	h := NewHandler(zap.NewNop())

	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"validation", Validation("All fields are required"), http.StatusBadRequest, "INVALID_REQUEST", "All fields are required"},
		{"not found", NotFound("Order not found"), http.StatusNotFound, "NOT_FOUND", "Order not found"},
		{"unauthorized", Unauthorized("Not Authorized"), http.StatusForbidden, "FORBIDDEN", "Not Authorized"},
		{"conflict", Conflict("Coupon code already exists", nil), http.StatusConflict, "CONFLICT", "Coupon code already exists"},
		{"upstream hides cause", Upstream("failed to load orders", fmt.Errorf("dial tcp")), http.StatusInternalServerError, "UPSTREAM_FAILURE", "failed to load orders"},
		{"unclassified", fmt.Errorf("boom"), http.StatusInternalServerError, "INTERNAL_ERROR", "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/order/all", nil)
			req.Header.Set("X-Request-ID", "req-1")
			w := httptest.NewRecorder()

			h.HandleError(w, req, tt.err)

			assert.Equal(t, tt.status, w.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tt.code, resp.ErrorCode)
			assert.Equal(t, tt.message, resp.Message)
			assert.Equal(t, "req-1", resp.RequestID)
		})
	}
}
