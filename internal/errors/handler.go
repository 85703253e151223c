package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"go.uber.org/zap"
)

// ErrorResponse represents the standard error response format.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	// Details carries per-field problems of a validation failure.
	Details map[string]interface{} `json:"details,omitempty"`
}

// Handler writes AppErrors as JSON HTTP responses.
type Handler struct {
	logger *zap.Logger
}

// NewHandler creates a new error handler.
func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{
		logger: logger,
	}
}

// HandleError processes an error and writes an appropriate HTTP response.
func (h *Handler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := r.Header.Get("X-Request-ID")

	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		h.logger.Error("Unclassified error",
			zap.String("path", r.URL.Path),
			zap.String("request_id", requestID),
			zap.Error(err))
		h.WriteErrorResponse(w, http.StatusInternalServerError, KindInternal, "Internal Server Error", requestID)
		return
	}

	message := appErr.Message
	if appErr.Kind == KindUpstream || appErr.Kind == KindInternal {
		h.logger.Error("Request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", requestID),
			zap.Error(err))
		if message == "" {
			message = "Internal Server Error"
		}
	}

	h.write(w, StatusCode(appErr.Kind), ErrorResponse{
		ErrorCode: appErr.Kind.String(),
		Message:   message,
		RequestID: requestID,
		Details:   appErr.Details,
	})
}

// StatusCode converts an error kind to an HTTP status code.
func StatusCode(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// WriteErrorResponse writes a formatted error response to the HTTP response writer.
func (h *Handler) WriteErrorResponse(w http.ResponseWriter, statusCode int, kind Kind, message string, requestID string) {
	h.logger.Warn("HTTP error response",
		zap.Int("status_code", statusCode),
		zap.String("error_code", kind.String()),
		zap.String("message", message),
		zap.String("request_id", requestID),
	)

	h.write(w, statusCode, ErrorResponse{
		ErrorCode: kind.String(),
		Message:   message,
		RequestID: requestID,
	})
}

func (h *Handler) write(w http.ResponseWriter, statusCode int, resp ErrorResponse) {
	resp.Success = false
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)
}
