// Package handler provides the HTTP handlers of the storefront API.
package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	apperrors "github.com/SatishMhobiya/e-commerce-backend/internal/errors"
	"github.com/SatishMhobiya/e-commerce-backend/internal/service"
	"github.com/SatishMhobiya/e-commerce-backend/internal/validation"
)

const maxBodyBytes = 1 << 20

// envelope is the JSON object every endpoint answers with
type envelope map[string]interface{}

// Handlers contains all HTTP handlers and their dependencies.
type Handlers struct {
	products     *service.ProductService
	orders       *service.OrderService
	reviews      *service.ReviewService
	users        *service.UserService
	coupons      *service.CouponService
	stats        *service.StatsService
	validator    *validation.Validator
	errorHandler *apperrors.Handler
	logger       *zap.Logger
}

// Services groups the domain services the handlers call into.
type Services struct {
	Products *service.ProductService
	Orders   *service.OrderService
	Reviews  *service.ReviewService
	Users    *service.UserService
	Coupons  *service.CouponService
	Stats    *service.StatsService
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(svc Services, errorHandler *apperrors.Handler, logger *zap.Logger) *Handlers {
	return &Handlers{
		products:     svc.Products,
		orders:       svc.Orders,
		reviews:      svc.Reviews,
		users:        svc.Users,
		coupons:      svc.Coupons,
		stats:        svc.Stats,
		validator:    validation.Default(),
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// decodeJSON reads the request body into dst. An empty body leaves dst as is.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && err != io.EOF {
		return apperrors.Validation("Invalid request body").WithDetail("body", err.Error())
	}
	return nil
}

// writeJSONResponse writes a JSON response to the HTTP response writer.
func (h *Handlers) writeJSONResponse(w http.ResponseWriter, statusCode int, data envelope) {
	data["success"] = true
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}
