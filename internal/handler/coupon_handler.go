package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/SatishMhobiya/e-commerce-backend/internal/service"
)

type couponRequest struct {
	Code   string  `json:"code"`
	Amount float64 `json:"amount" validate:"gte=0"`
}

// NewCoupon handles POST /api/v1/coupon/new.
func (h *Handlers) NewCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	ctx := r.Context()

	coupon, err := h.coupons.CreateCoupon(ctx, req.Code, req.Amount)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.writeJSONResponse(w, http.StatusCreated, envelope{
		"message": "Coupon created successfully",
		"data":    coupon,
	})
}

// AllCoupons handles GET /api/v1/coupon/all.
func (h *Handlers) AllCoupons(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	coupons, err := h.coupons.ListCoupons(ctx)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, envelope{
		"message": "Coupons fetched successfully",
		"data":    coupons,
	})
}

// GetCoupon handles GET /api/v1/coupon/{id}.
func (h *Handlers) GetCoupon(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	coupon, err := h.coupons.GetCoupon(ctx, mux.Vars(r)["id"])
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, envelope{
		"message": "Coupon fetched successfully",
		"data":    coupon,
	})
}

// UpdateCoupon handles PUT /api/v1/coupon/{id}.
func (h *Handlers) UpdateCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	ctx := r.Context()

	coupon, err := h.coupons.UpdateCoupon(ctx, mux.Vars(r)["id"], service.CouponUpdate{
		Code:   req.Code,
		Amount: req.Amount,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, envelope{
		"message": "Coupon updated successfully",
		"data":    coupon,
	})
}

// DeleteCoupon handles DELETE /api/v1/coupon/{id}.
func (h *Handlers) DeleteCoupon(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	coupon, err := h.coupons.DeleteCoupon(ctx, mux.Vars(r)["id"])
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, envelope{
		"message": "Coupon deleted successfully",
		"data":    coupon,
	})
}
