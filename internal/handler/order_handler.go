package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/SatishMhobiya/e-commerce-backend/internal/service"
)

// NewOrder handles POST /api/v1/order/new.
func (h *Handlers) NewOrder(w http.ResponseWriter, r *http.Request) {
	var req service.NewOrderInput
	if err := decodeJSON(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	ctx := r.Context()

	order, err := h.orders.PlaceOrder(ctx, req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.writeJSONResponse(w, http.StatusCreated, envelope{
		"message": "Order Placed Successfully",
		"order":   order,
	})
}

// MyOrders handles GET /api/v1/order/my?id=<userId>.
func (h *Handlers) MyOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orders, err := h.orders.UserOrders(ctx, r.URL.Query().Get("id"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, envelope{"orders": orders})
}

// AllOrders handles GET /api/v1/order/all.
func (h *Handlers) AllOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orders, err := h.orders.AdminOrders(ctx)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, envelope{"orders": orders})
}

// GetOrder handles GET /api/v1/order/{id}.
func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	order, err := h.orders.GetOrder(ctx, mux.Vars(r)["id"])
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, envelope{"order": order})
}

// ProcessOrder handles PUT /api/v1/order/{id}.
func (h *Handlers) ProcessOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	order, err := h.orders.ProcessOrder(ctx, mux.Vars(r)["id"])
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, envelope{
		"message": "Order Processed Successfully",
		"status":  order.Status,
	})
}

// DeleteOrder handles DELETE /api/v1/order/{id}.
func (h *Handlers) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.orders.DeleteOrder(ctx, mux.Vars(r)["id"]); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, envelope{"message": "Order Deleted Successfully"})
}
