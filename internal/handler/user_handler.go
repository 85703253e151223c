package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/SatishMhobiya/e-commerce-backend/internal/service"
)

// NewUser handles POST /api/v1/user/new. A known id signs the user in and
// answers 200; a new one creates the account and answers 201.
func (h *Handlers) NewUser(w http.ResponseWriter, r *http.Request) {
	var req service.NewUserInput
	if err := decodeJSON(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	ctx := r.Context()

	user, created, err := h.users.RegisterUser(ctx, req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	h.writeJSONResponse(w, status, envelope{"message": "Welcome, " + user.Name})
}

// AllUsers handles GET /api/v1/user/all.
func (h *Handlers) AllUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	users, err := h.users.ListUsers(ctx)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, envelope{"users": users})
}

// GetUser handles GET /api/v1/user/{id}.
func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := h.users.GetUser(ctx, mux.Vars(r)["id"])
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, envelope{"user": user})
}

// DeleteUser handles DELETE /api/v1/user/{id}.
func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.users.DeleteUser(ctx, mux.Vars(r)["id"]); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, envelope{"message": "User Deleted Successfully"})
}
