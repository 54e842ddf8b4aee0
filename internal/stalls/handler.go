// internal/stalls/handler.go
package stalls

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"bookstall/internal/store"
	"bookstall/internal/volunteers"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the stall endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/stalls", h.handleCreate)
	r.Get("/stalls/monthly", h.handleMonthlyList)
	r.Get("/stalls/{id}", h.handleGet)
	r.Post("/stalls/{id}/close", h.handleClose)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	st, err := h.service.Create(r.Context(), in)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(st)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid stall id", http.StatusBadRequest)
		return
	}

	st, err := h.service.Get(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	json.NewEncoder(w).Encode(st)
}

func (h *Handler) handleClose(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid stall id", http.StatusBadRequest)
		return
	}

	st, err := h.service.Close(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	json.NewEncoder(w).Encode(st)
}

func (h *Handler) handleMonthlyList(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.MonthlyList(r.Context())
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	json.NewEncoder(w).Encode(groups)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, volunteers.ErrNotLead):
		return http.StatusForbidden
	case errors.Is(err, ErrMissingLocation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
