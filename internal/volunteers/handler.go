// internal/volunteers/handler.go
package volunteers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"bookstall/internal/store"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the volunteer endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/volunteers", h.handleRegister)
	r.Get("/volunteers", h.handleList)
	r.Post("/volunteers/{id}/promote", h.handlePromote)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	v, err := h.service.Register(r.Context(), in)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	var (
		out interface{}
		err error
	)
	if r.URL.Query().Get("leads") == "true" {
		out, err = h.service.ListLeads(r.Context())
	} else {
		out, err = h.service.List(r.Context())
	}
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	json.NewEncoder(w).Encode(out)
}

func (h *Handler) handlePromote(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid volunteer id", http.StatusBadRequest)
		return
	}

	v, err := h.service.PromoteLead(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	json.NewEncoder(w).Encode(v)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrMissingName):
		return http.StatusBadRequest
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
