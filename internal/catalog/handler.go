// internal/catalog/handler.go
package catalog

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

// Routes mounts the catalog endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/titles", h.handleCreateTitle)
	r.Get("/titles", h.handleListTitles)
	r.Post("/batches", h.handleCreateBatch)
	r.Get("/batches", h.handleListBatches)
	r.Post("/batches/{id}/copies", h.handleAddCopies)
}

func (h *Handler) handleCreateTitle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Category string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	title, err := h.service.CreateTitle(r.Context(), req.Name, req.Category)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(title)
}

func (h *Handler) handleListTitles(w http.ResponseWriter, r *http.Request) {
	titles, err := h.service.ListTitles(r.Context())
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	json.NewEncoder(w).Encode(titles)
}

func (h *Handler) handleCreateBatch(w http.ResponseWriter, r *http.Request) {
	var in BatchInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	batch, err := h.service.CreateOrAugmentBatch(r.Context(), in)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(batch)
}

func (h *Handler) handleListBatches(w http.ResponseWriter, r *http.Request) {
	batches, err := h.service.ListBatches(r.Context(), r.URL.Query().Get("title"))
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	json.NewEncoder(w).Encode(batches)
}

func (h *Handler) handleAddCopies(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid batch id", http.StatusBadRequest)
		return
	}

	var req struct {
		Units int `json:"units"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	batch, err := h.service.AddCopies(r.Context(), id, req.Units)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	json.NewEncoder(w).Encode(batch)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrMissingTitle), errors.Is(err, ErrInvalidUnits):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
