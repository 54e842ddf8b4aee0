// internal/inventory/handler.go
package inventory

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

// Routes mounts the inventory endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/inventory/assign", h.handleAssign)
	r.Post("/inventory/return", h.handleReturn)
	r.Post("/inventory/sales", h.handleRecordSale)
	r.Get("/inventory/warehouse", h.handleWarehouse)
	r.Get("/inventory/titles", h.handleTitleSummary)
	r.Get("/inventory/batches/{id}", h.handleBatchAvailability)
	r.Get("/inventory/volunteers/{id}", h.handleVolunteerInventory)
}

type moveRequest struct {
	VolunteerID uuid.UUID `json:"volunteer_id"`
	BatchID     uuid.UUID `json:"batch_id"`
	Units       int       `json:"units"`
}

func (h *Handler) handleAssign(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.service.Assign(r.Context(), req.VolunteerID, req.BatchID, req.Units)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(result)
}

func (h *Handler) handleReturn(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.service.Return(r.Context(), req.VolunteerID, req.BatchID, req.Units)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(result)
}

func (h *Handler) handleRecordSale(w http.ResponseWriter, r *http.Request) {
	var in SaleInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.service.RecordSale(r.Context(), in)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(result)
}

func (h *Handler) handleWarehouse(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.WarehouseInventory(r.Context())
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	json.NewEncoder(w).Encode(rows)
}

func (h *Handler) handleTitleSummary(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.TitleSummary(r.Context())
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	json.NewEncoder(w).Encode(rows)
}

func (h *Handler) handleBatchAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid batch id", http.StatusBadRequest)
		return
	}

	avail, err := h.service.BatchAvailability(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	json.NewEncoder(w).Encode(avail)
}

func (h *Handler) handleVolunteerInventory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid volunteer id", http.StatusBadRequest)
		return
	}

	rows, err := h.service.VolunteerInventory(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	json.NewEncoder(w).Encode(rows)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, volunteers.ErrNotLead):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidUnits), errors.Is(err, ErrInvalidPrice),
		errors.Is(err, ErrTitleMismatch), errors.Is(err, store.ErrInvalidQuantity):
		return http.StatusBadRequest
	case errors.Is(err, ErrInsufficientStock), errors.Is(err, ErrNothingToReturn),
		errors.Is(err, ErrNothingToSell), errors.Is(err, ErrStallClosed),
		errors.Is(err, store.ErrVersionConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
