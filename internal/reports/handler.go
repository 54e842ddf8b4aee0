// internal/reports/handler.go
package reports

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

// Routes mounts the report endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/reports/stalls/{id}", h.handleStallPerformance)
	r.Get("/reports/monthly", h.handleMonthlyPerformance)
	r.Get("/reports/leads", h.handleLeadPerformance)
	r.Get("/reports/locations", h.handleLocationPerformance)
	r.Get("/reports/attendance", h.handleAttendance)
}

func (h *Handler) handleStallPerformance(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid stall id", http.StatusBadRequest)
		return
	}

	report, err := h.service.StallPerformance(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	json.NewEncoder(w).Encode(report)
}

func (h *Handler) handleMonthlyPerformance(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month == "" {
		http.Error(w, "month query parameter is required", http.StatusBadRequest)
		return
	}

	report, err := h.service.MonthlyPerformance(r.Context(), month)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	json.NewEncoder(w).Encode(report)
}

func (h *Handler) handleLeadPerformance(w http.ResponseWriter, r *http.Request) {
	leadID, err := optionalID(r, "lead_id")
	if err != nil {
		http.Error(w, "invalid lead id", http.StatusBadRequest)
		return
	}

	rows, err := h.service.LeadPerformance(r.Context(), leadID, r.URL.Query()["month"])
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	json.NewEncoder(w).Encode(rows)
}

func (h *Handler) handleLocationPerformance(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.LocationPerformance(r.Context(), r.URL.Query()["month"])
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	json.NewEncoder(w).Encode(rows)
}

func (h *Handler) handleAttendance(w http.ResponseWriter, r *http.Request) {
	volID, err := optionalID(r, "volunteer_id")
	if err != nil {
		http.Error(w, "invalid volunteer id", http.StatusBadRequest)
		return
	}

	report, err := h.service.Attendance(r.Context(), volID, r.URL.Query()["month"])
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	json.NewEncoder(w).Encode(report)
}

func optionalID(r *http.Request, name string) (*uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrBadMonth):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
