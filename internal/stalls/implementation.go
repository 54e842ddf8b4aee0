// internal/stalls/implementation.go
package stalls

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"bookstall/internal/model"
	"bookstall/internal/store"
	"bookstall/internal/volunteers"
)

// service implements the Service interface.
type service struct {
	store store.Store
}

// NewService creates a new stall service instance.
func NewService(st store.Store) Service {
	return &service{store: st}
}

// Create opens a stall after validating the lead and the attendance list.
func (s *service) Create(ctx context.Context, in CreateInput) (*model.Stall, error) {
	if strings.TrimSpace(in.Location) == "" {
		return nil, ErrMissingLocation
	}

	lead, err := s.store.GetVolunteer(ctx, in.LeadID)
	if err != nil {
		return nil, fmt.Errorf("lead volunteer %s: %w", in.LeadID, err)
	}
	if !lead.IsLead {
		return nil, volunteers.ErrNotLead
	}

	seen := make(map[uuid.UUID]bool, len(in.VolunteerIDs))
	attending := make([]uuid.UUID, 0, len(in.VolunteerIDs))
	for _, volID := range in.VolunteerIDs {
		if seen[volID] {
			continue
		}
		seen[volID] = true
		if _, err := s.store.GetVolunteer(ctx, volID); err != nil {
			return nil, fmt.Errorf("volunteer %s: %w", volID, err)
		}
		attending = append(attending, volID)
	}

	date := in.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	st := model.Stall{
		ID:           uuid.New(),
		Location:     strings.TrimSpace(in.Location),
		Date:         date,
		LeadID:       in.LeadID,
		VolunteerIDs: attending,
	}
	if err := s.store.CreateStall(ctx, st); err != nil {
		return nil, fmt.Errorf("create stall: %w", err)
	}
	return &st, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*model.Stall, error) {
	st, err := s.store.GetStall(ctx, id)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *service) Close(ctx context.Context, id uuid.UUID) (*model.Stall, error) {
	st, err := s.store.CloseStall(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("close stall %s: %w", id, err)
	}
	return &st, nil
}

// MonthlyList groups all stalls by calendar month, oldest month first.
func (s *service) MonthlyList(ctx context.Context) ([]MonthGroup, error) {
	all, err := s.store.ListStalls(ctx)
	if err != nil {
		return nil, err
	}

	byMonth := make(map[string][]StallSummary)
	for _, st := range all {
		key := st.Date.Format("2006-01")
		byMonth[key] = append(byMonth[key], StallSummary{
			ID:       st.ID,
			Location: st.Location,
			Date:     st.Date,
			Closed:   st.Closed,
		})
	}

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	out := make([]MonthGroup, 0, len(months))
	for _, m := range months {
		out = append(out, MonthGroup{Month: m, Stalls: byMonth[m]})
	}
	return out, nil
}
