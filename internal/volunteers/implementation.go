// internal/volunteers/implementation.go
package volunteers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"bookstall/internal/model"
	"bookstall/internal/store"
)

// service implements the Service interface.
type service struct {
	store       store.Store
	rateLimiter *rate.Limiter
}

// NewService creates a new volunteer service instance.
func NewService(st store.Store) Service {
	return &service{
		store:       st,
		rateLimiter: rate.NewLimiter(rate.Every(1*time.Minute), 30),
	}
}

// Register adds a volunteer. New volunteers are not leads; a separate
// promotion makes them eligible for assignments and stall leadership.
func (s *service) Register(ctx context.Context, in RegisterInput) (*model.Volunteer, error) {
	if !s.rateLimiter.Allow() {
		return nil, ErrRateLimited
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrMissingName
	}

	joinDate := in.JoinDate
	if joinDate.IsZero() {
		joinDate = time.Now().UTC()
	}

	v := model.Volunteer{
		ID:              uuid.New(),
		Name:            name,
		JoinDate:        joinDate,
		DefaultLocation: in.DefaultLocation,
	}
	if err := s.store.CreateVolunteer(ctx, v); err != nil {
		return nil, fmt.Errorf("register volunteer: %w", err)
	}
	return &v, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*model.Volunteer, error) {
	v, err := s.store.GetVolunteer(ctx, id)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *service) PromoteLead(ctx context.Context, id uuid.UUID) (*model.Volunteer, error) {
	v, err := s.store.PromoteLead(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("promote volunteer %s: %w", id, err)
	}
	return &v, nil
}

func (s *service) List(ctx context.Context) ([]model.Volunteer, error) {
	return s.store.ListVolunteers(ctx, false)
}

func (s *service) ListLeads(ctx context.Context) ([]model.Volunteer, error) {
	return s.store.ListVolunteers(ctx, true)
}
