// internal/volunteers/service.go
package volunteers

import (
	"context"

	"github.com/google/uuid"

	"bookstall/internal/model"
)

// Service defines the interface for the volunteer registry.
type Service interface {
	Register(ctx context.Context, in RegisterInput) (*model.Volunteer, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Volunteer, error)
	// PromoteLead flips is_lead to true. There is no demotion.
	PromoteLead(ctx context.Context, id uuid.UUID) (*model.Volunteer, error)
	List(ctx context.Context) ([]model.Volunteer, error)
	ListLeads(ctx context.Context) ([]model.Volunteer, error)
}
