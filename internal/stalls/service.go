// internal/stalls/service.go
package stalls

import (
	"context"

	"github.com/google/uuid"

	"bookstall/internal/model"
)

// Service defines the interface for the stall lifecycle.
type Service interface {
	Create(ctx context.Context, in CreateInput) (*model.Stall, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Stall, error)
	// Close is idempotent: closing an already-closed stall succeeds.
	Close(ctx context.Context, id uuid.UUID) (*model.Stall, error)
	MonthlyList(ctx context.Context) ([]MonthGroup, error)
}
