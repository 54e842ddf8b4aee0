// Package store defines the persistence port for the book-sale system.
// Postgres is the source of truth in deployments; the in-memory
// implementation backs tests and standalone runs.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"bookstall/internal/model"
)

var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a uniqueness constraint is violated.
	ErrDuplicate = errors.New("already exists")
	// ErrVersionConflict is returned when a movement append races another
	// writer past the availability check.
	ErrVersionConflict = errors.New("version conflict: batch ledger changed")
	// ErrInvalidQuantity is returned for non-positive copy counts.
	ErrInvalidQuantity = errors.New("copies moved must be positive")
)

// MovementFilter narrows ledger queries. Nil fields match everything.
type MovementFilter struct {
	BatchID     *uuid.UUID
	VolunteerID *uuid.UUID
	StallID     *uuid.UUID
	Type        *model.MovementType
	From, To    *time.Time
}

// Matches reports whether a movement passes the filter.
func (f MovementFilter) Matches(m model.Movement) bool {
	if f.BatchID != nil && m.BatchID != *f.BatchID {
		return false
	}
	if f.VolunteerID != nil && m.VolunteerID != *f.VolunteerID {
		return false
	}
	if f.StallID != nil && (!m.StallID.Valid || m.StallID.UUID != *f.StallID) {
		return false
	}
	if f.Type != nil && m.Type != *f.Type {
		return false
	}
	if f.From != nil && m.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && m.Date.After(*f.To) {
		return false
	}
	return true
}

// Store is the persistence interface shared by all services.
//
// AppendMovement implements optimistic concurrency: expectedVersion is the
// per-batch movement count the caller observed while validating, and the
// append fails with ErrVersionConflict if the batch's ledger grew in
// between. Movements are append-only; there is no update or delete.
type Store interface {
	CreateTitle(ctx context.Context, t model.Title) error
	GetTitle(ctx context.Context, id uuid.UUID) (model.Title, error)
	GetTitleByName(ctx context.Context, name string) (model.Title, error)
	ListTitles(ctx context.Context) ([]model.Title, error)

	CreateBatch(ctx context.Context, b model.Batch) error
	GetBatch(ctx context.Context, id uuid.UUID) (model.Batch, error)
	AddCopies(ctx context.Context, batchID uuid.UUID, extra int) (model.Batch, error)
	ListBatches(ctx context.Context) ([]model.Batch, error)
	ListBatchesForTitle(ctx context.Context, titleID uuid.UUID) ([]model.Batch, error)

	CreateVolunteer(ctx context.Context, v model.Volunteer) error
	GetVolunteer(ctx context.Context, id uuid.UUID) (model.Volunteer, error)
	PromoteLead(ctx context.Context, id uuid.UUID) (model.Volunteer, error)
	ListVolunteers(ctx context.Context, leadsOnly bool) ([]model.Volunteer, error)

	CreateStall(ctx context.Context, s model.Stall) error
	GetStall(ctx context.Context, id uuid.UUID) (model.Stall, error)
	// CloseStall is idempotent: closing a closed stall is a no-op success.
	CloseStall(ctx context.Context, id uuid.UUID) (model.Stall, error)
	ListStalls(ctx context.Context) ([]model.Stall, error)

	// BatchVersion returns the number of movements recorded for a batch.
	BatchVersion(ctx context.Context, batchID uuid.UUID) (int, error)
	AppendMovement(ctx context.Context, m model.Movement, expectedVersion int) (model.Movement, error)
	Movements(ctx context.Context, f MovementFilter) ([]model.Movement, error)
}
