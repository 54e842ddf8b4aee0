// internal/catalog/domain.go
package catalog

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bookstall/internal/model"
)

var (
	// ErrMissingTitle is returned when a title name is empty.
	ErrMissingTitle = errors.New("title name is required")
	// ErrInvalidUnits is returned for non-positive unit counts.
	ErrInvalidUnits = errors.New("units must be positive")
)

// BatchInput describes a procurement. When ExistingBatchID is set the units
// are added to that batch; otherwise a new batch is created for the named
// title, creating the title on demand.
type BatchInput struct {
	Title           string          `json:"title"`
	MRP             decimal.Decimal `json:"mrp"`
	EntryDate       time.Time       `json:"entry_date"`
	ExistingBatchID *uuid.UUID      `json:"existing_batch_id,omitempty"`
	Units           int             `json:"units"`
}

// BatchWithTitle is a batch joined with its title name for listings.
type BatchWithTitle struct {
	model.Batch
	Title string `json:"title"`
}
