// internal/inventory/domain.go
package inventory

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bookstall/internal/model"
)

var (
	// ErrInvalidUnits is returned for non-positive copy counts.
	ErrInvalidUnits = errors.New("units must be positive")
	// ErrInvalidPrice is returned for negative selling prices.
	ErrInvalidPrice = errors.New("selling price must not be negative")
	// ErrInsufficientStock is returned when the warehouse has no copies
	// left to assign from a batch.
	ErrInsufficientStock = errors.New("no copies available in warehouse")
	// ErrNothingToReturn is returned when a volunteer holds no copies of
	// the batch.
	ErrNothingToReturn = errors.New("volunteer holds no copies to return")
	// ErrNothingToSell is returned when the stall's lead holds no copies
	// of the batch.
	ErrNothingToSell = errors.New("stall lead holds no copies to sell")
	// ErrStallClosed is returned when a sale targets a closed stall.
	ErrStallClosed = errors.New("stall is closed")
	// ErrTitleMismatch is returned when the supplied title does not match
	// the batch's title.
	ErrTitleMismatch = errors.New("title does not match batch")
)

// SaleInput describes a sale recorded against an open stall. The title is
// supplied redundantly and checked against the batch to defend against
// client-side mismatches.
type SaleInput struct {
	StallID      uuid.UUID       `json:"stall_id"`
	BatchID      uuid.UUID       `json:"batch_id"`
	Title        string          `json:"title"`
	Copies       int             `json:"copies"`
	PricePerCopy decimal.Decimal `json:"price_per_copy"`
}

// AssignResult reports an assignment, including the partial-fill outcome
// when fewer copies were available than requested.
type AssignResult struct {
	Movement           model.Movement `json:"movement"`
	Requested          int            `json:"requested"`
	Effective          int            `json:"effective"`
	WarehouseRemaining int            `json:"warehouse_remaining"`
}

// ReturnResult reports a return. Effective is capped at the holding.
type ReturnResult struct {
	Movement  model.Movement `json:"movement"`
	Requested int            `json:"requested"`
	Effective int            `json:"effective"`
	StillHeld int            `json:"still_held"`
}

// SaleResult reports a sale. A nonzero Shortfall surfaces a partial sale;
// it is a success, not an error.
type SaleResult struct {
	Movement  model.Movement  `json:"movement"`
	Requested int             `json:"requested"`
	Effective int             `json:"effective"`
	Shortfall int             `json:"shortfall"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// BatchAvailability holds the derived counts for one batch.
type BatchAvailability struct {
	BatchID            uuid.UUID `json:"batch_id"`
	Total              int       `json:"total"`
	Assigned           int       `json:"assigned"`
	Returned           int       `json:"returned"`
	Sold               int       `json:"sold"`
	WarehouseAvailable int       `json:"warehouse_available"`
}

// WarehouseRow is one batch in the warehouse inventory view.
type WarehouseRow struct {
	BatchID            uuid.UUID `json:"batch_id"`
	Title              string    `json:"title"`
	Total              int       `json:"total"`
	Assigned           int       `json:"assigned"`
	Returned           int       `json:"returned"`
	Sold               int       `json:"sold"`
	WarehouseAvailable int       `json:"warehouse_available"`
}

// HoldingRow is one batch in a volunteer's current holding.
type HoldingRow struct {
	BatchID  uuid.UUID `json:"batch_id"`
	Title    string    `json:"title"`
	Assigned int       `json:"assigned"`
	Returned int       `json:"returned"`
	Sold     int       `json:"sold"`
	Held     int       `json:"held"`
}

// TitleRollup sums availability and revenue across all batches of a title.
type TitleRollup struct {
	Title     string          `json:"title"`
	Category  string          `json:"category"`
	Total     int             `json:"total"`
	Assigned  int             `json:"assigned"`
	Returned  int             `json:"returned"`
	Sold      int             `json:"sold"`
	Available int             `json:"available"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// tally is the fold over a set of movements. Scoping is the caller's job:
// per-volunteer numbers must come from movements filtered by both batch
// and volunteer, never from batch-wide sums.
type tally struct {
	assigned int
	returned int
	sold     int
	revenue  decimal.Decimal
}

func tallyMovements(movs []model.Movement) tally {
	t := tally{revenue: decimal.Zero}
	for _, m := range movs {
		switch m.Type {
		case model.MovementAssign:
			t.assigned += m.Copies
		case model.MovementReturn:
			t.returned += m.Copies
		case model.MovementSold:
			t.sold += m.Copies
			t.revenue = t.revenue.Add(m.Revenue())
		}
	}
	return t
}

// held is the copies currently in a volunteer's custody when the tally was
// scoped to that volunteer.
func (t tally) held() int {
	return t.assigned - t.returned - t.sold
}

// warehouseAvailable is the copies never checked out or checked out and
// returned, for a tally scoped to a whole batch.
func (t tally) warehouseAvailable(total int) int {
	return total - (t.assigned - t.returned)
}
