// internal/inventory/service.go
package inventory

import (
	"context"

	"github.com/google/uuid"
)

// Service is the movement ledger's write and read surface: the validated
// assign/return/sale transitions and the derived-availability views.
type Service interface {
	Assign(ctx context.Context, volunteerID, batchID uuid.UUID, units int) (*AssignResult, error)
	Return(ctx context.Context, volunteerID, batchID uuid.UUID, units int) (*ReturnResult, error)
	RecordSale(ctx context.Context, in SaleInput) (*SaleResult, error)

	BatchAvailability(ctx context.Context, batchID uuid.UUID) (*BatchAvailability, error)
	VolunteerHolding(ctx context.Context, batchID, volunteerID uuid.UUID) (int, error)
	WarehouseInventory(ctx context.Context) ([]WarehouseRow, error)
	VolunteerInventory(ctx context.Context, volunteerID uuid.UUID) ([]HoldingRow, error)
	TitleSummary(ctx context.Context) ([]TitleRollup, error)
}
