// internal/catalog/service.go
package catalog

import (
	"context"

	"github.com/google/uuid"

	"bookstall/internal/model"
)

// Service defines the interface for the catalog service (titles and
// procurement batches).
type Service interface {
	CreateTitle(ctx context.Context, name, category string) (*model.Title, error)
	ListTitles(ctx context.Context) ([]model.Title, error)
	CreateOrAugmentBatch(ctx context.Context, in BatchInput) (*model.Batch, error)
	AddCopies(ctx context.Context, batchID uuid.UUID, extra int) (*model.Batch, error)
	GetBatch(ctx context.Context, id uuid.UUID) (*model.Batch, error)
	ListBatches(ctx context.Context, title string) ([]BatchWithTitle, error)
}
