// internal/catalog/implementation.go
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"bookstall/internal/model"
	"bookstall/internal/store"
)

// service implements the Service interface.
type service struct {
	store store.Store
}

// NewService creates a new catalog service instance.
func NewService(st store.Store) Service {
	return &service{store: st}
}

// CreateTitle registers a new title. The category defaults to "Unknown".
func (s *service) CreateTitle(ctx context.Context, name, category string) (*model.Title, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrMissingTitle
	}
	if category == "" {
		category = "Unknown"
	}
	t := model.Title{ID: uuid.New(), Name: name, Category: category}
	if err := s.store.CreateTitle(ctx, t); err != nil {
		return nil, fmt.Errorf("create title: %w", err)
	}
	return &t, nil
}

func (s *service) ListTitles(ctx context.Context) ([]model.Title, error) {
	return s.store.ListTitles(ctx)
}

// CreateOrAugmentBatch records new stock arriving. With ExistingBatchID set
// the units join that batch; otherwise a new batch is created for the named
// title, and the title itself is created on demand.
func (s *service) CreateOrAugmentBatch(ctx context.Context, in BatchInput) (*model.Batch, error) {
	if in.Units <= 0 {
		return nil, ErrInvalidUnits
	}

	if in.ExistingBatchID != nil {
		return s.AddCopies(ctx, *in.ExistingBatchID, in.Units)
	}

	name := strings.TrimSpace(in.Title)
	if name == "" {
		return nil, ErrMissingTitle
	}

	title, err := s.store.GetTitleByName(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		created, cerr := s.CreateTitle(ctx, name, "")
		if cerr != nil {
			return nil, cerr
		}
		title = *created
	} else if err != nil {
		return nil, fmt.Errorf("resolve title: %w", err)
	}

	entryDate := in.EntryDate
	if entryDate.IsZero() {
		entryDate = time.Now().UTC()
	}

	b := model.Batch{
		ID:          uuid.New(),
		TitleID:     title.ID,
		MRP:         in.MRP,
		EntryDate:   entryDate,
		CopiesTotal: in.Units,
	}
	if err := s.store.CreateBatch(ctx, b); err != nil {
		return nil, fmt.Errorf("create batch: %w", err)
	}
	return &b, nil
}

// AddCopies increases a batch's total in place. Allowed at any time,
// including after sales began: it represents new physical stock.
func (s *service) AddCopies(ctx context.Context, batchID uuid.UUID, extra int) (*model.Batch, error) {
	if extra <= 0 {
		return nil, ErrInvalidUnits
	}
	b, err := s.store.AddCopies(ctx, batchID, extra)
	if err != nil {
		return nil, fmt.Errorf("add copies to batch %s: %w", batchID, err)
	}
	return &b, nil
}

func (s *service) GetBatch(ctx context.Context, id uuid.UUID) (*model.Batch, error) {
	b, err := s.store.GetBatch(ctx, id)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListBatches returns batches with their title names, optionally narrowed
// to a single title.
func (s *service) ListBatches(ctx context.Context, title string) ([]BatchWithTitle, error) {
	if title != "" {
		t, err := s.store.GetTitleByName(ctx, title)
		if err != nil {
			return nil, err
		}
		batches, err := s.store.ListBatchesForTitle(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		out := make([]BatchWithTitle, 0, len(batches))
		for _, b := range batches {
			out = append(out, BatchWithTitle{Batch: b, Title: t.Name})
		}
		return out, nil
	}

	batches, err := s.store.ListBatches(ctx)
	if err != nil {
		return nil, err
	}
	titles, err := s.store.ListTitles(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(titles))
	for _, t := range titles {
		names[t.ID] = t.Name
	}
	out := make([]BatchWithTitle, 0, len(batches))
	for _, b := range batches {
		out = append(out, BatchWithTitle{Batch: b, Title: names[b.TitleID]})
	}
	return out, nil
}
