// internal/inventory/implementation.go
package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"bookstall/internal/model"
	"bookstall/internal/store"
	"bookstall/internal/volunteers"
)

// service implements the Service interface.
type service struct {
	store  store.Store
	tracer trace.Tracer
}

// NewService creates a new inventory service instance.
func NewService(st store.Store) Service {
	return &service{
		store:  st,
		tracer: otel.Tracer("bookstall/inventory"),
	}
}

// Assign checks out warehouse copies to a lead volunteer. Assignment is a
// partial fill: when fewer copies are available than requested it assigns
// what is there and reports the effective count; only a zero-availability
// batch fails.
func (s *service) Assign(ctx context.Context, volunteerID, batchID uuid.UUID, units int) (*AssignResult, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.assign",
		trace.WithAttributes(
			attribute.String("batch.id", batchID.String()),
			attribute.String("volunteer.id", volunteerID.String()),
			attribute.Int("units.requested", units),
		),
	)
	defer span.End()

	if units <= 0 {
		return nil, ErrInvalidUnits
	}

	vol, err := s.store.GetVolunteer(ctx, volunteerID)
	if err != nil {
		return nil, fmt.Errorf("volunteer %s: %w", volunteerID, err)
	}
	if !vol.IsLead {
		return nil, fmt.Errorf("volunteer %s: %w", volunteerID, volunteers.ErrNotLead)
	}

	batch, err := s.store.GetBatch(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("batch %s: %w", batchID, err)
	}

	version, err := s.store.BatchVersion(ctx, batchID)
	if err != nil {
		return nil, err
	}

	t, err := s.batchTally(ctx, batchID)
	if err != nil {
		return nil, err
	}
	available := t.warehouseAvailable(batch.CopiesTotal)
	if available <= 0 {
		return nil, fmt.Errorf("batch %s, requested %d: %w", batchID, units, ErrInsufficientStock)
	}

	effective := min(units, available)
	m, err := s.store.AppendMovement(ctx, model.Movement{
		BatchID:     batchID,
		VolunteerID: volunteerID,
		Type:        model.MovementAssign,
		Copies:      effective,
		Date:        time.Now().UTC(),
	}, version)
	if err != nil {
		return nil, fmt.Errorf("append assign: %w", err)
	}

	span.SetAttributes(attribute.Int("units.effective", effective))
	return &AssignResult{
		Movement:           m,
		Requested:          units,
		Effective:          effective,
		WarehouseRemaining: available - effective,
	}, nil
}

// Return takes copies back from a volunteer's custody. The effective
// amount is capped at what the volunteer currently holds.
func (s *service) Return(ctx context.Context, volunteerID, batchID uuid.UUID, units int) (*ReturnResult, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.return",
		trace.WithAttributes(
			attribute.String("batch.id", batchID.String()),
			attribute.String("volunteer.id", volunteerID.String()),
			attribute.Int("units.requested", units),
		),
	)
	defer span.End()

	if units <= 0 {
		return nil, ErrInvalidUnits
	}

	vol, err := s.store.GetVolunteer(ctx, volunteerID)
	if err != nil {
		return nil, fmt.Errorf("volunteer %s: %w", volunteerID, err)
	}
	if !vol.IsLead {
		return nil, fmt.Errorf("volunteer %s: %w", volunteerID, volunteers.ErrNotLead)
	}

	if _, err := s.store.GetBatch(ctx, batchID); err != nil {
		return nil, fmt.Errorf("batch %s: %w", batchID, err)
	}

	version, err := s.store.BatchVersion(ctx, batchID)
	if err != nil {
		return nil, err
	}

	held, err := s.VolunteerHolding(ctx, batchID, volunteerID)
	if err != nil {
		return nil, err
	}
	if held <= 0 {
		return nil, fmt.Errorf("batch %s, volunteer %s: %w", batchID, volunteerID, ErrNothingToReturn)
	}

	effective := min(units, held)
	m, err := s.store.AppendMovement(ctx, model.Movement{
		BatchID:     batchID,
		VolunteerID: volunteerID,
		Type:        model.MovementReturn,
		Copies:      effective,
		Date:        time.Now().UTC(),
	}, version)
	if err != nil {
		return nil, fmt.Errorf("append return: %w", err)
	}

	span.SetAttributes(attribute.Int("units.effective", effective))
	return &ReturnResult{
		Movement:  m,
		Requested: units,
		Effective: effective,
		StillHeld: held - effective,
	}, nil
}

// RecordSale sells copies at an open stall out of the stall lead's own
// holding. Stock assigned to a different lead is never drawn from. A sale
// smaller than requested succeeds with the shortfall surfaced.
func (s *service) RecordSale(ctx context.Context, in SaleInput) (*SaleResult, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.record_sale",
		trace.WithAttributes(
			attribute.String("stall.id", in.StallID.String()),
			attribute.String("batch.id", in.BatchID.String()),
			attribute.Int("units.requested", in.Copies),
		),
	)
	defer span.End()

	if in.Copies <= 0 {
		return nil, ErrInvalidUnits
	}
	if in.PricePerCopy.IsNegative() {
		return nil, ErrInvalidPrice
	}

	stall, err := s.store.GetStall(ctx, in.StallID)
	if err != nil {
		return nil, fmt.Errorf("stall %s: %w", in.StallID, err)
	}
	if stall.Closed {
		return nil, fmt.Errorf("stall %s: %w", in.StallID, ErrStallClosed)
	}

	batch, err := s.store.GetBatch(ctx, in.BatchID)
	if err != nil {
		return nil, fmt.Errorf("batch %s: %w", in.BatchID, err)
	}
	title, err := s.store.GetTitle(ctx, batch.TitleID)
	if err != nil {
		return nil, fmt.Errorf("title for batch %s: %w", in.BatchID, err)
	}
	if title.Name != in.Title {
		return nil, fmt.Errorf("batch %s is %q, got %q: %w", in.BatchID, title.Name, in.Title, ErrTitleMismatch)
	}

	version, err := s.store.BatchVersion(ctx, in.BatchID)
	if err != nil {
		return nil, err
	}

	held, err := s.VolunteerHolding(ctx, in.BatchID, stall.LeadID)
	if err != nil {
		return nil, err
	}
	if held <= 0 {
		return nil, fmt.Errorf("batch %s, lead %s: %w", in.BatchID, stall.LeadID, ErrNothingToSell)
	}

	// Sold movements carry the stall's date so monthly reports line up
	// with the stall, not with when the admin typed it in.
	saleDate := stall.Date
	if saleDate.IsZero() {
		saleDate = time.Now().UTC()
	}

	effective := min(in.Copies, held)
	m, err := s.store.AppendMovement(ctx, model.Movement{
		BatchID:      in.BatchID,
		VolunteerID:  stall.LeadID,
		StallID:      uuid.NullUUID{UUID: in.StallID, Valid: true},
		Type:         model.MovementSold,
		Copies:       effective,
		Date:         saleDate,
		PricePerCopy: in.PricePerCopy,
	}, version)
	if err != nil {
		return nil, fmt.Errorf("append sale: %w", err)
	}

	span.SetAttributes(
		attribute.Int("units.effective", effective),
		attribute.Int("units.shortfall", in.Copies-effective),
	)
	return &SaleResult{
		Movement:  m,
		Requested: in.Copies,
		Effective: effective,
		Shortfall: in.Copies - effective,
		Revenue:   m.Revenue(),
	}, nil
}

// BatchAvailability folds the whole ledger of one batch.
func (s *service) BatchAvailability(ctx context.Context, batchID uuid.UUID) (*BatchAvailability, error) {
	batch, err := s.store.GetBatch(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("batch %s: %w", batchID, err)
	}
	t, err := s.batchTally(ctx, batchID)
	if err != nil {
		return nil, err
	}
	return &BatchAvailability{
		BatchID:            batchID,
		Total:              batch.CopiesTotal,
		Assigned:           t.assigned,
		Returned:           t.returned,
		Sold:               t.sold,
		WarehouseAvailable: t.warehouseAvailable(batch.CopiesTotal),
	}, nil
}

// VolunteerHolding reports the copies of a batch currently in one
// volunteer's custody. The fold is scoped by both batch and volunteer;
// batch-wide sums would conflate one lead's stock with another's.
func (s *service) VolunteerHolding(ctx context.Context, batchID, volunteerID uuid.UUID) (int, error) {
	movs, err := s.store.Movements(ctx, store.MovementFilter{
		BatchID:     &batchID,
		VolunteerID: &volunteerID,
	})
	if err != nil {
		return 0, fmt.Errorf("query movements: %w", err)
	}
	return tallyMovements(movs).held(), nil
}

// WarehouseInventory lists every batch that still has copies in the
// warehouse.
func (s *service) WarehouseInventory(ctx context.Context) ([]WarehouseRow, error) {
	batches, err := s.store.ListBatches(ctx)
	if err != nil {
		return nil, err
	}
	names, err := s.titleNames(ctx)
	if err != nil {
		return nil, err
	}

	var out []WarehouseRow
	for _, b := range batches {
		t, err := s.batchTally(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		available := t.warehouseAvailable(b.CopiesTotal)
		if available <= 0 {
			continue
		}
		out = append(out, WarehouseRow{
			BatchID:            b.ID,
			Title:              names[b.TitleID],
			Total:              b.CopiesTotal,
			Assigned:           t.assigned,
			Returned:           t.returned,
			Sold:               t.sold,
			WarehouseAvailable: available,
		})
	}
	return out, nil
}

// VolunteerInventory lists the batches a volunteer currently holds copies
// of, skipping batches they have fully sold or returned.
func (s *service) VolunteerInventory(ctx context.Context, volunteerID uuid.UUID) ([]HoldingRow, error) {
	if _, err := s.store.GetVolunteer(ctx, volunteerID); err != nil {
		return nil, fmt.Errorf("volunteer %s: %w", volunteerID, err)
	}
	movs, err := s.store.Movements(ctx, store.MovementFilter{VolunteerID: &volunteerID})
	if err != nil {
		return nil, fmt.Errorf("query movements: %w", err)
	}

	perBatch := make(map[uuid.UUID][]model.Movement)
	var order []uuid.UUID
	for _, m := range movs {
		if _, seen := perBatch[m.BatchID]; !seen {
			order = append(order, m.BatchID)
		}
		perBatch[m.BatchID] = append(perBatch[m.BatchID], m)
	}

	names, err := s.titleNames(ctx)
	if err != nil {
		return nil, err
	}

	var out []HoldingRow
	for _, batchID := range order {
		t := tallyMovements(perBatch[batchID])
		if t.held() <= 0 {
			continue
		}
		batch, err := s.store.GetBatch(ctx, batchID)
		if err != nil {
			return nil, err
		}
		out = append(out, HoldingRow{
			BatchID:  batchID,
			Title:    names[batch.TitleID],
			Assigned: t.assigned,
			Returned: t.returned,
			Sold:     t.sold,
			Held:     t.held(),
		})
	}
	return out, nil
}

// TitleSummary rolls availability and revenue up across every batch of
// every title. Each movement contributes to exactly one batch and one
// title.
func (s *service) TitleSummary(ctx context.Context) ([]TitleRollup, error) {
	titles, err := s.store.ListTitles(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]TitleRollup, 0, len(titles))
	for _, title := range titles {
		batches, err := s.store.ListBatchesForTitle(ctx, title.ID)
		if err != nil {
			return nil, err
		}
		row := TitleRollup{Title: title.Name, Category: title.Category, Revenue: decimal.Zero}
		for _, b := range batches {
			t, err := s.batchTally(ctx, b.ID)
			if err != nil {
				return nil, err
			}
			row.Total += b.CopiesTotal
			row.Assigned += t.assigned
			row.Returned += t.returned
			row.Sold += t.sold
			row.Revenue = row.Revenue.Add(t.revenue)
		}
		row.Available = row.Total - (row.Assigned - row.Returned)
		out = append(out, row)
	}
	return out, nil
}

func (s *service) batchTally(ctx context.Context, batchID uuid.UUID) (tally, error) {
	movs, err := s.store.Movements(ctx, store.MovementFilter{BatchID: &batchID})
	if err != nil {
		return tally{}, fmt.Errorf("query movements: %w", err)
	}
	return tallyMovements(movs), nil
}

func (s *service) titleNames(ctx context.Context) (map[uuid.UUID]string, error) {
	titles, err := s.store.ListTitles(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(titles))
	for _, t := range titles {
		names[t.ID] = t.Name
	}
	return names, nil
}
