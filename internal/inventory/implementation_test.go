package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookstall/internal/model"
	"bookstall/internal/store"
	"bookstall/internal/volunteers"
)

type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *store.Memory
	svc   Service
}

func setup(t *testing.T) (*fixture, Service) {
	st := store.NewMemory()
	f := &fixture{t: t, ctx: context.Background(), store: st, svc: NewService(st)}
	return f, f.svc
}

func (f *fixture) title(name string) model.Title {
	t := model.Title{ID: uuid.New(), Name: name, Category: "Unknown"}
	require.NoError(f.t, f.store.CreateTitle(f.ctx, t))
	return t
}

func (f *fixture) batch(titleID uuid.UUID, copies int) model.Batch {
	b := model.Batch{
		ID:          uuid.New(),
		TitleID:     titleID,
		MRP:         decimal.NewFromInt(100),
		EntryDate:   time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		CopiesTotal: copies,
	}
	require.NoError(f.t, f.store.CreateBatch(f.ctx, b))
	return b
}

func (f *fixture) lead(name string) model.Volunteer {
	v := model.Volunteer{ID: uuid.New(), Name: name, JoinDate: time.Now(), IsLead: true}
	require.NoError(f.t, f.store.CreateVolunteer(f.ctx, v))
	return v
}

func (f *fixture) volunteer(name string) model.Volunteer {
	v := model.Volunteer{ID: uuid.New(), Name: name, JoinDate: time.Now()}
	require.NoError(f.t, f.store.CreateVolunteer(f.ctx, v))
	return v
}

func (f *fixture) stall(leadID uuid.UUID, date time.Time) model.Stall {
	st := model.Stall{ID: uuid.New(), Location: "Koramangala", Date: date, LeadID: leadID}
	require.NoError(f.t, f.store.CreateStall(f.ctx, st))
	return st
}

func TestAssignPartialFill(t *testing.T) {
	f, svc := setup(t)
	title := f.title("Fear")
	batch := f.batch(title.ID, 4)
	lead := f.lead("Asha")

	result, err := svc.Assign(f.ctx, lead.ID, batch.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, result.Requested)
	assert.Equal(t, 4, result.Effective)
	assert.Equal(t, 0, result.WarehouseRemaining)

	avail, err := svc.BatchAvailability(f.ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, avail.WarehouseAvailable)
	assert.Equal(t, 4, avail.Assigned)
}

func TestAssignRejectsNonLead(t *testing.T) {
	f, svc := setup(t)
	title := f.title("Fear")
	batch := f.batch(title.ID, 5)
	vol := f.volunteer("Ravi")

	_, err := svc.Assign(f.ctx, vol.ID, batch.ID, 2)
	assert.ErrorIs(t, err, volunteers.ErrNotLead)
}

func TestAssignFailsOnZeroStock(t *testing.T) {
	f, svc := setup(t)
	title := f.title("Fear")
	batch := f.batch(title.ID, 3)
	lead := f.lead("Asha")

	_, err := svc.Assign(f.ctx, lead.ID, batch.ID, 3)
	require.NoError(t, err)

	_, err = svc.Assign(f.ctx, lead.ID, batch.ID, 1)
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestAssignUnknownBatch(t *testing.T) {
	f, svc := setup(t)
	lead := f.lead("Asha")

	_, err := svc.Assign(f.ctx, lead.ID, uuid.New(), 1)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestReturnCappedAtHolding(t *testing.T) {
	f, svc := setup(t)
	title := f.title("Clarity")
	batch := f.batch(title.ID, 10)
	lead := f.lead("Asha")

	_, err := svc.Assign(f.ctx, lead.ID, batch.ID, 6)
	require.NoError(t, err)

	result, err := svc.Return(f.ctx, lead.ID, batch.ID, 9)
	require.NoError(t, err)
	assert.Equal(t, 6, result.Effective)
	assert.Equal(t, 0, result.StillHeld)

	avail, err := svc.BatchAvailability(f.ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, avail.WarehouseAvailable)

	_, err = svc.Return(f.ctx, lead.ID, batch.ID, 1)
	assert.ErrorIs(t, err, ErrNothingToReturn)
}

func TestSaleScopedToStallLead(t *testing.T) {
	f, svc := setup(t)
	title := f.title("Truth")
	batch := f.batch(title.ID, 10)
	leadA := f.lead("Asha")
	leadB := f.lead("Bina")

	_, err := svc.Assign(f.ctx, leadA.ID, batch.ID, 5)
	require.NoError(t, err)

	stallB := f.stall(leadB.ID, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))
	_, err = svc.RecordSale(f.ctx, SaleInput{
		StallID:      stallB.ID,
		BatchID:      batch.ID,
		Title:        "Truth",
		Copies:       2,
		PricePerCopy: decimal.NewFromInt(150),
	})
	assert.ErrorIs(t, err, ErrNothingToSell, "a sale must never draw from another lead's holding")

	held, err := svc.VolunteerHolding(f.ctx, batch.ID, leadA.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, held)
}

func TestSaleTitleMismatch(t *testing.T) {
	f, svc := setup(t)
	title := f.title("Truth")
	batch := f.batch(title.ID, 10)
	lead := f.lead("Asha")
	stall := f.stall(lead.ID, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))

	_, err := svc.Assign(f.ctx, lead.ID, batch.ID, 5)
	require.NoError(t, err)

	_, err = svc.RecordSale(f.ctx, SaleInput{
		StallID:      stall.ID,
		BatchID:      batch.ID,
		Title:        "Fear",
		Copies:       1,
		PricePerCopy: decimal.NewFromInt(100),
	})
	assert.ErrorIs(t, err, ErrTitleMismatch)
}

// Full walk through the book-sale flow: procure, assign, sell past the
// holding, close, and verify every derived number along the way.
func TestSaleLifecycle(t *testing.T) {
	f, svc := setup(t)
	title := f.title("Truth")
	batch := f.batch(title.ID, 20)
	lead := f.lead("Asha")
	stallDate := time.Date(2025, 1, 18, 0, 0, 0, 0, time.UTC)
	stall := f.stall(lead.ID, stallDate)

	assignRes, err := svc.Assign(f.ctx, lead.ID, batch.ID, 8)
	require.NoError(t, err)
	assert.Equal(t, 8, assignRes.Effective)

	avail, err := svc.BatchAvailability(f.ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, avail.WarehouseAvailable)

	held, err := svc.VolunteerHolding(f.ctx, batch.ID, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, held)

	saleRes, err := svc.RecordSale(f.ctx, SaleInput{
		StallID:      stall.ID,
		BatchID:      batch.ID,
		Title:        "Truth",
		Copies:       10,
		PricePerCopy: decimal.NewFromInt(150),
	})
	require.NoError(t, err)
	assert.Equal(t, 8, saleRes.Effective, "sale is capped by the lead's holding")
	assert.Equal(t, 2, saleRes.Shortfall)
	assert.True(t, saleRes.Revenue.Equal(decimal.NewFromInt(1200)), "revenue was %s", saleRes.Revenue)
	assert.Equal(t, stallDate, saleRes.Movement.Date, "sale carries the stall's date")

	held, err = svc.VolunteerHolding(f.ctx, batch.ID, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, held)

	avail, err = svc.BatchAvailability(f.ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, avail.Sold)
	assert.Equal(t, 12, avail.WarehouseAvailable)

	// Nothing held any more, so a return must fail.
	_, err = svc.Return(f.ctx, lead.ID, batch.ID, 3)
	assert.ErrorIs(t, err, ErrNothingToReturn)

	// Closing twice is a no-op success; sales afterwards are rejected.
	_, err = f.store.CloseStall(f.ctx, stall.ID)
	require.NoError(t, err)
	closed, err := f.store.CloseStall(f.ctx, stall.ID)
	require.NoError(t, err)
	assert.True(t, closed.Closed)

	_, err = svc.RecordSale(f.ctx, SaleInput{
		StallID:      stall.ID,
		BatchID:      batch.ID,
		Title:        "Truth",
		Copies:       1,
		PricePerCopy: decimal.NewFromInt(150),
	})
	assert.ErrorIs(t, err, ErrStallClosed)
}

func TestWarehouseInventorySkipsEmptyBatches(t *testing.T) {
	f, svc := setup(t)
	truth := f.title("Truth")
	fear := f.title("Fear")
	full := f.batch(truth.ID, 5)
	drained := f.batch(fear.ID, 3)
	lead := f.lead("Asha")

	_, err := svc.Assign(f.ctx, lead.ID, drained.ID, 3)
	require.NoError(t, err)

	rows, err := svc.WarehouseInventory(f.ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, full.ID, rows[0].BatchID)
	assert.Equal(t, "Truth", rows[0].Title)
	assert.Equal(t, 5, rows[0].WarehouseAvailable)
}

func TestVolunteerInventorySkipsDrainedHoldings(t *testing.T) {
	f, svc := setup(t)
	truth := f.title("Truth")
	fear := f.title("Fear")
	b1 := f.batch(truth.ID, 5)
	b2 := f.batch(fear.ID, 5)
	lead := f.lead("Asha")

	_, err := svc.Assign(f.ctx, lead.ID, b1.ID, 4)
	require.NoError(t, err)
	_, err = svc.Assign(f.ctx, lead.ID, b2.ID, 2)
	require.NoError(t, err)
	_, err = svc.Return(f.ctx, lead.ID, b2.ID, 2)
	require.NoError(t, err)

	rows, err := svc.VolunteerInventory(f.ctx, lead.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, b1.ID, rows[0].BatchID)
	assert.Equal(t, 4, rows[0].Held)
}

func TestTitleSummarySumsAcrossBatches(t *testing.T) {
	f, svc := setup(t)
	truth := f.title("Truth")
	b1 := f.batch(truth.ID, 10)
	b2 := f.batch(truth.ID, 6)
	lead := f.lead("Asha")
	stall := f.stall(lead.ID, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))

	_, err := svc.Assign(f.ctx, lead.ID, b1.ID, 4)
	require.NoError(t, err)
	_, err = svc.Assign(f.ctx, lead.ID, b2.ID, 2)
	require.NoError(t, err)
	_, err = svc.RecordSale(f.ctx, SaleInput{
		StallID: stall.ID, BatchID: b1.ID, Title: "Truth",
		Copies: 3, PricePerCopy: decimal.NewFromInt(120),
	})
	require.NoError(t, err)

	rollups, err := svc.TitleSummary(f.ctx)
	require.NoError(t, err)
	require.Len(t, rollups, 1)
	row := rollups[0]
	assert.Equal(t, 16, row.Total)
	assert.Equal(t, 6, row.Assigned)
	assert.Equal(t, 3, row.Sold)
	assert.Equal(t, 10, row.Available)
	assert.True(t, row.Revenue.Equal(decimal.NewFromInt(360)), "revenue was %s", row.Revenue)
}

func TestInvalidUnitsRejectedBeforeAppend(t *testing.T) {
	f, svc := setup(t)
	title := f.title("Truth")
	batch := f.batch(title.ID, 5)
	lead := f.lead("Asha")

	_, err := svc.Assign(f.ctx, lead.ID, batch.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidUnits)
	_, err = svc.Return(f.ctx, lead.ID, batch.ID, -1)
	assert.ErrorIs(t, err, ErrInvalidUnits)

	movs, err := f.store.Movements(f.ctx, store.MovementFilter{})
	require.NoError(t, err)
	assert.Empty(t, movs, "rejected transitions must not reach the ledger")
}
