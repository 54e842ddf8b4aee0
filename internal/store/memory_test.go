package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookstall/internal/model"
)

func seedBatch(t *testing.T, s *Memory, copies int) model.Batch {
	t.Helper()
	ctx := context.Background()
	title := model.Title{ID: uuid.New(), Name: uuid.NewString(), Category: "Unknown"}
	require.NoError(t, s.CreateTitle(ctx, title))
	b := model.Batch{
		ID:          uuid.New(),
		TitleID:     title.ID,
		MRP:         decimal.NewFromInt(100),
		EntryDate:   time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		CopiesTotal: copies,
	}
	require.NoError(t, s.CreateBatch(ctx, b))
	return b
}

func movement(batchID, volID uuid.UUID, typ model.MovementType, copies int) model.Movement {
	return model.Movement{
		BatchID:      batchID,
		VolunteerID:  volID,
		Type:         typ,
		Copies:       copies,
		Date:         time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		PricePerCopy: decimal.NewFromInt(100),
	}
}

func TestAppendMovementAssignsMonotonicIDs(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	batch := seedBatch(t, s, 10)
	vol := uuid.New()

	first, err := s.AppendMovement(ctx, movement(batch.ID, vol, model.MovementAssign, 2), 0)
	require.NoError(t, err)
	second, err := s.AppendMovement(ctx, movement(batch.ID, vol, model.MovementAssign, 3), 1)
	require.NoError(t, err)

	assert.Greater(t, second.ID, first.ID)

	version, err := s.BatchVersion(ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, version)
}

func TestAppendMovementRejectsStaleVersion(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	batch := seedBatch(t, s, 10)
	vol := uuid.New()

	_, err := s.AppendMovement(ctx, movement(batch.ID, vol, model.MovementAssign, 2), 0)
	require.NoError(t, err)

	// A writer that validated against the old ledger must not get through.
	_, err = s.AppendMovement(ctx, movement(batch.ID, vol, model.MovementAssign, 2), 0)
	assert.ErrorIs(t, err, ErrVersionConflict)
}

func TestAppendMovementValidation(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	batch := seedBatch(t, s, 10)
	vol := uuid.New()

	_, err := s.AppendMovement(ctx, movement(batch.ID, vol, model.MovementAssign, 0), 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = s.AppendMovement(ctx, movement(uuid.New(), vol, model.MovementAssign, 1), 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMovementFilter(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	b1 := seedBatch(t, s, 10)
	b2 := seedBatch(t, s, 10)
	volA, volB := uuid.New(), uuid.New()

	_, err := s.AppendMovement(ctx, movement(b1.ID, volA, model.MovementAssign, 2), 0)
	require.NoError(t, err)
	_, err = s.AppendMovement(ctx, movement(b1.ID, volB, model.MovementAssign, 3), 1)
	require.NoError(t, err)
	sold := movement(b2.ID, volA, model.MovementSold, 1)
	stallID := uuid.New()
	sold.StallID = uuid.NullUUID{UUID: stallID, Valid: true}
	_, err = s.AppendMovement(ctx, sold, 0)
	require.NoError(t, err)

	byBatch, err := s.Movements(ctx, MovementFilter{BatchID: &b1.ID})
	require.NoError(t, err)
	assert.Len(t, byBatch, 2)

	byVolunteer, err := s.Movements(ctx, MovementFilter{BatchID: &b1.ID, VolunteerID: &volA})
	require.NoError(t, err)
	require.Len(t, byVolunteer, 1)
	assert.Equal(t, 2, byVolunteer[0].Copies)

	soldType := model.MovementSold
	byStall, err := s.Movements(ctx, MovementFilter{StallID: &stallID, Type: &soldType})
	require.NoError(t, err)
	require.Len(t, byStall, 1)
	assert.Equal(t, b2.ID, byStall[0].BatchID)

	all, err := s.Movements(ctx, MovementFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestTitleNamesAreUniqueIgnoringCase(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.CreateTitle(ctx, model.Title{ID: uuid.New(), Name: "Truth"}))
	err := s.CreateTitle(ctx, model.Title{ID: uuid.New(), Name: "truth"})
	assert.ErrorIs(t, err, ErrDuplicate)

	got, err := s.GetTitleByName(ctx, "TRUTH")
	require.NoError(t, err)
	assert.Equal(t, "Truth", got.Name)
}

func TestAddCopies(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	batch := seedBatch(t, s, 5)

	updated, err := s.AddCopies(ctx, batch.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 12, updated.CopiesTotal)

	_, err = s.AddCopies(ctx, batch.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = s.AddCopies(ctx, uuid.New(), 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCloseStallIsIdempotent(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	st := model.Stall{ID: uuid.New(), Location: "Jayanagar", Date: time.Now(), LeadID: uuid.New()}
	require.NoError(t, s.CreateStall(ctx, st))

	closed, err := s.CloseStall(ctx, st.ID)
	require.NoError(t, err)
	assert.True(t, closed.Closed)

	again, err := s.CloseStall(ctx, st.ID)
	require.NoError(t, err)
	assert.True(t, again.Closed)

	_, err = s.CloseStall(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStallAttendanceListIsCopied(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	st := model.Stall{ID: uuid.New(), Location: "Jayanagar", Date: time.Now(), LeadID: uuid.New(), VolunteerIDs: ids}
	require.NoError(t, s.CreateStall(ctx, st))

	// Mutating the caller's slice must not leak into the store.
	ids[0] = uuid.New()

	got, err := s.GetStall(ctx, st.ID)
	require.NoError(t, err)
	assert.NotEqual(t, ids[0], got.VolunteerIDs[0])
}

func BenchmarkAppendMovement(b *testing.B) {
	s := NewMemory()
	ctx := context.Background()
	title := model.Title{ID: uuid.New(), Name: "Bench", Category: "Unknown"}
	if err := s.CreateTitle(ctx, title); err != nil {
		b.Fatal(err)
	}
	batch := model.Batch{
		ID:          uuid.New(),
		TitleID:     title.ID,
		MRP:         decimal.NewFromInt(100),
		EntryDate:   time.Now(),
		CopiesTotal: 1,
	}
	if err := s.CreateBatch(ctx, batch); err != nil {
		b.Fatal(err)
	}
	vol := uuid.New()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.AppendMovement(ctx, movement(batch.ID, vol, model.MovementAssign, 1), i); err != nil {
			b.Fatal(err)
		}
	}
}

func TestListVolunteersLeadsOnly(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	require.NoError(t, s.CreateVolunteer(ctx, model.Volunteer{ID: uuid.New(), Name: "Asha", IsLead: true}))
	require.NoError(t, s.CreateVolunteer(ctx, model.Volunteer{ID: uuid.New(), Name: "Ravi"}))

	leads, err := s.ListVolunteers(ctx, true)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "Asha", leads[0].Name)

	all, err := s.ListVolunteers(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
