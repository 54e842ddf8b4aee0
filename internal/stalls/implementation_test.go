package stalls

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
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
}

func setup(t *testing.T) (*fixture, Service) {
	st := store.NewMemory()
	return &fixture{t: t, ctx: context.Background(), store: st}, NewService(st)
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

func TestCreateStall(t *testing.T) {
	f, svc := setup(t)
	lead := f.lead("Asha")
	ravi := f.volunteer("Ravi")
	date := time.Date(2025, 1, 18, 0, 0, 0, 0, time.UTC)

	st, err := svc.Create(f.ctx, CreateInput{
		Location:     "  Koramangala  ",
		Date:         date,
		LeadID:       lead.ID,
		VolunteerIDs: []uuid.UUID{ravi.ID, ravi.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "Koramangala", st.Location)
	assert.Equal(t, date, st.Date)
	assert.False(t, st.Closed)
	assert.Equal(t, []uuid.UUID{ravi.ID}, st.VolunteerIDs, "attendance list is deduplicated")
}

func TestCreateStallRejectsNonLead(t *testing.T) {
	f, svc := setup(t)
	ravi := f.volunteer("Ravi")

	_, err := svc.Create(f.ctx, CreateInput{Location: "Koramangala", LeadID: ravi.ID})
	assert.ErrorIs(t, err, volunteers.ErrNotLead)
}

func TestCreateStallValidation(t *testing.T) {
	f, svc := setup(t)
	lead := f.lead("Asha")

	_, err := svc.Create(f.ctx, CreateInput{Location: "   ", LeadID: lead.ID})
	assert.ErrorIs(t, err, ErrMissingLocation)

	_, err = svc.Create(f.ctx, CreateInput{Location: "Koramangala", LeadID: uuid.New()})
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = svc.Create(f.ctx, CreateInput{
		Location:     "Koramangala",
		LeadID:       lead.ID,
		VolunteerIDs: []uuid.UUID{uuid.New()},
	})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateStallDefaultsDate(t *testing.T) {
	f, svc := setup(t)
	lead := f.lead("Asha")

	st, err := svc.Create(f.ctx, CreateInput{Location: "Koramangala", LeadID: lead.ID})
	require.NoError(t, err)
	assert.False(t, st.Date.IsZero())
}

func TestCloseStallIdempotent(t *testing.T) {
	f, svc := setup(t)
	lead := f.lead("Asha")

	st, err := svc.Create(f.ctx, CreateInput{Location: "Koramangala", LeadID: lead.ID})
	require.NoError(t, err)

	closed, err := svc.Close(f.ctx, st.ID)
	require.NoError(t, err)
	assert.True(t, closed.Closed)

	again, err := svc.Close(f.ctx, st.ID)
	require.NoError(t, err)
	assert.True(t, again.Closed)
}

func TestMonthlyListGroupsByMonth(t *testing.T) {
	f, svc := setup(t)
	lead := f.lead("Asha")

	mk := func(loc string, date time.Time) {
		_, err := svc.Create(f.ctx, CreateInput{Location: loc, Date: date, LeadID: lead.ID})
		require.NoError(t, err)
	}
	mk("Koramangala", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	mk("Indiranagar", time.Date(2025, 1, 18, 0, 0, 0, 0, time.UTC))
	mk("Jayanagar", time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC))

	groups, err := svc.MonthlyList(f.ctx)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	assert.Equal(t, "2025-01", groups[0].Month)
	require.Len(t, groups[0].Stalls, 2)
	assert.Equal(t, "Jayanagar", groups[0].Stalls[0].Location)
	assert.Equal(t, "Indiranagar", groups[0].Stalls[1].Location)

	assert.Equal(t, "2025-02", groups[1].Month)
	require.Len(t, groups[1].Stalls, 1)
	assert.Equal(t, "Koramangala", groups[1].Stalls[0].Location)
}
