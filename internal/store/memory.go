package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"bookstall/internal/model"
)

// Memory is a mutex-guarded in-memory Store. The write lock makes every
// mutation, including the version-checked movement append, atomic with
// respect to other writers.
type Memory struct {
	mu         sync.RWMutex
	titles     map[uuid.UUID]model.Title
	batches    map[uuid.UUID]model.Batch
	volunteers map[uuid.UUID]model.Volunteer
	stalls     map[uuid.UUID]model.Stall
	movements  []model.Movement
	perBatch   map[uuid.UUID]int
	seq        int64
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		titles:     make(map[uuid.UUID]model.Title),
		batches:    make(map[uuid.UUID]model.Batch),
		volunteers: make(map[uuid.UUID]model.Volunteer),
		stalls:     make(map[uuid.UUID]model.Stall),
		perBatch:   make(map[uuid.UUID]int),
	}
}

var _ Store = (*Memory)(nil)

func (s *Memory) CreateTitle(_ context.Context, t model.Title) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.titles {
		if strings.EqualFold(existing.Name, t.Name) {
			return ErrDuplicate
		}
	}
	s.titles[t.ID] = t
	return nil
}

func (s *Memory) GetTitle(_ context.Context, id uuid.UUID) (model.Title, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.titles[id]
	if !ok {
		return model.Title{}, ErrNotFound
	}
	return t, nil
}

func (s *Memory) GetTitleByName(_ context.Context, name string) (model.Title, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.titles {
		if strings.EqualFold(t.Name, name) {
			return t, nil
		}
	}
	return model.Title{}, ErrNotFound
}

func (s *Memory) ListTitles(_ context.Context) ([]model.Title, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Title, 0, len(s.titles))
	for _, t := range s.titles {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Memory) CreateBatch(_ context.Context, b model.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.titles[b.TitleID]; !ok {
		return ErrNotFound
	}
	s.batches[b.ID] = b
	return nil
}

func (s *Memory) GetBatch(_ context.Context, id uuid.UUID) (model.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.batches[id]
	if !ok {
		return model.Batch{}, ErrNotFound
	}
	return b, nil
}

func (s *Memory) AddCopies(_ context.Context, batchID uuid.UUID, extra int) (model.Batch, error) {
	if extra <= 0 {
		return model.Batch{}, ErrInvalidQuantity
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.batches[batchID]
	if !ok {
		return model.Batch{}, ErrNotFound
	}
	b.CopiesTotal += extra
	s.batches[batchID] = b
	return b, nil
}

func (s *Memory) ListBatches(_ context.Context) ([]model.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Batch, 0, len(s.batches))
	for _, b := range s.batches {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntryDate.Before(out[j].EntryDate) })
	return out, nil
}

func (s *Memory) ListBatchesForTitle(_ context.Context, titleID uuid.UUID) ([]model.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Batch
	for _, b := range s.batches {
		if b.TitleID == titleID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntryDate.Before(out[j].EntryDate) })
	return out, nil
}

func (s *Memory) CreateVolunteer(_ context.Context, v model.Volunteer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volunteers[v.ID] = v
	return nil
}

func (s *Memory) GetVolunteer(_ context.Context, id uuid.UUID) (model.Volunteer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.volunteers[id]
	if !ok {
		return model.Volunteer{}, ErrNotFound
	}
	return v, nil
}

func (s *Memory) PromoteLead(_ context.Context, id uuid.UUID) (model.Volunteer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.volunteers[id]
	if !ok {
		return model.Volunteer{}, ErrNotFound
	}
	v.IsLead = true
	s.volunteers[id] = v
	return v, nil
}

func (s *Memory) ListVolunteers(_ context.Context, leadsOnly bool) ([]model.Volunteer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Volunteer
	for _, v := range s.volunteers {
		if leadsOnly && !v.IsLead {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Memory) CreateStall(_ context.Context, st model.Stall) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st.VolunteerIDs = append([]uuid.UUID(nil), st.VolunteerIDs...)
	s.stalls[st.ID] = st
	return nil
}

func (s *Memory) GetStall(_ context.Context, id uuid.UUID) (model.Stall, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.stalls[id]
	if !ok {
		return model.Stall{}, ErrNotFound
	}
	st.VolunteerIDs = append([]uuid.UUID(nil), st.VolunteerIDs...)
	return st, nil
}

func (s *Memory) CloseStall(_ context.Context, id uuid.UUID) (model.Stall, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stalls[id]
	if !ok {
		return model.Stall{}, ErrNotFound
	}
	st.Closed = true
	s.stalls[id] = st
	return st, nil
}

func (s *Memory) ListStalls(_ context.Context) ([]model.Stall, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Stall, 0, len(s.stalls))
	for _, st := range s.stalls {
		st.VolunteerIDs = append([]uuid.UUID(nil), st.VolunteerIDs...)
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *Memory) BatchVersion(_ context.Context, batchID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.batches[batchID]; !ok {
		return 0, ErrNotFound
	}
	return s.perBatch[batchID], nil
}

func (s *Memory) AppendMovement(_ context.Context, m model.Movement, expectedVersion int) (model.Movement, error) {
	if m.Copies <= 0 {
		return model.Movement{}, ErrInvalidQuantity
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.batches[m.BatchID]; !ok {
		return model.Movement{}, ErrNotFound
	}
	if s.perBatch[m.BatchID] != expectedVersion {
		return model.Movement{}, ErrVersionConflict
	}
	s.seq++
	m.ID = s.seq
	s.movements = append(s.movements, m)
	s.perBatch[m.BatchID]++
	return m, nil
}

func (s *Memory) Movements(_ context.Context, f MovementFilter) ([]model.Movement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Movement
	for _, m := range s.movements {
		if f.Matches(m) {
			out = append(out, m)
		}
	}
	return out, nil
}
