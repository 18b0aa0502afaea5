// Package memory holds entries and users in process memory.
package memory

import (
	"context"
	"slices"
	"sync"

	"timeclock/internal/domain"
	"timeclock/internal/ports"
	"timeclock/internal/query"
)

// Store keeps entries in a map guarded by a mutex.
type Store struct {
	mu      sync.RWMutex
	entries map[string]domain.TimeEntry
}

func NewStore() *Store {
	return &Store{entries: make(map[string]domain.TimeEntry)}
}

func (s *Store) Create(ctx context.Context, e domain.TimeEntry) (domain.TimeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[e.ID]; ok {
		return domain.TimeEntry{}, domain.ErrConflict
	}
	if e.IsOpen() {
		for _, other := range s.entries {
			if other.IsOpen() && other.Owner == e.Owner && other.Date == e.Date {
				return domain.TimeEntry{}, domain.ErrAlreadyOpen
			}
		}
	}
	e.Version = 1
	s.entries[e.ID] = clone(e)
	return clone(e), nil
}

func (s *Store) Update(ctx context.Context, e domain.TimeEntry, expectedVersion int64) (domain.TimeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.entries[e.ID]
	if !ok {
		return domain.TimeEntry{}, domain.ErrNotFound
	}
	if cur.Version != expectedVersion {
		return domain.TimeEntry{}, domain.ErrConflict
	}
	e.Version = expectedVersion + 1
	s.entries[e.ID] = clone(e)
	return clone(e), nil
}

func (s *Store) Get(ctx context.Context, id string) (domain.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return domain.TimeEntry{}, domain.ErrNotFound
	}
	return clone(e), nil
}

func (s *Store) Current(ctx context.Context, owner string) (domain.TimeEntry, error) {
	open, err := s.List(ctx, ports.EntryFilter{Owner: owner, OpenOnly: true})
	if err != nil {
		return domain.TimeEntry{}, err
	}
	if len(open) == 0 {
		return domain.TimeEntry{}, domain.ErrNoOpenEntry
	}
	return open[0], nil
}

func (s *Store) List(ctx context.Context, f ports.EntryFilter) ([]domain.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.TimeEntry, 0, len(s.entries))
	for _, e := range s.entries {
		if matches(e, f) {
			out = append(out, clone(e))
		}
	}
	query.Sort(out, query.NewestFirst)
	return out, nil
}

func matches(e domain.TimeEntry, f ports.EntryFilter) bool {
	switch {
	case f.Owner != "" && e.Owner != f.Owner:
		return false
	case f.Status != "" && e.Status != f.Status:
		return false
	case f.OpenOnly && !e.IsOpen():
		return false
	case f.DateFrom != "" && e.Date < f.DateFrom:
		return false
	case f.DateTo != "" && e.Date > f.DateTo:
		return false
	case !f.ClockInFrom.IsZero() && e.ClockIn.Before(f.ClockInFrom):
		return false
	case !f.ClockInTo.IsZero() && e.ClockIn.After(f.ClockInTo):
		return false
	}
	return true
}

func clone(e domain.TimeEntry) domain.TimeEntry {
	e.Tasks = slices.Clone(e.Tasks)
	if e.ClockOut != nil {
		t := *e.ClockOut
		e.ClockOut = &t
	}
	if e.BreakStartedAt != nil {
		t := *e.BreakStartedAt
		e.BreakStartedAt = &t
	}
	if e.TotalHours != nil {
		h := *e.TotalHours
		e.TotalHours = &h
	}
	return e
}
