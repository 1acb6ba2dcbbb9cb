package schedule

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage is an in-memory Storage implementation for development and
// testing.
type MemoryStorage struct {
	mu    sync.Mutex
	items map[uuid.UUID]*Scheduled
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[uuid.UUID]*Scheduled)}
}

func (m *MemoryStorage) Create(_ context.Context, s Scheduled) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := s
	m.items[s.ID] = &cp
	return nil
}

func (m *MemoryStorage) Get(_ context.Context, id uuid.UUID) (Scheduled, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.items[id]
	if !ok {
		return Scheduled{}, ErrNotFound
	}
	return *s, nil
}

func (m *MemoryStorage) Cancel(_ context.Context, id uuid.UUID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.items[id]
	if !ok || s.UserID != userID {
		return ErrNotFound
	}
	if s.Status != StatusPending {
		return ErrNotPending
	}
	s.Status = StatusCancelled
	return nil
}

func (m *MemoryStorage) ClaimDue(_ context.Context, now time.Time, limit int, lease time.Duration) ([]Scheduled, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var due []*Scheduled
	for _, s := range m.items {
		switch {
		case s.Status == StatusPending && !s.ScheduledAt.After(now):
			due = append(due, s)
		case s.Status == StatusProcessing && s.ClaimedAt != nil && !s.ClaimedAt.Add(lease).After(now):
			// Stale claim from a sweep that never finished.
			due = append(due, s)
		}
	}
	slices.SortFunc(due, func(a, b *Scheduled) int {
		return a.ScheduledAt.Compare(b.ScheduledAt)
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}

	claimed := make([]Scheduled, 0, len(due))
	for _, s := range due {
		s.Status = StatusProcessing
		at := now
		s.ClaimedAt = &at
		claimed = append(claimed, *s)
	}
	return claimed, nil
}

func (m *MemoryStorage) MarkSent(_ context.Context, id uuid.UUID, at time.Time) error {
	return m.finish(id, StatusSent, at, "")
}

func (m *MemoryStorage) MarkFailed(_ context.Context, id uuid.UUID, at time.Time, cause string) error {
	return m.finish(id, StatusFailed, at, cause)
}

func (m *MemoryStorage) finish(id uuid.UUID, status Status, at time.Time, cause string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.items[id]
	if !ok {
		return ErrNotFound
	}
	s.Status = status
	s.Error = cause
	s.ProcessedAt = &at
	return nil
}
