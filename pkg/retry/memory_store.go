package retry

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStore implements Store in memory. Suitable for development and
// testing; entries do not survive a restart.
type MemoryStore struct {
	mu          sync.Mutex
	records     map[string]*Record
	deadLetters []DeadLetter
}

// NewMemoryStore creates a new in-memory retry store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*Record),
	}
}

func (s *MemoryStore) CreateRecord(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[rec.ID.String()]; exists {
		return ErrRecordExists
	}

	cp := *rec
	s.records[rec.ID.String()] = &cp
	return nil
}

func (s *MemoryStore) UpdateRecord(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[rec.ID.String()]; !exists {
		return ErrRecordNotFound
	}

	cp := *rec
	s.records[rec.ID.String()] = &cp
	return nil
}

func (s *MemoryStore) ClaimDue(ctx context.Context, now time.Time, limit int, lease time.Duration) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []*Record
	for _, rec := range s.records {
		if rec.Status == StatusPending && !rec.NextRetryAt.After(now) {
			due = append(due, rec)
		}
	}

	slices.SortFunc(due, func(a, b *Record) int {
		return a.NextRetryAt.Compare(b.NextRetryAt)
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}

	claimed := make([]Record, 0, len(due))
	for _, rec := range due {
		// Lease: push the due time forward so a concurrent sweep instance
		// skips this record while we work on it
		rec.NextRetryAt = now.Add(lease)
		claimed = append(claimed, *rec)
	}
	return claimed, nil
}

func (s *MemoryStore) AddDeadLetter(ctx context.Context, dl DeadLetter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deadLetters = append(s.deadLetters, dl)
	return nil
}

func (s *MemoryStore) ListDeadLetters(ctx context.Context, limit int) ([]DeadLetter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]DeadLetter, len(s.deadLetters))
	copy(out, s.deadLetters)
	slices.SortFunc(out, func(a, b DeadLetter) int {
		return b.FailedAt.Compare(a.FailedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
