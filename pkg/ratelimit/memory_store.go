package ratelimit

import (
	"context"
	"slices"
	"sync"
	"time"
)

type slidingWindow struct {
	timestamps []time.Time
}

// MemoryStore implements Store with in-process timestamp windows. Suitable
// for development, tests and single-replica deployments; multi-replica
// deployments should use the Redis store so all replicas share counters.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*slidingWindow
}

// NewMemoryStore creates a new in-memory sliding window store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		windows: make(map[string]*slidingWindow),
	}
}

func (s *MemoryStore) Record(ctx context.Context, key string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok {
		w = &slidingWindow{}
		s.windows[key] = w
	}
	w.timestamps = append(w.timestamps, at)
	return nil
}

func (s *MemoryStore) CountSince(ctx context.Context, key string, since time.Time) (int, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok {
		return 0, time.Time{}, nil
	}

	// Lazy pruning: anything older than the retention horizon can never be
	// counted again by either window.
	horizon := time.Now().Add(-DayWindow)
	w.timestamps = slices.DeleteFunc(w.timestamps, func(ts time.Time) bool {
		return ts.Before(horizon) && ts.Before(since)
	})
	if len(w.timestamps) == 0 {
		delete(s.windows, key)
		return 0, time.Time{}, nil
	}

	count := 0
	var oldest time.Time
	for _, ts := range w.timestamps {
		if ts.Before(since) {
			continue
		}
		count++
		if oldest.IsZero() || ts.Before(oldest) {
			oldest = ts
		}
	}
	return count, oldest, nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.windows, key)
	return nil
}
