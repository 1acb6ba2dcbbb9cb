package template

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory implementation of Store. Suitable for
// development and testing.
type MemoryStore struct {
	mu        sync.RWMutex
	templates map[string]Template
}

// NewMemoryStore creates a new in-memory template store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		templates: make(map[string]Template),
	}
}

func (s *MemoryStore) Get(ctx context.Context, key Key) (*Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tmpl, ok := s.templates[key.cacheKey()]
	if !ok {
		return nil, ErrNotFound
	}
	cp := tmpl
	return &cp, nil
}

func (s *MemoryStore) Upsert(ctx context.Context, tmpl Template) error {
	if tmpl.Slug == "" {
		return ErrMissingSlug
	}
	if !tmpl.Channel.Valid() {
		return ErrInvalidChannel
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmpl.UpdatedAt = time.Now()
	key := Key{Slug: tmpl.Slug, Channel: tmpl.Channel, Language: tmpl.Language, StoreID: tmpl.StoreID}
	s.templates[key.cacheKey()] = tmpl
	return nil
}
