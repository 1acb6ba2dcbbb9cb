package notification

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStorage is an in-memory implementation of the Storage interface.
// Suitable for development and testing.
type MemoryStorage struct {
	notifications map[string][]Notification // userID -> notifications
	mu            sync.RWMutex
}

// NewMemoryStorage creates a new in-memory notification storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		notifications: make(map[string][]Notification),
	}
}

func (s *MemoryStorage) Create(ctx context.Context, notif Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if notif.ID == "" || notif.UserID == "" {
		return ErrMissingUserID
	}

	if notif.CreatedAt.IsZero() {
		notif.CreatedAt = time.Now()
	}

	s.notifications[notif.UserID] = append(s.notifications[notif.UserID], notif)
	return nil
}

func (s *MemoryStorage) Get(ctx context.Context, userID, notifID string) (*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, n := range s.notifications[userID] {
		if n.ID == notifID {
			// Return a copy to prevent external mutation of stored data
			notif := n
			return &notif, nil
		}
	}

	return nil, ErrNotFound
}

func (s *MemoryStorage) List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var filtered []Notification
	for _, n := range s.notifications[userID] {
		if opts.OnlyUnread && n.Read {
			continue
		}
		if len(opts.Types) > 0 && !slices.Contains(opts.Types, n.Type) {
			continue
		}
		if len(opts.Priorities) > 0 && !slices.Contains(opts.Priorities, n.Priority) {
			continue
		}
		if opts.Since != nil && n.CreatedAt.Before(*opts.Since) {
			continue
		}
		filtered = append(filtered, n)
	}

	// Newest first
	slices.SortFunc(filtered, func(a, b Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	if opts.Offset > 0 {
		if opts.Offset >= len(filtered) {
			return []Notification{}, nil
		}
		filtered = filtered[opts.Offset:]
	}
	if opts.Limit > 0 && len(filtered) > opts.Limit {
		filtered = filtered[:opts.Limit]
	}

	if filtered == nil {
		filtered = []Notification{}
	}
	return filtered, nil
}

func (s *MemoryStorage) MarkRead(ctx context.Context, userID string, notifIDs ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for i := range s.notifications[userID] {
		n := &s.notifications[userID][i]
		if !slices.Contains(notifIDs, n.ID) || n.Read {
			continue
		}
		n.Read = true
		readAt := now
		n.ReadAt = &readAt
	}
	return nil
}

func (s *MemoryStorage) Delete(ctx context.Context, userID string, notifIDs ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notifications[userID] = slices.DeleteFunc(s.notifications[userID], func(n Notification) bool {
		return slices.Contains(notifIDs, n.ID)
	})
	return nil
}

func (s *MemoryStorage) CountUnread(ctx context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.notifications[userID] {
		if !n.Read {
			count++
		}
	}
	return count, nil
}
