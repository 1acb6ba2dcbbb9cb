package deliverylog

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage is an in-memory implementation of Storage. Suitable for
// development and testing.
type MemoryStorage struct {
	mu       sync.RWMutex
	attempts []Attempt
}

// NewMemoryStorage creates a new in-memory delivery log storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (s *MemoryStorage) Append(ctx context.Context, attempt Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if attempt.ID == uuid.Nil {
		attempt.ID = uuid.New()
	}
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now()
	}
	s.attempts = append(s.attempts, attempt)
	return nil
}

func (s *MemoryStorage) UpdateStatus(ctx context.Context, userID, notificationID string, status Status, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Most recent entry for the key wins
	for i := len(s.attempts) - 1; i >= 0; i-- {
		a := &s.attempts[i]
		if a.UserID != userID || a.NotificationID != notificationID {
			continue
		}
		a.Status = status
		ts := at
		switch status {
		case StatusDelivered:
			a.DeliveredAt = &ts
		case StatusOpened:
			a.OpenedAt = &ts
		case StatusClicked:
			a.ClickedAt = &ts
		}
		return nil
	}
	return ErrAttemptNotFound
}

func (s *MemoryStorage) List(ctx context.Context, filter Filter) ([]Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Attempt
	for _, a := range s.attempts {
		if filter.UserID != "" && a.UserID != filter.UserID {
			continue
		}
		if filter.Channel != "" && a.Channel != filter.Channel {
			continue
		}
		if filter.Type != "" && a.Type != filter.Type {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.Since != nil && a.CreatedAt.Before(*filter.Since) {
			continue
		}
		out = append(out, a)
	}

	slices.SortFunc(out, func(a, b Attempt) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *MemoryStorage) CountSentSince(ctx context.Context, userID string, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, a := range s.attempts {
		if a.UserID == userID && a.Status.WasSent() && !a.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}
