package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Storage persists scheduled notifications.
type Storage interface {
	// Create stores a new scheduled notification in pending state.
	Create(ctx context.Context, s Scheduled) error

	// Get returns a scheduled notification by ID.
	Get(ctx context.Context, id uuid.UUID) (Scheduled, error)

	// Cancel transitions a pending notification owned by userID to
	// cancelled. It returns ErrNotPending when the notification has left
	// the pending state, and ErrNotFound when it does not exist or belongs
	// to another user.
	Cancel(ctx context.Context, id uuid.UUID, userID string) error

	// ClaimDue atomically transitions up to limit pending notifications
	// with scheduled_at <= now into processing state and returns them
	// ordered by scheduled_at ascending. Concurrent callers never receive
	// the same notification. A claim expires after lease: processing rows
	// whose claim is older than the lease are handed out again, so a sweep
	// that crashed mid-batch does not strand its notifications.
	ClaimDue(ctx context.Context, now time.Time, limit int, lease time.Duration) ([]Scheduled, error)

	// MarkSent transitions a claimed notification to sent.
	MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error

	// MarkFailed transitions a claimed notification to failed, recording
	// the delivery error.
	MarkFailed(ctx context.Context, id uuid.UUID, at time.Time, cause string) error
}
