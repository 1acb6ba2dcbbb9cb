package deliverylog

import (
	"context"
	"time"
)

// Storage persists delivery attempts.
type Storage interface {
	// Append stores a new attempt.
	Append(ctx context.Context, attempt Attempt) error

	// UpdateStatus transitions the most recent attempt for
	// (userID, notificationID) to the given status, stamping the matching
	// transition timestamp.
	UpdateStatus(ctx context.Context, userID, notificationID string, status Status, at time.Time) error

	// List returns attempts matching the filter, newest first.
	List(ctx context.Context, filter Filter) ([]Attempt, error)

	// CountSentSince returns the number of attempts for a user created at or
	// after since that went out (any status for which WasSent holds).
	CountSentSince(ctx context.Context, userID string, since time.Time) (int, error)
}
