package retry

import (
	"context"
	"time"
)

// Store persists retry records and dead letters.
type Store interface {
	// CreateRecord stores a new retry record.
	CreateRecord(ctx context.Context, rec *Record) error

	// UpdateRecord replaces a stored record by ID.
	UpdateRecord(ctx context.Context, rec *Record) error

	// ClaimDue returns up to limit pending records with NextRetryAt <= now,
	// ordered ascending by NextRetryAt. Claiming leases each returned record
	// by pushing its NextRetryAt forward by lease, so concurrent sweep
	// instances do not process the same record twice.
	ClaimDue(ctx context.Context, now time.Time, limit int, lease time.Duration) ([]Record, error)

	// AddDeadLetter stores a dead letter entry.
	AddDeadLetter(ctx context.Context, dl DeadLetter) error

	// ListDeadLetters returns up to limit dead letters, newest first.
	// limit <= 0 returns all.
	ListDeadLetters(ctx context.Context, limit int) ([]DeadLetter, error)
}
