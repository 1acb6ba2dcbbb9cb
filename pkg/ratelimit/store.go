package ratelimit

import (
	"context"
	"time"
)

// Store defines the storage backend for sliding-window send counters.
// Implementations must be safe for concurrent use; Record and CountSince for
// the same key may be called from concurrent channel sends.
type Store interface {
	// Record appends a send timestamp under the given key.
	Record(ctx context.Context, key string, at time.Time) error

	// CountSince returns the number of recorded timestamps at or after
	// since, and the oldest such timestamp. The returned oldest value is
	// the zero time when the window is empty. Implementations may prune
	// timestamps older than the retention horizon (24h) as a side effect.
	CountSince(ctx context.Context, key string, since time.Time) (count int, oldest time.Time, err error)

	// Delete removes all recorded timestamps for the given key.
	Delete(ctx context.Context, key string) error
}
