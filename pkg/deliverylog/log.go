package deliverylog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/notifykit/notifykit/pkg/logger"
	"github.com/notifykit/notifykit/pkg/notification"
)

// Log records the lifecycle of every attempted send and derives aggregate
// statistics from the stored attempts.
type Log struct {
	storage Storage
	logger  *slog.Logger
}

// LogOption configures a Log.
type LogOption func(*Log)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) LogOption {
	return func(dl *Log) {
		if l != nil {
			dl.logger = l
		}
	}
}

// New creates a delivery log over the given storage.
func New(storage Storage, opts ...LogOption) (*Log, error) {
	if storage == nil {
		return nil, ErrStorageRequired
	}

	dl := &Log{
		storage: storage,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(dl)
	}

	return dl, nil
}

// Record appends a delivery attempt. Terminal failures are logged with
// enough structure to reconstruct root cause.
func (dl *Log) Record(ctx context.Context, attempt Attempt) error {
	if !attempt.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, attempt.Status)
	}

	if err := dl.storage.Append(ctx, attempt); err != nil {
		return fmt.Errorf("append delivery attempt: %w", err)
	}

	if attempt.Status == StatusFailed || attempt.Status == StatusBounced {
		dl.logger.LogAttrs(ctx, slog.LevelWarn, "delivery attempt failed",
			logger.UserID(attempt.UserID),
			logger.NotificationType(attempt.Type),
			logger.Channel(attempt.Channel),
			slog.String("status", string(attempt.Status)),
			slog.String("error", attempt.Error),
			logger.RetryCount(attempt.RetryCount),
			logger.ProcessingTime(attempt.ProcessingTime),
		)
	}
	return nil
}

// MarkDelivered transitions an attempt to delivered.
func (dl *Log) MarkDelivered(ctx context.Context, userID, notificationID string) error {
	return dl.storage.UpdateStatus(ctx, userID, notificationID, StatusDelivered, time.Now())
}

// MarkOpened transitions an attempt to opened.
func (dl *Log) MarkOpened(ctx context.Context, userID, notificationID string) error {
	return dl.storage.UpdateStatus(ctx, userID, notificationID, StatusOpened, time.Now())
}

// MarkClicked transitions an attempt to clicked.
func (dl *Log) MarkClicked(ctx context.Context, userID, notificationID string) error {
	return dl.storage.UpdateStatus(ctx, userID, notificationID, StatusClicked, time.Now())
}

// MarkBounced transitions an attempt to bounced.
func (dl *Log) MarkBounced(ctx context.Context, userID, notificationID string) error {
	return dl.storage.UpdateStatus(ctx, userID, notificationID, StatusBounced, time.Now())
}

// List returns attempts matching the filter, newest first.
func (dl *Log) List(ctx context.Context, filter Filter) ([]Attempt, error) {
	return dl.storage.List(ctx, filter)
}

// SentSince returns how many notifications went out to a user at or after
// since. Attempts keep counting after they transition to delivered, opened
// or clicked; only failures are excluded. Used by send-time planning to
// enforce frequency caps.
func (dl *Log) SentSince(ctx context.Context, userID string, since time.Time) (int, error) {
	return dl.storage.CountSentSince(ctx, userID, since)
}

// Stats aggregates delivery outcomes over attempts matching the filter.
func (dl *Log) Stats(ctx context.Context, filter Filter) (*Stats, error) {
	filter.Limit = 0
	attempts, err := dl.storage.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list delivery attempts: %w", err)
	}

	stats := &Stats{
		Total:     len(attempts),
		ByStatus:  make(map[Status]int),
		ByChannel: make(map[notification.Channel]int),
	}
	for _, a := range attempts {
		stats.ByStatus[a.Status]++
		stats.ByChannel[a.Channel]++
	}

	// Opened and clicked imply delivered; count them into the funnel
	delivered := stats.ByStatus[StatusDelivered] + stats.ByStatus[StatusOpened] + stats.ByStatus[StatusClicked]
	opened := stats.ByStatus[StatusOpened] + stats.ByStatus[StatusClicked]
	failed := stats.ByStatus[StatusFailed] + stats.ByStatus[StatusBounced]

	if stats.Total > 0 {
		stats.DeliveryRate = float64(delivered) / float64(stats.Total)
		stats.OpenRate = float64(opened) / float64(stats.Total)
		stats.ClickRate = float64(stats.ByStatus[StatusClicked]) / float64(stats.Total)
		stats.FailureRate = float64(failed) / float64(stats.Total)
	}
	return stats, nil
}

// EngagementScore derives a [0,1] measure of a user's open/click behavior
// over the trailing period. Score = 0.6*open rate + 0.4*click rate, so a
// user who clicks everything scores 1.0.
func (dl *Log) EngagementScore(ctx context.Context, userID string, since time.Time) (float64, error) {
	stats, err := dl.Stats(ctx, Filter{UserID: userID, Since: &since})
	if err != nil {
		return 0, err
	}
	if stats.Total == 0 {
		// No history: assume average engagement
		return 0.5, nil
	}
	score := 0.6*stats.OpenRate + 0.4*stats.ClickRate
	if score > 1 {
		score = 1
	}
	return score, nil
}
