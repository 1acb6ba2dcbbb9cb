package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/notifykit/notifykit/pkg/dispatch"
	"github.com/notifykit/notifykit/pkg/logger"
	"github.com/notifykit/notifykit/pkg/notification"
)

// Dispatcher delivers a notification to its channels. Satisfied by
// *dispatch.Orchestrator.
type Dispatcher interface {
	Send(ctx context.Context, req notification.Request) (*dispatch.Result, error)
}

// Scheduler persists notifications for future delivery and sweeps due ones
// through a Dispatcher.
type Scheduler struct {
	storage    Storage
	dispatcher Dispatcher
	log        *slog.Logger
	clock      func() time.Time
	batchSize  int
	lease      time.Duration
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets a structured logger for sweep observability.
func WithLogger(log *slog.Logger) Option {
	return func(s *Scheduler) {
		if log != nil {
			s.log = log
		}
	}
}

// WithBatchSize caps how many due notifications one sweep claims.
func WithBatchSize(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithLease overrides how long a claim holds a due notification before
// another sweep may reclaim it. Must exceed the longest expected delivery
// time for one batch.
func WithLease(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.lease = d
		}
	}
}

// WithClock overrides the time source for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Scheduler) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// New creates a Scheduler backed by the given storage and dispatcher.
func New(storage Storage, dispatcher Dispatcher, opts ...Option) *Scheduler {
	s := &Scheduler{
		storage:    storage,
		dispatcher: dispatcher,
		log:        slog.Default(),
		clock:      time.Now,
		batchSize:  100,
		lease:      time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule stores a notification for delivery at scheduledAt and returns its
// ID. A scheduledAt in the past is accepted and becomes due on the next
// sweep.
func (s *Scheduler) Schedule(ctx context.Context, req notification.Request, scheduledAt time.Time) (uuid.UUID, error) {
	if err := req.Validate(); err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
	}
	if scheduledAt.IsZero() {
		return uuid.Nil, fmt.Errorf("%w: scheduled time is required", ErrInvalidSchedule)
	}

	item := Scheduled{
		ID:           uuid.New(),
		UserID:       req.UserID,
		Notification: req,
		ScheduledAt:  scheduledAt,
		Status:       StatusPending,
		CreatedAt:    s.clock(),
	}
	if err := s.storage.Create(ctx, item); err != nil {
		return uuid.Nil, fmt.Errorf("create scheduled notification: %w", err)
	}

	s.log.LogAttrs(ctx, slog.LevelDebug, "notification scheduled",
		logger.UserID(req.UserID),
		logger.NotificationType(string(req.Type)),
		slog.String("schedule_id", item.ID.String()),
		slog.Time("scheduled_at", scheduledAt),
	)
	return item.ID, nil
}

// Cancel cancels a pending scheduled notification owned by userID.
// Cancellation is one-directional: once a notification has been sent,
// failed or cancelled it cannot return to pending.
func (s *Scheduler) Cancel(ctx context.Context, id uuid.UUID, userID string) error {
	return s.storage.Cancel(ctx, id, userID)
}

// Get returns a scheduled notification by ID.
func (s *Scheduler) Get(ctx context.Context, id uuid.UUID) (Scheduled, error) {
	return s.storage.Get(ctx, id)
}

// ProcessDue claims due notifications (oldest scheduled first) and delivers
// them through the dispatcher. A delivery that fails on every channel marks
// the notification failed; partial success counts as sent. Failures are
// isolated per notification, the sweep keeps going.
func (s *Scheduler) ProcessDue(ctx context.Context) (Stats, error) {
	now := s.clock()
	due, err := s.storage.ClaimDue(ctx, now, s.batchSize, s.lease)
	if err != nil {
		return Stats{}, fmt.Errorf("claim due notifications: %w", err)
	}

	var stats Stats
	for _, item := range due {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		stats.Processed++

		res, err := s.dispatcher.Send(ctx, item.Notification)
		switch {
		case err != nil:
			stats.Failed++
			s.failed(ctx, item, err.Error())
		case !res.Success:
			stats.Failed++
			s.failed(ctx, item, res.FailureReason())
		default:
			stats.Sent++
			if err := s.storage.MarkSent(ctx, item.ID, s.clock()); err != nil {
				s.log.LogAttrs(ctx, slog.LevelError, "failed to mark scheduled notification sent",
					slog.String("schedule_id", item.ID.String()),
					logger.Error(err),
				)
			}
		}
	}

	if stats.Processed > 0 {
		s.log.LogAttrs(ctx, slog.LevelInfo, "scheduled notifications processed",
			slog.Int("processed", stats.Processed),
			slog.Int("sent", stats.Sent),
			slog.Int("failed", stats.Failed),
		)
	}
	return stats, nil
}

func (s *Scheduler) failed(ctx context.Context, item Scheduled, cause string) {
	s.log.LogAttrs(ctx, slog.LevelWarn, "scheduled notification delivery failed",
		slog.String("schedule_id", item.ID.String()),
		logger.UserID(item.UserID),
		slog.String("cause", cause),
	)
	if err := s.storage.MarkFailed(ctx, item.ID, s.clock(), cause); err != nil {
		s.log.LogAttrs(ctx, slog.LevelError, "failed to mark scheduled notification failed",
			slog.String("schedule_id", item.ID.String()),
			logger.Error(err),
		)
	}
}
