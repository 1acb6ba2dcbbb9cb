package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/notifykit/notifykit/pkg/logger"
	"github.com/notifykit/notifykit/pkg/notification"
)

// SendFunc re-executes a single channel send for a retry record.
type SendFunc func(ctx context.Context, req notification.Request, ch notification.Channel) error

// Processor owns the asynchronous half of retrying: it persists retry
// records handed off by the orchestrator and periodically re-executes due
// ones. A record that exhausts MaxAttempts is closed as failed and moved to
// the dead letter store verbatim.
type Processor struct {
	store       Store
	send        SendFunc
	backoff     Backoff
	maxAttempts int
	batchSize   int
	lease       time.Duration
	now         func() time.Time
	logger      *slog.Logger
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithProcessorBackoff sets the backoff used to compute NextRetryAt.
func WithProcessorBackoff(b Backoff) ProcessorOption {
	return func(p *Processor) { p.backoff = b }
}

// WithMaxAttempts caps the total asynchronous attempts per record.
func WithMaxAttempts(n int) ProcessorOption {
	return func(p *Processor) {
		if n > 0 {
			p.maxAttempts = n
		}
	}
}

// WithBatchSize bounds how many due records one sweep processes.
func WithBatchSize(n int) ProcessorOption {
	return func(p *Processor) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

// WithProcessorLogger sets the logger.
func WithProcessorLogger(l *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithProcessorClock overrides the time source. Intended for tests.
func WithProcessorClock(now func() time.Time) ProcessorOption {
	return func(p *Processor) {
		if now != nil {
			p.now = now
		}
	}
}

// NewProcessor creates a retry processor.
func NewProcessor(store Store, send SendFunc, opts ...ProcessorOption) (*Processor, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if send == nil {
		return nil, ErrSendFuncRequired
	}

	p := &Processor{
		store:       store,
		send:        send,
		backoff:     DefaultBackoff(),
		maxAttempts: 5,
		batchSize:   100,
		lease:       time.Minute,
		now:         time.Now,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// Enqueue persists a retry record for a channel send whose synchronous
// attempts were exhausted. NextRetryAt is computed with the same backoff
// formula used between synchronous attempts.
func (p *Processor) Enqueue(ctx context.Context, req notification.Request, ch notification.Channel, cause error) (*Record, error) {
	if cause == nil {
		return nil, ErrCauseRequired
	}

	now := p.now()
	rec := &Record{
		ID:            uuid.New(),
		Notification:  req,
		Channel:       ch,
		Error:         cause.Error(),
		AttemptNumber: 1,
		MaxAttempts:   p.maxAttempts,
		NextRetryAt:   now.Add(p.backoff.Delay(1)),
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := p.store.CreateRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("create retry record: %w", err)
	}

	p.logger.LogAttrs(ctx, slog.LevelInfo, "retry record queued",
		slog.String("record_id", rec.ID.String()),
		logger.UserID(req.UserID),
		logger.Channel(ch),
		slog.Time("next_retry_at", rec.NextRetryAt),
	)
	return rec, nil
}

// Stats summarizes one sweep over due retry records.
type Stats struct {
	Processed    int
	Completed    int
	Failed       int
	DeadLettered int
}

// ProcessPending re-executes due retry records. Per-record failures are
// counted, never aborting the remainder of the sweep.
func (p *Processor) ProcessPending(ctx context.Context) (Stats, error) {
	var stats Stats

	due, err := p.store.ClaimDue(ctx, p.now(), p.batchSize, p.lease)
	if err != nil {
		return stats, fmt.Errorf("claim due retries: %w", err)
	}

	for i := range due {
		rec := due[i]
		stats.Processed++

		sendErr := p.send(ctx, rec.Notification, rec.Channel)
		rec.UpdatedAt = p.now()

		if sendErr == nil {
			rec.Status = StatusCompleted
			if err := p.store.UpdateRecord(ctx, &rec); err != nil {
				p.logUpdateFailure(ctx, rec, err)
				stats.Failed++
				continue
			}
			stats.Completed++
			continue
		}

		rec.AttemptNumber++
		rec.Error = sendErr.Error()

		if rec.AttemptNumber >= rec.MaxAttempts || Classify(sendErr) == ClassPermanent {
			rec.Status = StatusFailed
			if err := p.store.UpdateRecord(ctx, &rec); err != nil {
				p.logUpdateFailure(ctx, rec, err)
				stats.Failed++
				continue
			}
			if err := p.deadLetter(ctx, rec); err != nil {
				p.logger.LogAttrs(ctx, slog.LevelError, "failed to dead-letter retry record",
					slog.String("record_id", rec.ID.String()),
					logger.Error(err),
				)
			}
			stats.Failed++
			stats.DeadLettered++
			continue
		}

		rec.NextRetryAt = p.now().Add(p.backoff.Delay(rec.AttemptNumber))
		if err := p.store.UpdateRecord(ctx, &rec); err != nil {
			p.logUpdateFailure(ctx, rec, err)
		}
		stats.Failed++
	}

	return stats, nil
}

// deadLetter moves an exhausted record to the dead letter store verbatim.
func (p *Processor) deadLetter(ctx context.Context, rec Record) error {
	dl := DeadLetter{
		ID:           uuid.New(),
		RecordID:     rec.ID,
		Notification: rec.Notification,
		Channel:      rec.Channel,
		Error:        rec.Error,
		Attempts:     rec.AttemptNumber,
		FailedAt:     p.now(),
	}
	if err := p.store.AddDeadLetter(ctx, dl); err != nil {
		return err
	}

	p.logger.LogAttrs(ctx, slog.LevelWarn, "notification dead-lettered",
		slog.String("record_id", rec.ID.String()),
		logger.UserID(rec.Notification.UserID),
		logger.Channel(rec.Channel),
		slog.Int("attempts", rec.AttemptNumber),
		slog.String("error", rec.Error),
	)
	return nil
}

// DeadLetters returns stored dead letters for inspection.
func (p *Processor) DeadLetters(ctx context.Context, limit int) ([]DeadLetter, error) {
	return p.store.ListDeadLetters(ctx, limit)
}

func (p *Processor) logUpdateFailure(ctx context.Context, rec Record, err error) {
	p.logger.LogAttrs(ctx, slog.LevelError, "failed to update retry record",
		slog.String("record_id", rec.ID.String()),
		logger.Error(err),
	)
}
