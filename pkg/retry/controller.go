package retry

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Config defines the synchronous retry policy.
type Config struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	Backoff     Backoff
}

// DefaultConfig returns the default policy: 3 attempts with exponential
// backoff between them.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		Backoff:     DefaultBackoff(),
	}
}

// Controller wraps an operation with classified, backed-off retries.
// Permanent failures abort immediately; transient failures are retried until
// the configured attempts run out.
type Controller struct {
	config Config
	logger *slog.Logger
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithControllerLogger sets the logger for attempt-level diagnostics.
func WithControllerLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewController creates a retry controller with the given policy.
func NewController(config Config, opts ...ControllerOption) *Controller {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultConfig().MaxAttempts
	}

	c := &Controller{
		config: config,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Outcome reports how an Execute call went.
type Outcome struct {
	// Attempts is the number of times the operation was invoked.
	Attempts int
}

// Execute runs op, retrying transient failures with backoff. The backoff
// sleep is interruptible: a cancelled context stops waiting and returns the
// context error joined with the last failure.
//
// On success the outcome carries the attempt count. On a permanent failure
// the error is returned after exactly one attempt (wrapped in ErrPermanent).
// When all attempts are used up the last error is returned wrapped in
// ErrExhausted; it is the caller's job to persist a retry record for
// asynchronous reprocessing.
func (c *Controller) Execute(ctx context.Context, op func(ctx context.Context) error) (Outcome, error) {
	var lastErr error

	for attempt := 1; attempt <= c.config.MaxAttempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return Outcome{Attempts: attempt}, nil
		}
		lastErr = err

		if Classify(err) == ClassPermanent {
			return Outcome{Attempts: attempt}, fmt.Errorf("%w: %w", ErrPermanent, err)
		}

		if attempt == c.config.MaxAttempts {
			break
		}

		delay := c.config.Backoff.Delay(attempt)
		c.logger.LogAttrs(ctx, slog.LevelDebug, "retrying after transient failure",
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()),
		)

		if err := sleep(ctx, delay); err != nil {
			return Outcome{Attempts: attempt}, fmt.Errorf("%w: %w", err, lastErr)
		}
	}

	return Outcome{Attempts: c.config.MaxAttempts}, fmt.Errorf("%w: %w", ErrExhausted, lastErr)
}

// sleep waits for d or until the context is done, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
