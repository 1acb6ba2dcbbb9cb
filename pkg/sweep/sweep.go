package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Func is one sweep iteration. Errors are logged, never fatal: the next
// tick runs regardless.
type Func func(ctx context.Context) error

// Runner executes a sweep function on a fixed interval with an explicit
// stop handle for clean shutdown. It replaces ad-hoc background timers so
// every periodic job (scheduled sends, retry reprocessing, digests) has the
// same lifecycle.
type Runner struct {
	name     string
	fn       Func
	interval time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a runner that invokes fn every interval once started.
func New(name string, interval time.Duration, fn Func, opts ...Option) (*Runner, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}
	if fn == nil {
		return nil, ErrFuncRequired
	}

	r := &Runner{
		name:     name,
		fn:       fn,
		interval: interval,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// Start begins sweeping in the background until Stop is called or ctx is
// cancelled.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		return fmt.Errorf("%w: %s", ErrAlreadyStarted, r.name)
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})

	go r.loop(ctx)

	r.logger.Info("sweep runner started",
		slog.String("name", r.name),
		slog.Duration("interval", r.interval))
	return nil
}

// Stop cancels the loop and waits for an in-flight iteration to finish.
func (r *Runner) Stop() error {
	r.mu.Lock()
	cancel := r.cancel
	done := r.done
	r.cancel = nil
	r.mu.Unlock()

	if cancel == nil {
		return fmt.Errorf("%w: %s", ErrNotStarted, r.name)
	}

	cancel()
	<-done

	r.logger.Info("sweep runner stopped", slog.String("name", r.name))
	return nil
}

// Run returns a function suitable for errgroup-style supervision: it starts
// the runner, blocks until ctx is done, and stops it.
func (r *Runner) Run(ctx context.Context) func() error {
	return func() error {
		if err := r.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		return r.Stop()
	}
}

func (r *Runner) loop(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.fn(ctx); err != nil && ctx.Err() == nil {
				r.logger.Error("sweep iteration failed",
					slog.String("name", r.name),
					slog.String("error", err.Error()))
			}
		}
	}
}
