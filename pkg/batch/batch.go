package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/notifykit/notifykit/pkg/dispatch"
	"github.com/notifykit/notifykit/pkg/logger"
	"github.com/notifykit/notifykit/pkg/notification"
)

// Dispatcher delivers a single notification. Satisfied by
// *dispatch.Orchestrator.
type Dispatcher interface {
	Send(ctx context.Context, req notification.Request) (*dispatch.Result, error)
}

// Options controls batch pacing and failure behavior.
type Options struct {
	// BatchSize is how many notifications are dispatched concurrently per
	// chunk. Defaults to 10.
	BatchSize int

	// Delay is the pause between chunks, protecting downstream providers
	// from bursts. Defaults to 100ms.
	Delay time.Duration

	// ContinueOnError keeps processing subsequent chunks after failures.
	// Defaults to true; set StopOnError to abort instead.
	StopOnError bool

	// OnProgress, when set, is called once per chunk with cumulative counts.
	// Calls are strictly monotonic in Processed.
	OnProgress func(p Progress)
}

// Progress is a cumulative snapshot reported after each chunk.
type Progress struct {
	Processed int
	Total     int
	Succeeded int
	Failed    int
}

// Error pairs a failed request with its cause.
type Error struct {
	Index  int
	UserID string
	Err    error
}

func (e Error) Error() string {
	return fmt.Sprintf("notification %d (user %s): %v", e.Index, e.UserID, e.Err)
}

func (e Error) Unwrap() error { return e.Err }

// Result summarizes a batch send.
type Result struct {
	Total     int
	Succeeded int
	Failed    int
	Errors    []Error
}

// Sender fans a slice of notifications out through a Dispatcher in paced
// chunks.
type Sender struct {
	dispatcher Dispatcher
	log        *slog.Logger
}

// Option configures a Sender.
type Option func(*Sender)

// WithLogger sets a structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Sender) {
		if log != nil {
			s.log = log
		}
	}
}

// New creates a batch Sender on top of a Dispatcher.
func New(dispatcher Dispatcher, opts ...Option) *Sender {
	s := &Sender{
		dispatcher: dispatcher,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send delivers all requests in chunks of opts.BatchSize, dispatching each
// chunk concurrently and sleeping opts.Delay between chunks. A notification
// counts as succeeded when at least one of its channels delivered. With
// StopOnError unset, every request is attempted regardless of earlier
// failures; context cancellation always aborts between chunks.
func (s *Sender) Send(ctx context.Context, reqs []notification.Request, opts Options) (*Result, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 10
	}
	if opts.Delay <= 0 {
		opts.Delay = 100 * time.Millisecond
	}

	result := &Result{Total: len(reqs)}
	if len(reqs) == 0 {
		return result, nil
	}

	processed := 0
	for start := 0; start < len(reqs); start += opts.BatchSize {
		if start > 0 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(opts.Delay):
			}
		}

		end := min(start+opts.BatchSize, len(reqs))
		chunkErrs := s.sendChunk(ctx, reqs[start:end], start)

		result.Succeeded += (end - start) - len(chunkErrs)
		result.Failed += len(chunkErrs)
		result.Errors = append(result.Errors, chunkErrs...)

		processed = end
		if opts.OnProgress != nil {
			opts.OnProgress(Progress{
				Processed: processed,
				Total:     result.Total,
				Succeeded: result.Succeeded,
				Failed:    result.Failed,
			})
		}

		if opts.StopOnError && len(chunkErrs) > 0 {
			return result, chunkErrs[0]
		}
	}

	s.log.LogAttrs(ctx, slog.LevelInfo, "batch send completed",
		slog.Int("total", result.Total),
		slog.Int("succeeded", result.Succeeded),
		slog.Int("failed", result.Failed),
	)
	return result, nil
}

func (s *Sender) sendChunk(ctx context.Context, chunk []notification.Request, offset int) []Error {
	var (
		mu   sync.Mutex
		errs []Error
		wg   sync.WaitGroup
	)

	for i, req := range chunk {
		i, req := i, req
		wg.Add(1)
		go func() {
			defer wg.Done()

			res, err := s.dispatcher.Send(ctx, req)
			if err == nil && !res.Success {
				err = fmt.Errorf("all channels failed: %s", res.FailureReason())
			}
			if err != nil {
				s.log.LogAttrs(ctx, slog.LevelWarn, "batch notification failed",
					logger.UserID(req.UserID),
					logger.NotificationType(string(req.Type)),
					logger.Error(err),
				)
				mu.Lock()
				errs = append(errs, Error{Index: offset + i, UserID: req.UserID, Err: err})
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return errs
}
