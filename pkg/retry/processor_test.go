package retry_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notifykit/notifykit/pkg/notification"
	"github.com/notifykit/notifykit/pkg/retry"
)

func testRequest() notification.Request {
	return notification.Request{
		UserID:   "user-1",
		Type:     notification.TypeOrderPaymentReceived,
		Title:    "Payment received",
		Message:  "Your order was paid.",
		Channels: []notification.Channel{notification.ChannelEmail},
	}
}

func TestProcessor_Enqueue(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := retry.NewMemoryStore()
	proc, err := retry.NewProcessor(store, func(context.Context, notification.Request, notification.Channel) error {
		return nil
	})
	require.NoError(t, err)

	rec, err := proc.Enqueue(ctx, testRequest(), notification.ChannelEmail, errors.New("connection reset"))
	require.NoError(t, err)
	assert.Equal(t, retry.StatusPending, rec.Status)
	assert.Equal(t, 1, rec.AttemptNumber)
	assert.Equal(t, "connection reset", rec.Error)
	assert.True(t, rec.NextRetryAt.After(rec.CreatedAt))

	_, err = proc.Enqueue(ctx, testRequest(), notification.ChannelEmail, nil)
	assert.ErrorIs(t, err, retry.ErrCauseRequired)
}

func TestProcessor_ProcessPending(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("completes a recovered send", func(t *testing.T) {
		t.Parallel()

		store := retry.NewMemoryStore()
		now := time.Now()

		var sent atomic.Int32
		proc, err := retry.NewProcessor(store,
			func(context.Context, notification.Request, notification.Channel) error {
				sent.Add(1)
				return nil
			},
			retry.WithProcessorClock(func() time.Time { return now }),
		)
		require.NoError(t, err)

		_, err = proc.Enqueue(ctx, testRequest(), notification.ChannelEmail, errors.New("timeout"))
		require.NoError(t, err)

		// Advance past NextRetryAt.
		now = now.Add(time.Minute)

		stats, err := proc.ProcessPending(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Processed)
		assert.Equal(t, 1, stats.Completed)
		assert.Zero(t, stats.DeadLettered)
		assert.Equal(t, int32(1), sent.Load())
	})

	t.Run("dead-letters at the attempt cap", func(t *testing.T) {
		t.Parallel()

		store := retry.NewMemoryStore()
		now := time.Now()

		proc, err := retry.NewProcessor(store,
			func(context.Context, notification.Request, notification.Channel) error {
				return errors.New("still timing out")
			},
			retry.WithMaxAttempts(2),
			retry.WithProcessorClock(func() time.Time { return now }),
		)
		require.NoError(t, err)

		_, err = proc.Enqueue(ctx, testRequest(), notification.ChannelEmail, errors.New("timeout"))
		require.NoError(t, err)

		now = now.Add(time.Minute)

		stats, err := proc.ProcessPending(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Processed)
		assert.Equal(t, 1, stats.Failed)
		assert.Equal(t, 1, stats.DeadLettered)

		letters, err := proc.DeadLetters(ctx, 10)
		require.NoError(t, err)
		require.Len(t, letters, 1)
		assert.Equal(t, "still timing out", letters[0].Error)
		assert.Equal(t, 2, letters[0].Attempts)
		assert.Equal(t, "user-1", letters[0].Notification.UserID)
	})

	t.Run("permanent failure dead-letters immediately", func(t *testing.T) {
		t.Parallel()

		store := retry.NewMemoryStore()
		now := time.Now()

		proc, err := retry.NewProcessor(store,
			func(context.Context, notification.Request, notification.Channel) error {
				return errors.New("invalid recipient")
			},
			retry.WithMaxAttempts(5),
			retry.WithProcessorClock(func() time.Time { return now }),
		)
		require.NoError(t, err)

		_, err = proc.Enqueue(ctx, testRequest(), notification.ChannelEmail, errors.New("timeout"))
		require.NoError(t, err)

		now = now.Add(time.Minute)

		stats, err := proc.ProcessPending(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.DeadLettered)
	})

	t.Run("reschedules a transient failure under the cap", func(t *testing.T) {
		t.Parallel()

		store := retry.NewMemoryStore()
		now := time.Now()

		proc, err := retry.NewProcessor(store,
			func(context.Context, notification.Request, notification.Channel) error {
				return errors.New("timeout")
			},
			retry.WithMaxAttempts(5),
			retry.WithProcessorClock(func() time.Time { return now }),
		)
		require.NoError(t, err)

		_, err = proc.Enqueue(ctx, testRequest(), notification.ChannelEmail, errors.New("timeout"))
		require.NoError(t, err)

		now = now.Add(time.Minute)

		stats, err := proc.ProcessPending(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Failed)
		assert.Zero(t, stats.DeadLettered)

		// The record stays pending with a new NextRetryAt in the future;
		// an immediate second sweep picks nothing up.
		stats, err = proc.ProcessPending(ctx)
		require.NoError(t, err)
		assert.Zero(t, stats.Processed)
	})

	t.Run("ignores records that are not due yet", func(t *testing.T) {
		t.Parallel()

		store := retry.NewMemoryStore()
		now := time.Now()

		proc, err := retry.NewProcessor(store,
			func(context.Context, notification.Request, notification.Channel) error {
				t.Error("send must not be invoked before NextRetryAt")
				return nil
			},
			retry.WithProcessorClock(func() time.Time { return now }),
		)
		require.NoError(t, err)

		_, err = proc.Enqueue(ctx, testRequest(), notification.ChannelEmail, errors.New("timeout"))
		require.NoError(t, err)

		stats, err := proc.ProcessPending(ctx)
		require.NoError(t, err)
		assert.Zero(t, stats.Processed)
	})
}
