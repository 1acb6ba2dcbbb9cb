package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notifykit/notifykit/pkg/retry"
)

func fastConfig(maxAttempts int) retry.Config {
	return retry.Config{
		MaxAttempts: maxAttempts,
		Backoff: retry.Backoff{
			InitialDelay: time.Millisecond,
			MaxDelay:     5 * time.Millisecond,
			Multiplier:   2,
		},
	}
}

func TestController_Execute(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("succeeds first try", func(t *testing.T) {
		t.Parallel()

		c := retry.NewController(fastConfig(3))

		calls := 0
		outcome, err := c.Execute(ctx, func(context.Context) error {
			calls++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, outcome.Attempts)
		assert.Equal(t, 1, calls)
	})

	t.Run("transient failures then success on the last attempt", func(t *testing.T) {
		t.Parallel()

		c := retry.NewController(fastConfig(3))

		calls := 0
		outcome, err := c.Execute(ctx, func(context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("network timeout")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, outcome.Attempts)
	})

	t.Run("permanent failure aborts after one attempt", func(t *testing.T) {
		t.Parallel()

		c := retry.NewController(fastConfig(5))

		calls := 0
		outcome, err := c.Execute(ctx, func(context.Context) error {
			calls++
			return errors.New("invalid recipient")
		})
		require.ErrorIs(t, err, retry.ErrPermanent)
		assert.Equal(t, 1, outcome.Attempts)
		assert.Equal(t, 1, calls)
	})

	t.Run("exhaustion wraps the last error", func(t *testing.T) {
		t.Parallel()

		c := retry.NewController(fastConfig(3))

		cause := errors.New("connection reset")
		calls := 0
		outcome, err := c.Execute(ctx, func(context.Context) error {
			calls++
			return cause
		})
		require.ErrorIs(t, err, retry.ErrExhausted)
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, 3, outcome.Attempts)
		assert.Equal(t, 3, calls)
	})

	t.Run("cancelled context interrupts the backoff sleep", func(t *testing.T) {
		t.Parallel()

		c := retry.NewController(retry.Config{
			MaxAttempts: 3,
			Backoff: retry.Backoff{
				InitialDelay: time.Minute,
				MaxDelay:     time.Minute,
				Multiplier:   1,
			},
		})

		ctx, cancel := context.WithCancel(context.Background())
		start := time.Now()
		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()

		_, err := c.Execute(ctx, func(context.Context) error {
			return errors.New("timeout")
		})
		require.ErrorIs(t, err, context.Canceled)
		assert.Less(t, time.Since(start), 10*time.Second)
	})
}
