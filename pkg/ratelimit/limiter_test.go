package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notifykit/notifykit/pkg/notification"
	"github.com/notifykit/notifykit/pkg/ratelimit"
)

func newLimiter(t *testing.T, cfg ratelimit.Config, now *time.Time) *ratelimit.Limiter {
	t.Helper()

	limiter, err := ratelimit.New(ratelimit.NewMemoryStore(), cfg, ratelimit.WithClock(func() time.Time {
		return *now
	}))
	require.NoError(t, err)
	return limiter
}

func TestLimiter_Check(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("requires a store", func(t *testing.T) {
		t.Parallel()

		_, err := ratelimit.New(nil, ratelimit.DefaultConfig())
		assert.ErrorIs(t, err, ratelimit.ErrStoreRequired)
	})

	t.Run("allows under the limit", func(t *testing.T) {
		t.Parallel()

		now := time.Now()
		limiter := newLimiter(t, ratelimit.Config{
			Channel: map[notification.Channel]ratelimit.Limits{
				notification.ChannelEmail: {PerHour: 2, PerDay: 10},
			},
		}, &now)

		res, err := limiter.Check(ctx, "user-1", notification.ChannelEmail, "")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Empty(t, res.Reason)
		assert.Equal(t, 2, res.Remaining.Hourly)
	})

	t.Run("rejects with channel-hourly at the cap", func(t *testing.T) {
		t.Parallel()

		now := time.Now()
		limiter := newLimiter(t, ratelimit.Config{
			Channel: map[notification.Channel]ratelimit.Limits{
				notification.ChannelEmail: {PerHour: 2, PerDay: 10},
			},
		}, &now)

		for i := 0; i < 2; i++ {
			require.NoError(t, limiter.Record(ctx, "user-1", notification.ChannelEmail, ""))
		}

		res, err := limiter.Check(ctx, "user-1", notification.ChannelEmail, "")
		require.NoError(t, err)
		assert.False(t, res.Allowed)
		assert.Equal(t, ratelimit.ReasonChannelHourly, res.Reason)
		assert.Equal(t, 0, res.Remaining.Hourly)
	})

	t.Run("allows again once the oldest timestamp ages out", func(t *testing.T) {
		t.Parallel()

		now := time.Now()
		limiter := newLimiter(t, ratelimit.Config{
			Channel: map[notification.Channel]ratelimit.Limits{
				notification.ChannelEmail: {PerHour: 2},
			},
		}, &now)

		require.NoError(t, limiter.Record(ctx, "user-1", notification.ChannelEmail, ""))
		require.NoError(t, limiter.Record(ctx, "user-1", notification.ChannelEmail, ""))

		res, err := limiter.Check(ctx, "user-1", notification.ChannelEmail, "")
		require.NoError(t, err)
		require.False(t, res.Allowed)

		now = now.Add(61 * time.Minute)

		res, err = limiter.Check(ctx, "user-1", notification.ChannelEmail, "")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	})

	t.Run("channels are throttled independently", func(t *testing.T) {
		t.Parallel()

		now := time.Now()
		limiter := newLimiter(t, ratelimit.Config{
			Channel: map[notification.Channel]ratelimit.Limits{
				notification.ChannelEmail: {PerHour: 1},
				notification.ChannelInApp: {PerHour: 60},
			},
		}, &now)

		require.NoError(t, limiter.Record(ctx, "user-1", notification.ChannelEmail, ""))

		email, err := limiter.Check(ctx, "user-1", notification.ChannelEmail, "")
		require.NoError(t, err)
		assert.False(t, email.Allowed)

		inApp, err := limiter.Check(ctx, "user-1", notification.ChannelInApp, "")
		require.NoError(t, err)
		assert.True(t, inApp.Allowed)
	})

	t.Run("global cap rejects even with channel capacity", func(t *testing.T) {
		t.Parallel()

		now := time.Now()
		limiter := newLimiter(t, ratelimit.Config{
			Channel: map[notification.Channel]ratelimit.Limits{
				notification.ChannelEmail: {PerHour: 10},
				notification.ChannelPush:  {PerHour: 10},
			},
			Global: ratelimit.Limits{PerHour: 2},
		}, &now)

		require.NoError(t, limiter.Record(ctx, "user-1", notification.ChannelEmail, ""))
		require.NoError(t, limiter.Record(ctx, "user-1", notification.ChannelPush, ""))

		res, err := limiter.Check(ctx, "user-1", notification.ChannelEmail, "")
		require.NoError(t, err)
		assert.False(t, res.Allowed)
		assert.Equal(t, ratelimit.ReasonGlobalHourly, res.Reason)
	})

	t.Run("type limit overrides channel default", func(t *testing.T) {
		t.Parallel()

		now := time.Now()
		limiter := newLimiter(t, ratelimit.Config{
			Channel: map[notification.Channel]ratelimit.Limits{
				notification.ChannelEmail: {PerHour: 10},
			},
			Type: map[notification.Type]ratelimit.Limits{
				notification.TypeBookingReminder: {PerHour: 1},
			},
		}, &now)

		require.NoError(t, limiter.Record(ctx, "user-1", notification.ChannelEmail, notification.TypeBookingReminder))

		typed, err := limiter.Check(ctx, "user-1", notification.ChannelEmail, notification.TypeBookingReminder)
		require.NoError(t, err)
		assert.False(t, typed.Allowed)

		// The channel default keeps its own counter.
		untyped, err := limiter.Check(ctx, "user-1", notification.ChannelEmail, "")
		require.NoError(t, err)
		assert.True(t, untyped.Allowed)
	})

	t.Run("users do not share counters", func(t *testing.T) {
		t.Parallel()

		now := time.Now()
		limiter := newLimiter(t, ratelimit.Config{
			Channel: map[notification.Channel]ratelimit.Limits{
				notification.ChannelSMS: {PerHour: 1},
			},
		}, &now)

		require.NoError(t, limiter.Record(ctx, "user-1", notification.ChannelSMS, ""))

		other, err := limiter.Check(ctx, "user-2", notification.ChannelSMS, "")
		require.NoError(t, err)
		assert.True(t, other.Allowed)
	})

	t.Run("rejects unknown channel", func(t *testing.T) {
		t.Parallel()

		now := time.Now()
		limiter := newLimiter(t, ratelimit.DefaultConfig(), &now)

		_, err := limiter.Check(ctx, "user-1", notification.Channel("fax"), "")
		assert.ErrorIs(t, err, notification.ErrUnknownChannel)
	})
}

func TestLimiter_DailyWindow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Now()
	limiter := newLimiter(t, ratelimit.Config{
		Channel: map[notification.Channel]ratelimit.Limits{
			notification.ChannelEmail: {PerHour: 100, PerDay: 3},
		},
	}, &now)

	// Spread records across hours so only the daily window fills.
	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.Record(ctx, "user-1", notification.ChannelEmail, ""))
		now = now.Add(2 * time.Hour)
	}

	res, err := limiter.Check(ctx, "user-1", notification.ChannelEmail, "")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, ratelimit.ReasonChannelDaily, res.Reason)

	retryAfter := res.RetryAfter(now)
	assert.Positive(t, retryAfter)
	assert.LessOrEqual(t, retryAfter, ratelimit.DayWindow)
}

func TestLimiter_Reset(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Now()
	limiter := newLimiter(t, ratelimit.Config{
		Channel: map[notification.Channel]ratelimit.Limits{
			notification.ChannelEmail: {PerHour: 1},
			notification.ChannelPush:  {PerHour: 10},
		},
		Global: ratelimit.Limits{PerHour: 3},
	}, &now)

	require.NoError(t, limiter.Record(ctx, "user-1", notification.ChannelEmail, ""))
	require.NoError(t, limiter.Record(ctx, "user-1", notification.ChannelPush, ""))

	blocked, err := limiter.Check(ctx, "user-1", notification.ChannelEmail, "")
	require.NoError(t, err)
	require.False(t, blocked.Allowed)

	require.NoError(t, limiter.Reset(ctx, "user-1", notification.ChannelEmail, ""))

	// The channel window is clear again.
	res, err := limiter.Check(ctx, "user-1", notification.ChannelEmail, "")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	// The global window still remembers both earlier sends: one more
	// recorded send exhausts it even though the email counter was wiped.
	require.NoError(t, limiter.Record(ctx, "user-1", notification.ChannelPush, ""))

	res, err = limiter.Check(ctx, "user-1", notification.ChannelPush, "")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, ratelimit.ReasonGlobalHourly, res.Reason)
}

func TestResult_RetryAfter(t *testing.T) {
	t.Parallel()

	now := time.Now()

	allowed := &ratelimit.Result{Allowed: true}
	assert.Zero(t, allowed.RetryAfter(now))

	rejected := &ratelimit.Result{
		Allowed: false,
		Reason:  ratelimit.ReasonChannelHourly,
		ResetAt: ratelimit.ResetTimes{Hourly: now.Add(10 * time.Minute)},
	}
	assert.Equal(t, 10*time.Minute, rejected.RetryAfter(now))
}
