package sendtime_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notifykit/notifykit/pkg/notification"
	"github.com/notifykit/notifykit/pkg/sendtime"
)

type fakeActivity struct {
	sent int
	err  error
}

func (f *fakeActivity) SentSince(ctx context.Context, userID string, since time.Time) (int, error) {
	return f.sent, f.err
}

func request(typ notification.Type, priority notification.Priority) notification.Request {
	return notification.Request{
		UserID:   "user-1",
		Type:     typ,
		Priority: priority,
		Title:    "hello",
		Message:  "world",
	}
}

func TestPlanner_ShouldSend(t *testing.T) {
	t.Parallel()

	// Tuesday 14:00 UTC.
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	planner := sendtime.New(sendtime.WithClock(func() time.Time { return now }))

	t.Run("nil context always sends", func(t *testing.T) {
		t.Parallel()

		d, err := planner.ShouldSend(context.Background(), request(notification.TypeSystemAnnouncement, notification.PriorityLow), nil)
		require.NoError(t, err)
		assert.True(t, d.ShouldSend)
		assert.Equal(t, notification.PriorityLow, d.AdjustedPriority)
	})

	t.Run("empty preferences send immediately", func(t *testing.T) {
		t.Parallel()

		d, err := planner.ShouldSend(context.Background(), request(notification.TypeSystemAnnouncement, notification.PriorityNormal), &sendtime.Context{UserID: "user-1"})
		require.NoError(t, err)
		assert.True(t, d.ShouldSend)
	})

	t.Run("outside preferred hours defers to next slot", func(t *testing.T) {
		t.Parallel()

		uc := &sendtime.Context{
			UserID:         "user-1",
			PreferredHours: []int{9, 10, 18},
		}
		d, err := planner.ShouldSend(context.Background(), request(notification.TypeSystemAnnouncement, notification.PriorityNormal), uc)
		require.NoError(t, err)
		assert.False(t, d.ShouldSend)
		assert.Equal(t, sendtime.ReasonOutsideHours, d.Reason)
		require.NotNil(t, d.BestTime)
		assert.Equal(t, time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC), *d.BestTime)
	})

	t.Run("preferred hours respect the user timezone", func(t *testing.T) {
		t.Parallel()

		// 14:00 UTC is 09:00 in New York: inside the window.
		uc := &sendtime.Context{
			UserID:         "user-1",
			Timezone:       "America/New_York",
			PreferredHours: []int{9, 10},
		}
		d, err := planner.ShouldSend(context.Background(), request(notification.TypeSystemAnnouncement, notification.PriorityNormal), uc)
		require.NoError(t, err)
		assert.True(t, d.ShouldSend)
	})

	t.Run("outside preferred days defers to next matching day", func(t *testing.T) {
		t.Parallel()

		uc := &sendtime.Context{
			UserID:        "user-1",
			PreferredDays: []time.Weekday{time.Saturday, time.Sunday},
		}
		d, err := planner.ShouldSend(context.Background(), request(notification.TypeSystemAnnouncement, notification.PriorityNormal), uc)
		require.NoError(t, err)
		assert.False(t, d.ShouldSend)
		assert.Equal(t, sendtime.ReasonOutsideDays, d.Reason)
		require.NotNil(t, d.BestTime)
		assert.Equal(t, time.Saturday, d.BestTime.Weekday())
		assert.True(t, d.BestTime.After(now))
	})

	t.Run("normal priority too soon after previous notification", func(t *testing.T) {
		t.Parallel()

		last := now.Add(-10 * time.Minute)
		uc := &sendtime.Context{UserID: "user-1", LastNotificationAt: &last}

		d, err := planner.ShouldSend(context.Background(), request(notification.TypeSystemAnnouncement, notification.PriorityNormal), uc)
		require.NoError(t, err)
		assert.False(t, d.ShouldSend)
		assert.Equal(t, sendtime.ReasonTooSoon, d.Reason)
		require.NotNil(t, d.BestTime)
		assert.Equal(t, last.Add(30*time.Minute), *d.BestTime)
	})

	t.Run("high priority needs only five minutes", func(t *testing.T) {
		t.Parallel()

		last := now.Add(-10 * time.Minute)
		uc := &sendtime.Context{UserID: "user-1", LastNotificationAt: &last}

		d, err := planner.ShouldSend(context.Background(), request(notification.TypeSystemAnnouncement, notification.PriorityHigh), uc)
		require.NoError(t, err)
		assert.True(t, d.ShouldSend)
	})

	t.Run("urgent ignores spacing", func(t *testing.T) {
		t.Parallel()

		last := now.Add(-time.Second)
		uc := &sendtime.Context{UserID: "user-1", LastNotificationAt: &last}

		d, err := planner.ShouldSend(context.Background(), request(notification.TypeSystemAnnouncement, notification.PriorityUrgent), uc)
		require.NoError(t, err)
		assert.True(t, d.ShouldSend)
	})

	t.Run("frequency cap reached", func(t *testing.T) {
		t.Parallel()

		capped := sendtime.New(
			sendtime.WithClock(func() time.Time { return now }),
			sendtime.WithActivitySource(&fakeActivity{sent: 5}),
		)
		uc := &sendtime.Context{UserID: "user-1", FrequencyCap: 5}

		d, err := capped.ShouldSend(context.Background(), request(notification.TypeSystemAnnouncement, notification.PriorityNormal), uc)
		require.NoError(t, err)
		assert.False(t, d.ShouldSend)
		assert.Equal(t, sendtime.ReasonFrequencyCap, d.Reason)
	})

	t.Run("under the frequency cap", func(t *testing.T) {
		t.Parallel()

		capped := sendtime.New(
			sendtime.WithClock(func() time.Time { return now }),
			sendtime.WithActivitySource(&fakeActivity{sent: 4}),
		)
		uc := &sendtime.Context{UserID: "user-1", FrequencyCap: 5}

		d, err := capped.ShouldSend(context.Background(), request(notification.TypeSystemAnnouncement, notification.PriorityNormal), uc)
		require.NoError(t, err)
		assert.True(t, d.ShouldSend)
	})

	t.Run("activity source failure surfaces", func(t *testing.T) {
		t.Parallel()

		broken := sendtime.New(
			sendtime.WithClock(func() time.Time { return now }),
			sendtime.WithActivitySource(&fakeActivity{err: errors.New("log offline")}),
		)
		uc := &sendtime.Context{UserID: "user-1", FrequencyCap: 5}

		_, err := broken.ShouldSend(context.Background(), request(notification.TypeSystemAnnouncement, notification.PriorityNormal), uc)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "log offline")
	})

	t.Run("unknown timezone falls back to UTC", func(t *testing.T) {
		t.Parallel()

		uc := &sendtime.Context{
			UserID:         "user-1",
			Timezone:       "Mars/Olympus",
			PreferredHours: []int{14},
		}
		d, err := planner.ShouldSend(context.Background(), request(notification.TypeSystemAnnouncement, notification.PriorityNormal), uc)
		require.NoError(t, err)
		assert.True(t, d.ShouldSend)
	})
}

func TestPlanner_PriorityAdjustment(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	planner := sendtime.New(sendtime.WithClock(func() time.Time { return now }))

	send := func(t *testing.T, typ notification.Type, priority notification.Priority, score float64) notification.Priority {
		t.Helper()
		d, err := planner.ShouldSend(context.Background(), request(typ, priority), &sendtime.Context{UserID: "user-1", EngagementScore: score})
		require.NoError(t, err)
		require.True(t, d.ShouldSend)
		return d.AdjustedPriority
	}

	t.Run("low engagement bumps low to normal", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, notification.PriorityNormal, send(t, notification.TypeSystemAnnouncement, notification.PriorityLow, 0.1))
	})

	t.Run("high engagement bumps normal to high", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, notification.PriorityHigh, send(t, notification.TypeSystemAnnouncement, notification.PriorityNormal, 0.9))
	})

	t.Run("moderate engagement leaves priority alone", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, notification.PriorityNormal, send(t, notification.TypeSystemAnnouncement, notification.PriorityNormal, 0.5))
	})

	t.Run("payment failures always at least high", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, notification.PriorityHigh, send(t, notification.TypePaymentFailed, notification.PriorityLow, 0.5))
	})

	t.Run("urgent is never downgraded", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, notification.PriorityUrgent, send(t, notification.TypeBookingReminder, notification.PriorityUrgent, 0.5))
	})

	t.Run("empty priority defaults to normal", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, notification.PriorityNormal, send(t, notification.TypeSystemAnnouncement, "", 0.5))
	})
}
