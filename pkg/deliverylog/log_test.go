package deliverylog_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notifykit/notifykit/pkg/deliverylog"
	"github.com/notifykit/notifykit/pkg/notification"
)

func newLog(t *testing.T) *deliverylog.Log {
	t.Helper()

	dl, err := deliverylog.New(deliverylog.NewMemoryStorage())
	require.NoError(t, err)
	return dl
}

func sentAttempt(userID, notifID string, ch notification.Channel) deliverylog.Attempt {
	return deliverylog.Attempt{
		ID:             uuid.New(),
		UserID:         userID,
		NotificationID: notifID,
		Type:           notification.TypeOrderPaymentReceived,
		Channel:        ch,
		Status:         deliverylog.StatusSent,
		ProcessingTime: 12 * time.Millisecond,
		CreatedAt:      time.Now(),
	}
}

func TestLog_Record(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("requires storage", func(t *testing.T) {
		t.Parallel()

		_, err := deliverylog.New(nil)
		assert.ErrorIs(t, err, deliverylog.ErrStorageRequired)
	})

	t.Run("rejects invalid status", func(t *testing.T) {
		t.Parallel()

		dl := newLog(t)
		attempt := sentAttempt("user-1", "n-1", notification.ChannelEmail)
		attempt.Status = "teleported"
		assert.ErrorIs(t, dl.Record(ctx, attempt), deliverylog.ErrInvalidStatus)
	})

	t.Run("records and lists newest first", func(t *testing.T) {
		t.Parallel()

		dl := newLog(t)
		first := sentAttempt("user-1", "n-1", notification.ChannelEmail)
		first.CreatedAt = time.Now().Add(-time.Minute)
		second := sentAttempt("user-1", "n-2", notification.ChannelInApp)

		require.NoError(t, dl.Record(ctx, first))
		require.NoError(t, dl.Record(ctx, second))

		attempts, err := dl.List(ctx, deliverylog.Filter{UserID: "user-1"})
		require.NoError(t, err)
		require.Len(t, attempts, 2)
		assert.Equal(t, "n-2", attempts[0].NotificationID)
	})
}

func TestLog_StatusTransitions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dl := newLog(t)

	require.NoError(t, dl.Record(ctx, sentAttempt("user-1", "n-1", notification.ChannelEmail)))
	require.NoError(t, dl.MarkDelivered(ctx, "user-1", "n-1"))
	require.NoError(t, dl.MarkOpened(ctx, "user-1", "n-1"))
	require.NoError(t, dl.MarkClicked(ctx, "user-1", "n-1"))

	attempts, err := dl.List(ctx, deliverylog.Filter{UserID: "user-1"})
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, deliverylog.StatusClicked, attempts[0].Status)
	assert.NotNil(t, attempts[0].DeliveredAt)
	assert.NotNil(t, attempts[0].OpenedAt)
	assert.NotNil(t, attempts[0].ClickedAt)
}

func TestLog_Stats(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dl := newLog(t)

	// 4 attempts: one clicked, one opened, one plain sent, one failed.
	for i, id := range []string{"n-1", "n-2", "n-3", "n-4"} {
		attempt := sentAttempt("user-1", id, notification.ChannelEmail)
		if i == 3 {
			attempt.Status = deliverylog.StatusFailed
			attempt.Error = "connection reset"
		}
		require.NoError(t, dl.Record(ctx, attempt))
	}
	require.NoError(t, dl.MarkOpened(ctx, "user-1", "n-1"))
	require.NoError(t, dl.MarkClicked(ctx, "user-1", "n-1"))
	require.NoError(t, dl.MarkOpened(ctx, "user-1", "n-2"))

	stats, err := dl.Stats(ctx, deliverylog.Filter{UserID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.ByStatus[deliverylog.StatusClicked])
	assert.Equal(t, 1, stats.ByStatus[deliverylog.StatusOpened])
	assert.Equal(t, 1, stats.ByStatus[deliverylog.StatusFailed])
	assert.InDelta(t, 0.5, stats.OpenRate, 0.001)
	assert.InDelta(t, 0.25, stats.ClickRate, 0.001)
	assert.InDelta(t, 0.25, stats.FailureRate, 0.001)
}

func TestLog_EngagementScore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	since := time.Now().Add(-30 * 24 * time.Hour)

	t.Run("no history scores average", func(t *testing.T) {
		t.Parallel()

		dl := newLog(t)
		score, err := dl.EngagementScore(ctx, "user-1", since)
		require.NoError(t, err)
		assert.InDelta(t, 0.5, score, 0.001)
	})

	t.Run("clicking everything scores one", func(t *testing.T) {
		t.Parallel()

		dl := newLog(t)
		require.NoError(t, dl.Record(ctx, sentAttempt("user-1", "n-1", notification.ChannelEmail)))
		require.NoError(t, dl.MarkClicked(ctx, "user-1", "n-1"))

		score, err := dl.EngagementScore(ctx, "user-1", since)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, score, 0.001)
	})
}

func TestLog_SentSince(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("rolling window", func(t *testing.T) {
		t.Parallel()

		dl := newLog(t)
		old := sentAttempt("user-1", "n-old", notification.ChannelEmail)
		old.CreatedAt = time.Now().Add(-2 * time.Hour)
		require.NoError(t, dl.Record(ctx, old))
		require.NoError(t, dl.Record(ctx, sentAttempt("user-1", "n-new", notification.ChannelEmail)))

		count, err := dl.SentSince(ctx, "user-1", time.Now().Add(-time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("engagement transitions keep counting", func(t *testing.T) {
		t.Parallel()

		dl := newLog(t)
		since := time.Now().Add(-time.Hour)
		require.NoError(t, dl.Record(ctx, sentAttempt("user-1", "n-1", notification.ChannelEmail)))

		count, err := dl.SentSince(ctx, "user-1", since)
		require.NoError(t, err)
		require.Equal(t, 1, count)

		require.NoError(t, dl.MarkDelivered(ctx, "user-1", "n-1"))
		require.NoError(t, dl.MarkClicked(ctx, "user-1", "n-1"))

		count, err = dl.SentSince(ctx, "user-1", since)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("failures never count", func(t *testing.T) {
		t.Parallel()

		dl := newLog(t)
		failed := sentAttempt("user-1", "n-1", notification.ChannelEmail)
		failed.Status = deliverylog.StatusFailed
		failed.Error = "mailbox unavailable"
		require.NoError(t, dl.Record(ctx, failed))

		count, err := dl.SentSince(ctx, "user-1", time.Now().Add(-time.Hour))
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}
