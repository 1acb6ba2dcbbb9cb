package grouping_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notifykit/notifykit/pkg/grouping"
	"github.com/notifykit/notifykit/pkg/notification"
)

func notifs(typ notification.Type, base time.Time, spacing time.Duration, n int) []notification.Notification {
	out := make([]notification.Notification, n)
	for i := range out {
		out[i] = notification.Notification{
			ID:        fmt.Sprintf("%s-%d", typ, i),
			UserID:    "user-1",
			Type:      typ,
			Title:     fmt.Sprintf("%s %d", typ, i),
			CreatedAt: base.Add(time.Duration(i) * spacing),
		}
	}
	return out
}

func TestApply(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)

	t.Run("collapses a burst of one type", func(t *testing.T) {
		t.Parallel()

		input := notifs(notification.TypeOrderPaymentReceived, base, time.Minute, 5)
		groups := grouping.Apply(input, grouping.DefaultOptions())

		require.Len(t, groups, 1)
		g := groups[0]
		assert.Equal(t, 5, g.Count)
		assert.Equal(t, "5 order payments", g.Label)
		assert.Equal(t, input[4].ID, g.Latest.ID)
		assert.Len(t, g.Items, 5)
	})

	t.Run("different types never share a group", func(t *testing.T) {
		t.Parallel()

		input := append(
			notifs(notification.TypeOrderPaymentReceived, base, time.Minute, 2),
			notifs(notification.TypeCourseNewContent, base, time.Minute, 2)...,
		)
		groups := grouping.Apply(input, grouping.DefaultOptions())
		assert.Len(t, groups, 2)
	})

	t.Run("notifications far apart land in different buckets", func(t *testing.T) {
		t.Parallel()

		input := append(
			notifs(notification.TypeOrderPaymentReceived, base, time.Minute, 2),
			notifs(notification.TypeOrderPaymentReceived, base.Add(3*time.Hour), time.Minute, 2)...,
		)
		groups := grouping.Apply(input, grouping.DefaultOptions())
		assert.Len(t, groups, 2)
	})

	t.Run("items are capped with oldest dropped first", func(t *testing.T) {
		t.Parallel()

		input := notifs(notification.TypeOrderPaymentReceived, base, time.Second, 15)
		groups := grouping.Apply(input, grouping.Options{
			ByType:       true,
			TimeWindow:   time.Hour,
			MaxGroupSize: 10,
		})

		require.Len(t, groups, 1)
		g := groups[0]
		assert.Equal(t, 15, g.Count)
		require.Len(t, g.Items, 10)
		// Oldest five were dropped.
		assert.Equal(t, input[5].ID, g.Items[0].ID)
		assert.Equal(t, input[14].ID, g.Items[9].ID)
	})

	t.Run("groups sorted by latest descending", func(t *testing.T) {
		t.Parallel()

		older := notifs(notification.TypeCourseNewContent, base, time.Minute, 2)
		newer := notifs(notification.TypeOrderPaymentReceived, base.Add(5*time.Hour), time.Minute, 2)

		groups := grouping.Apply(append(older, newer...), grouping.DefaultOptions())
		require.Len(t, groups, 2)
		assert.Equal(t, notification.TypeOrderPaymentReceived, groups[0].Type)
		assert.Equal(t, notification.TypeCourseNewContent, groups[1].Type)
	})

	t.Run("single notification keeps its own title", func(t *testing.T) {
		t.Parallel()

		input := notifs(notification.TypeSystemAnnouncement, base, time.Minute, 1)
		groups := grouping.Apply(input, grouping.DefaultOptions())

		require.Len(t, groups, 1)
		assert.Equal(t, input[0].Title, groups[0].Label)
	})

	t.Run("grouping disabled yields one group per notification", func(t *testing.T) {
		t.Parallel()

		input := notifs(notification.TypeOrderPaymentReceived, base, time.Minute, 3)
		groups := grouping.Apply(input, grouping.Options{ByType: false, TimeWindow: time.Hour, MaxGroupSize: 10})
		assert.Len(t, groups, 3)
	})

	t.Run("pure: input is not mutated", func(t *testing.T) {
		t.Parallel()

		input := notifs(notification.TypeOrderPaymentReceived, base.Add(time.Hour), -time.Minute, 3)
		snapshot := make([]notification.Notification, len(input))
		copy(snapshot, input)

		_ = grouping.Apply(input, grouping.DefaultOptions())
		assert.Equal(t, snapshot, input)
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()

		assert.Nil(t, grouping.Apply(nil, grouping.DefaultOptions()))
	})
}
