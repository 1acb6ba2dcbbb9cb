package sendtime

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/notifykit/notifykit/pkg/notification"
)

// ActivitySource reports how many notifications a user received since a
// point in time. Satisfied by *deliverylog.Log.
type ActivitySource interface {
	SentSince(ctx context.Context, userID string, since time.Time) (int, error)
}

// Planner decides whether a notification should be delivered now or
// deferred to a better moment. It is advisory: callers consult it before
// dispatch, it never gates the delivery path on its own.
type Planner struct {
	activity ActivitySource
	clock    func() time.Time
}

// Option configures a Planner.
type Option func(*Planner)

// WithActivitySource wires the delivery log so the planner can enforce
// per-user frequency caps.
func WithActivitySource(src ActivitySource) Option {
	return func(p *Planner) {
		p.activity = src
	}
}

// WithClock overrides the time source for tests.
func WithClock(clock func() time.Time) Option {
	return func(p *Planner) {
		if clock != nil {
			p.clock = clock
		}
	}
}

// New creates a Planner.
func New(opts ...Option) *Planner {
	p := &Planner{clock: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// minSpacing is the minimum gap since the user's previous notification,
// by priority. Urgent notifications are never spaced.
func minSpacing(p notification.Priority) time.Duration {
	switch p {
	case notification.PriorityUrgent:
		return 0
	case notification.PriorityHigh:
		return 5 * time.Minute
	case notification.PriorityLow:
		return time.Hour
	}
	return 30 * time.Minute
}

// forcedHigh lists types that always carry at least high priority no matter
// what the request says: money and time-critical bookings must not be
// deferred into quiet hours by a low default.
func forcedHigh(t notification.Type) bool {
	switch t {
	case notification.TypePaymentFailed, notification.TypePaymentReceived, notification.TypeBookingReminder:
		return true
	}
	return false
}

// ShouldSend evaluates whether req should be delivered now given the user
// context. A nil context always allows delivery. Checks run in order:
// preferred hours, preferred days, priority-dependent spacing since the
// last notification, then the rolling hourly frequency cap. When all pass,
// the decision carries an adjusted priority reflecting the user's
// engagement and the notification type.
func (p *Planner) ShouldSend(ctx context.Context, req notification.Request, uc *Context) (*Decision, error) {
	priority := req.Priority
	if priority == "" {
		priority = notification.PriorityNormal
	}

	if uc == nil {
		return &Decision{ShouldSend: true, AdjustedPriority: priority}, nil
	}

	now := p.clock()
	local := now.In(uc.location())

	if len(uc.PreferredHours) > 0 && !slices.Contains(uc.PreferredHours, local.Hour()) {
		best := p.nextPreferredTime(local, uc)
		return &Decision{ShouldSend: false, BestTime: &best, Reason: ReasonOutsideHours, AdjustedPriority: priority}, nil
	}

	if len(uc.PreferredDays) > 0 && !slices.Contains(uc.PreferredDays, local.Weekday()) {
		best := p.nextPreferredTime(local, uc)
		return &Decision{ShouldSend: false, BestTime: &best, Reason: ReasonOutsideDays, AdjustedPriority: priority}, nil
	}

	if spacing := minSpacing(priority); spacing > 0 && uc.LastNotificationAt != nil {
		elapsed := now.Sub(*uc.LastNotificationAt)
		if elapsed < spacing {
			best := uc.LastNotificationAt.Add(spacing)
			return &Decision{ShouldSend: false, BestTime: &best, Reason: ReasonTooSoon, AdjustedPriority: priority}, nil
		}
	}

	if uc.FrequencyCap > 0 && p.activity != nil {
		sent, err := p.activity.SentSince(ctx, uc.UserID, now.Add(-time.Hour))
		if err != nil {
			return nil, fmt.Errorf("count recent notifications: %w", err)
		}
		if sent >= uc.FrequencyCap {
			best := p.nextPreferredTime(local, uc)
			return &Decision{ShouldSend: false, BestTime: &best, Reason: ReasonFrequencyCap, AdjustedPriority: priority}, nil
		}
	}

	return &Decision{ShouldSend: true, AdjustedPriority: p.adjustPriority(req.Type, priority, uc)}, nil
}

// adjustPriority nudges priority by engagement: barely-engaged users get
// low notifications bumped to normal so they are not buried, highly engaged
// users get normal bumped to high. Payment and booking types always come
// out at least high.
func (p *Planner) adjustPriority(t notification.Type, priority notification.Priority, uc *Context) notification.Priority {
	adjusted := priority
	switch {
	case uc.EngagementScore < 0.3 && priority == notification.PriorityLow:
		adjusted = notification.PriorityNormal
	case uc.EngagementScore > 0.7 && priority == notification.PriorityNormal:
		adjusted = notification.PriorityHigh
	}
	if forcedHigh(t) {
		adjusted = adjusted.AtLeast(notification.PriorityHigh)
	}
	return adjusted
}

// nextPreferredTime finds the start of the next user-local slot whose hour
// and weekday are both preferred, scanning hour by hour from the next full
// hour. With impossible preference combinations it gives up after two weeks
// and returns the scan end.
func (p *Planner) nextPreferredTime(local time.Time, uc *Context) time.Time {
	hourOK := func(h int) bool {
		return len(uc.PreferredHours) == 0 || slices.Contains(uc.PreferredHours, h)
	}
	dayOK := func(d time.Weekday) bool {
		return len(uc.PreferredDays) == 0 || slices.Contains(uc.PreferredDays, d)
	}

	// Truncate against the local calendar, not absolute time, so zones
	// with fractional offsets still align to local hour boundaries.
	t := time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), 0, 0, 0, local.Location()).Add(time.Hour)
	for i := 0; i < 14*24; i++ {
		if hourOK(t.Hour()) && dayOK(t.Weekday()) {
			return t
		}
		t = t.Add(time.Hour)
	}
	return t
}
