package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/notifykit/notifykit/pkg/notification"
)

// Limiter gates notification sends with per-channel, per-type and per-user
// global sliding windows. Both windows must have capacity for a send to be
// allowed. Counter state lives in the Store so that multiple service replicas
// share a single source of truth.
type Limiter struct {
	store  Store
	config Config
	now    func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// New creates a sliding-window notification rate limiter.
func New(store Store, config Config, opts ...Option) (*Limiter, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	l := &Limiter{
		store:  store,
		config: config,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l, nil
}

// scopedKey returns the counter key for a (user, channel[, type]) pair. The
// key includes the type only when a type-specific limit is configured, so
// that Record and Check always address the same counter.
func (l *Limiter) scopedKey(userID string, ch notification.Channel, typ notification.Type) string {
	if _, ok := l.config.Type[typ]; ok && typ != "" {
		return fmt.Sprintf("notify:%s:%s:%s", userID, ch, typ)
	}
	return fmt.Sprintf("notify:%s:%s", userID, ch)
}

func globalKey(userID string) string {
	return fmt.Sprintf("notify:%s:global", userID)
}

// scopedLimits returns the effective limits for a channel/type pair.
func (l *Limiter) scopedLimits(ch notification.Channel, typ notification.Type) Limits {
	if limits, ok := l.config.Type[typ]; ok && typ != "" {
		return limits
	}
	return l.config.Channel[ch]
}

type windowState struct {
	hourly      int
	daily       int
	hourlyReset time.Time
	dailyReset  time.Time
}

func (l *Limiter) windows(ctx context.Context, key string, now time.Time) (windowState, error) {
	var ws windowState

	hourly, oldestHour, err := l.store.CountSince(ctx, key, now.Add(-HourWindow))
	if err != nil {
		return ws, fmt.Errorf("count hourly window: %w", err)
	}
	daily, oldestDay, err := l.store.CountSince(ctx, key, now.Add(-DayWindow))
	if err != nil {
		return ws, fmt.Errorf("count daily window: %w", err)
	}

	ws.hourly = hourly
	ws.daily = daily
	ws.hourlyReset = now
	ws.dailyReset = now
	if !oldestHour.IsZero() {
		ws.hourlyReset = oldestHour.Add(HourWindow)
	}
	if !oldestDay.IsZero() {
		ws.dailyReset = oldestDay.Add(DayWindow)
	}
	return ws, nil
}

// Check reports whether one more send is allowed for the user on the given
// channel. It never consumes capacity; call Record after the send was
// actually attempted.
func (l *Limiter) Check(ctx context.Context, userID string, ch notification.Channel, typ notification.Type) (*Result, error) {
	if userID == "" {
		return nil, ErrKeyRequired
	}
	if !ch.Valid() {
		return nil, notification.ErrUnknownChannel
	}

	now := l.now()
	limits := l.scopedLimits(ch, typ)

	scoped, err := l.windows(ctx, l.scopedKey(userID, ch, typ), now)
	if err != nil {
		return nil, err
	}
	global, err := l.windows(ctx, globalKey(userID), now)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Allowed: true,
		Remaining: Remaining{
			Hourly: minRemaining(limits.PerHour, scoped.hourly, l.config.Global.PerHour, global.hourly),
			Daily:  minRemaining(limits.PerDay, scoped.daily, l.config.Global.PerDay, global.daily),
		},
		ResetAt: ResetTimes{
			Hourly: scoped.hourlyReset,
			Daily:  scoped.dailyReset,
		},
	}

	switch {
	case limits.PerHour > 0 && scoped.hourly >= limits.PerHour:
		result.Allowed = false
		result.Reason = ReasonChannelHourly
	case limits.PerDay > 0 && scoped.daily >= limits.PerDay:
		result.Allowed = false
		result.Reason = ReasonChannelDaily
	case l.config.Global.PerHour > 0 && global.hourly >= l.config.Global.PerHour:
		result.Allowed = false
		result.Reason = ReasonGlobalHourly
		result.ResetAt.Hourly = global.hourlyReset
	case l.config.Global.PerDay > 0 && global.daily >= l.config.Global.PerDay:
		result.Allowed = false
		result.Reason = ReasonGlobalDaily
		result.ResetAt.Daily = global.dailyReset
	}

	return result, nil
}

// Record counts one attempted send against the scoped and global windows.
// It must be called exactly once per actually-attempted send, not per
// logical request, so per-channel fan-out is throttled independently.
func (l *Limiter) Record(ctx context.Context, userID string, ch notification.Channel, typ notification.Type) error {
	if userID == "" {
		return ErrKeyRequired
	}

	now := l.now()
	if err := l.store.Record(ctx, l.scopedKey(userID, ch, typ), now); err != nil {
		return fmt.Errorf("record channel counter: %w", err)
	}
	if err := l.store.Record(ctx, globalKey(userID), now); err != nil {
		return fmt.Errorf("record global counter: %w", err)
	}
	return nil
}

// Reset clears the channel-and-type scoped counter for a user. The shared
// global window is left untouched on purpose: it spans every channel, so
// wiping it here would also forgive sends recorded through other channels.
// Intended for tests and operational tooling.
func (l *Limiter) Reset(ctx context.Context, userID string, ch notification.Channel, typ notification.Type) error {
	return l.store.Delete(ctx, l.scopedKey(userID, ch, typ))
}

func minRemaining(scopedLimit, scopedUsed, globalLimit, globalUsed int) int {
	remaining := -1
	if scopedLimit > 0 {
		remaining = max(0, scopedLimit-scopedUsed)
	}
	if globalLimit > 0 {
		globalRemaining := max(0, globalLimit-globalUsed)
		if remaining < 0 || globalRemaining < remaining {
			remaining = globalRemaining
		}
	}
	if remaining < 0 {
		// Both windows unlimited
		return 0
	}
	return remaining
}
