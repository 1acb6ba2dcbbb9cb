package ratelimit

import (
	"time"

	"github.com/notifykit/notifykit/pkg/notification"
)

// Window lengths for the two rolling counters.
const (
	HourWindow = time.Hour
	DayWindow  = 24 * time.Hour
)

// Limits caps the number of sends inside the rolling hourly and daily
// windows. A zero value means unlimited for that window.
type Limits struct {
	PerHour int
	PerDay  int
}

// Config defines the rate limit policy. Type-specific limits override the
// channel defaults when present; the global limits apply per user across all
// channels combined.
type Config struct {
	Channel map[notification.Channel]Limits
	Type    map[notification.Type]Limits
	Global  Limits
}

// DefaultConfig returns a policy tuned for transactional notification traffic.
func DefaultConfig() Config {
	return Config{
		Channel: map[notification.Channel]Limits{
			notification.ChannelInApp: {PerHour: 60, PerDay: 300},
			notification.ChannelEmail: {PerHour: 10, PerDay: 50},
			notification.ChannelSMS:   {PerHour: 5, PerDay: 20},
			notification.ChannelPush:  {PerHour: 30, PerDay: 100},
		},
		Global: Limits{PerHour: 100, PerDay: 500},
	}
}

// Reason names the specific limit that rejected a send. Checks report the
// first exceeded limit in precedence order: channel-hourly, channel-daily,
// global-hourly, global-daily.
type Reason string

const (
	ReasonChannelHourly Reason = "channel-hourly"
	ReasonChannelDaily  Reason = "channel-daily"
	ReasonGlobalHourly  Reason = "global-hourly"
	ReasonGlobalDaily   Reason = "global-daily"
)

// Remaining reports how many sends are left in each window, already capped by
// the per-user global limits.
type Remaining struct {
	Hourly int
	Daily  int
}

// ResetTimes reports when capacity returns in each window, i.e. when the
// oldest counted timestamp slides out.
type ResetTimes struct {
	Hourly time.Time
	Daily  time.Time
}

// Result contains the outcome of a rate limit check.
type Result struct {
	Allowed   bool
	Reason    Reason // empty when allowed
	Remaining Remaining
	ResetAt   ResetTimes
}

// RetryAfter returns how long to wait before the rejecting window regains
// capacity. Returns 0 if the check was allowed.
func (r *Result) RetryAfter(now time.Time) time.Duration {
	if r.Allowed {
		return 0
	}
	switch r.Reason {
	case ReasonChannelDaily, ReasonGlobalDaily:
		return r.ResetAt.Daily.Sub(now)
	default:
		return r.ResetAt.Hourly.Sub(now)
	}
}
