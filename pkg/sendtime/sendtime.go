package sendtime

import (
	"time"

	"github.com/notifykit/notifykit/pkg/notification"
)

// Context captures everything known about a user's delivery preferences and
// recent activity. It is derived and read-mostly: callers assemble it per
// decision rather than persisting it as a source of truth.
type Context struct {
	UserID string

	// Timezone is an IANA zone name; empty means UTC.
	Timezone string

	// PreferredHours are the user-local hours (0-23) during which delivery
	// is welcome. Empty means any hour.
	PreferredHours []int

	// PreferredDays are the user-local weekdays on which delivery is
	// welcome. Empty means any day.
	PreferredDays []time.Weekday

	// LastNotificationAt is when the user last received any notification.
	LastNotificationAt *time.Time

	// FrequencyCap is the maximum notifications per rolling hour; zero
	// disables the cap.
	FrequencyCap int

	// EngagementScore is the user's historical open/click engagement in
	// [0,1], used to nudge priority.
	EngagementScore float64
}

// location resolves the user's timezone, falling back to UTC on unknown
// names.
func (c *Context) location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Decision is the outcome of a send-time evaluation.
type Decision struct {
	// ShouldSend reports whether now is an acceptable delivery moment.
	ShouldSend bool

	// BestTime proposes a better delivery moment when ShouldSend is false.
	BestTime *time.Time

	// Reason explains a deferral.
	Reason string

	// AdjustedPriority is the priority the notification should carry,
	// after engagement-based and type-based adjustments.
	AdjustedPriority notification.Priority
}

// Deferral reasons.
const (
	ReasonOutsideHours = "outside preferred hours"
	ReasonOutsideDays  = "outside preferred days"
	ReasonTooSoon      = "minimum spacing not elapsed"
	ReasonFrequencyCap = "hourly frequency cap reached"
)
