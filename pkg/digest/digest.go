package digest

import (
	"time"

	"github.com/notifykit/notifykit/pkg/notification"
)

// Period selects the aggregation window of a digest.
type Period string

const (
	PeriodDaily  Period = "daily"
	PeriodWeekly Period = "weekly"
)

// Valid reports whether the period is supported.
func (p Period) Valid() bool {
	return p == PeriodDaily || p == PeriodWeekly
}

// since returns the start of the current period in loc: local midnight for
// daily digests, midnight of the most recent Monday for weekly ones.
func (p Period) since(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	if p == PeriodDaily {
		return midnight
	}
	// Weekday runs Sunday=0; shift so Monday is the week boundary.
	back := (int(local.Weekday()) + 6) % 7
	return midnight.AddDate(0, 0, -back)
}

// TypeCount is the number of digest notifications of one type.
type TypeCount struct {
	Type  notification.Type `json:"type"`
	Count int               `json:"count"`
}

// Digest is an aggregated summary of a user's unread low-urgency
// notifications for one period.
type Digest struct {
	UserID    string      `json:"user_id"`
	Period    Period      `json:"period"`
	Since     time.Time   `json:"since"`
	Total     int         `json:"total"`
	Counts    []TypeCount `json:"counts"`
	SourceIDs []string    `json:"source_ids"`
}

// Stats summarizes one digest sweep over a set of users.
type Stats struct {
	Users  int
	Sent   int
	Empty  int
	Failed int
}
