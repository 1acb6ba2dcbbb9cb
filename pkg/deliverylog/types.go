package deliverylog

import (
	"time"

	"github.com/google/uuid"

	"github.com/notifykit/notifykit/pkg/notification"
)

// Status is the lifecycle state of one delivery attempt.
type Status string

const (
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusOpened    Status = "opened"
	StatusClicked   Status = "clicked"
	StatusFailed    Status = "failed"
	StatusBounced   Status = "bounced"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusSent, StatusDelivered, StatusOpened, StatusClicked, StatusFailed, StatusBounced:
		return true
	}
	return false
}

// WasSent reports whether the attempt actually went out. Engagement
// transitions (delivered, opened, clicked) overwrite Status in place, so a
// send must be counted by any non-failure state, not by Status == sent.
func (s Status) WasSent() bool {
	switch s {
	case StatusSent, StatusDelivered, StatusOpened, StatusClicked:
		return true
	}
	return false
}

// Attempt is one append-only delivery log entry. Entries are never mutated
// after creation except for status-transition updates keyed by
// (user_id, notification_id).
type Attempt struct {
	ID             uuid.UUID            `json:"id"`
	UserID         string               `json:"user_id"`
	NotificationID string               `json:"notification_id,omitempty"`
	Type           notification.Type    `json:"type"`
	Channel        notification.Channel `json:"channel"`
	Status         Status               `json:"status"`
	Error          string               `json:"error,omitempty"`
	ProcessingTime time.Duration        `json:"processing_time"`
	RetryCount     int                  `json:"retry_count"`
	CreatedAt      time.Time            `json:"created_at"`
	DeliveredAt    *time.Time           `json:"delivered_at,omitempty"`
	OpenedAt       *time.Time           `json:"opened_at,omitempty"`
	ClickedAt      *time.Time           `json:"clicked_at,omitempty"`
}

// Filter selects delivery attempts for listing and aggregation.
type Filter struct {
	UserID  string
	Channel notification.Channel
	Type    notification.Type
	Status  Status
	Since   *time.Time
	Limit   int
}

// Stats aggregates delivery outcomes over a filtered set of attempts.
// Rates are fractions in [0,1] relative to the number of sent attempts.
type Stats struct {
	Total        int                          `json:"total"`
	ByStatus     map[Status]int               `json:"by_status"`
	ByChannel    map[notification.Channel]int `json:"by_channel"`
	DeliveryRate float64                      `json:"delivery_rate"`
	OpenRate     float64                      `json:"open_rate"`
	ClickRate    float64                      `json:"click_rate"`
	FailureRate  float64                      `json:"failure_rate"`
}
