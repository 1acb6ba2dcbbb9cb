package schedule

import (
	"time"

	"github.com/google/uuid"

	"github.com/notifykit/notifykit/pkg/notification"
)

// Status is the lifecycle state of a scheduled notification. A row
// terminally transitions from pending to exactly one of sent, cancelled or
// failed; processing is the transient claimed state that makes the
// transition itself the mutual-exclusion mechanism between sweep instances.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusSent       Status = "sent"
	StatusCancelled  Status = "cancelled"
	StatusFailed     Status = "failed"
)

// Scheduled is a notification persisted for future delivery.
type Scheduled struct {
	ID           uuid.UUID            `json:"id"`
	UserID       string               `json:"user_id"`
	Notification notification.Request `json:"notification"`
	ScheduledAt  time.Time            `json:"scheduled_at"`
	Status       Status               `json:"status"`
	Error        string               `json:"error,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	ClaimedAt    *time.Time           `json:"claimed_at,omitempty"`
	ProcessedAt  *time.Time           `json:"processed_at,omitempty"`
}

// Stats summarizes one sweep over due scheduled notifications.
type Stats struct {
	Processed int
	Sent      int
	Failed    int
}
