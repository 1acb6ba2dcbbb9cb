package retry

import (
	"time"

	"github.com/google/uuid"

	"github.com/notifykit/notifykit/pkg/notification"
)

// Status is the lifecycle state of a stored retry record.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Record is a persisted retry of a single channel send whose synchronous
// attempts were exhausted. The background processor re-executes it when
// NextRetryAt passes; AttemptNumber never exceeds MaxAttempts without the
// record terminating in StatusFailed plus a dead letter.
type Record struct {
	ID            uuid.UUID            `json:"id"`
	Notification  notification.Request `json:"notification"`
	Channel       notification.Channel `json:"channel"`
	Error         string               `json:"error"`
	AttemptNumber int                  `json:"attempt_number"`
	MaxAttempts   int                  `json:"max_attempts"`
	NextRetryAt   time.Time            `json:"next_retry_at"`
	Status        Status               `json:"status"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// DeadLetter is the durable last-resort record of a notification whose
// retries were exhausted. Payload, error and attempt count are kept verbatim
// for manual inspection and replay; a dead letter is never silently dropped.
type DeadLetter struct {
	ID           uuid.UUID            `json:"id"`
	RecordID     uuid.UUID            `json:"record_id"`
	Notification notification.Request `json:"notification"`
	Channel      notification.Channel `json:"channel"`
	Error        string               `json:"error"`
	Attempts     int                  `json:"attempts"`
	FailedAt     time.Time            `json:"failed_at"`
}
