package schedule

import "errors"

var (
	// ErrNotFound is returned when no scheduled notification exists for the
	// given ID, or it belongs to a different user.
	ErrNotFound = errors.New("scheduled notification not found")

	// ErrNotPending is returned when cancelling a scheduled notification
	// that has already been sent, cancelled or failed.
	ErrNotPending = errors.New("scheduled notification is not pending")

	// ErrInvalidSchedule is returned for schedule requests that fail
	// validation.
	ErrInvalidSchedule = errors.New("invalid schedule request")
)
