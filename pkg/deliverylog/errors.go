package deliverylog

import "errors"

var (
	// ErrStorageRequired indicates a log constructed without storage.
	ErrStorageRequired = errors.New("storage is required")

	// ErrInvalidStatus indicates an attempt with an unknown status.
	ErrInvalidStatus = errors.New("invalid delivery status")

	// ErrAttemptNotFound indicates no attempt matches the transition key.
	ErrAttemptNotFound = errors.New("delivery attempt not found")
)
