package retry

import "errors"

// Package-level error definitions for retry operations.
var (
	// ErrPermanent wraps failures that are not worth retrying.
	ErrPermanent = errors.New("permanent failure")

	// ErrExhausted wraps failures that survived every synchronous attempt.
	ErrExhausted = errors.New("retries exhausted")

	// ErrStoreRequired indicates a processor constructed without a store.
	ErrStoreRequired = errors.New("store is required")

	// ErrSendFuncRequired indicates a processor constructed without a send function.
	ErrSendFuncRequired = errors.New("send function is required")

	// ErrCauseRequired indicates an Enqueue call without the triggering error.
	ErrCauseRequired = errors.New("cause error is required")

	// ErrRecordExists indicates a duplicate retry record ID.
	ErrRecordExists = errors.New("retry record already exists")

	// ErrRecordNotFound indicates the retry record does not exist.
	ErrRecordNotFound = errors.New("retry record not found")
)
