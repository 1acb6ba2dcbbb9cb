package notification

import "errors"

// Package-level error definitions for notification operations.
var (
	// ErrMissingUserID indicates a request without a user identifier.
	ErrMissingUserID = errors.New("missing user id")

	// ErrMissingType indicates a request without a notification type.
	ErrMissingType = errors.New("missing notification type")

	// ErrUnknownChannel indicates a channel outside the supported set.
	ErrUnknownChannel = errors.New("unknown channel")

	// ErrNotFound indicates the requested notification does not exist.
	ErrNotFound = errors.New("notification not found")
)
