package sender

import "errors"

// Package-level error definitions for channel senders.
var (
	// ErrNilSendFunc indicates a Func sender without a collaborator function.
	ErrNilSendFunc = errors.New("send function is required")

	// ErrStorageRequired indicates an in-app sender without a store.
	ErrStorageRequired = errors.New("notification storage is required")

	// ErrInvalidConfig indicates incomplete sender configuration.
	ErrInvalidConfig = errors.New("invalid sender configuration")

	// ErrNilAddressResolver indicates an email sender without an address resolver.
	ErrNilAddressResolver = errors.New("address resolver is required")

	// ErrInvalidRecipient indicates the user cannot receive mail on this channel.
	ErrInvalidRecipient = errors.New("invalid recipient")

	// ErrSendFailed indicates the transport rejected the send.
	ErrSendFailed = errors.New("send failed")
)
