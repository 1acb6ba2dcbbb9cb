package dispatch

import "errors"

// Package-level error definitions for the orchestrator.
var (
	// ErrLimiterRequired indicates construction without a rate limiter.
	ErrLimiterRequired = errors.New("rate limiter is required")

	// ErrDeliveryLogRequired indicates construction without a delivery log.
	ErrDeliveryLogRequired = errors.New("delivery log is required")

	// ErrNoSenders indicates construction without any channel senders.
	ErrNoSenders = errors.New("at least one sender is required")

	// ErrDuplicateSender indicates two senders registered for one channel.
	ErrDuplicateSender = errors.New("duplicate sender for channel")

	// ErrNoSenderForChannel indicates a requested channel without a sender.
	ErrNoSenderForChannel = errors.New("no sender registered for channel")

	// ErrRateLimited marks a channel send rejected by the rate limiter.
	ErrRateLimited = errors.New("rate limited")
)
