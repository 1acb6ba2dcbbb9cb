package digest

import "errors"

var (
	// ErrInvalidPeriod is returned for digest periods other than daily or
	// weekly.
	ErrInvalidPeriod = errors.New("invalid digest period")

	// ErrDeliveryFailed is returned when the digest notification failed on
	// every channel.
	ErrDeliveryFailed = errors.New("digest delivery failed")

	// ErrUserSourceRequired is returned by ProcessPeriod when no UserSource
	// was configured.
	ErrUserSourceRequired = errors.New("user source required")
)
