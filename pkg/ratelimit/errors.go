package ratelimit

import "errors"

var (
	// ErrStoreRequired indicates a limiter was constructed without a store.
	ErrStoreRequired = errors.New("store is required")

	// ErrKeyRequired indicates an empty user identifier.
	ErrKeyRequired = errors.New("key is required")
)
