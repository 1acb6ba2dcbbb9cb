package template

import "errors"

// Package-level error definitions for template operations.
var (
	// ErrStoreRequired indicates an engine constructed without a store.
	ErrStoreRequired = errors.New("store is required")

	// ErrNotFound indicates no template variant exists in the fallback chain.
	ErrNotFound = errors.New("template not found")

	// ErrMissingSlug indicates a template without a slug.
	ErrMissingSlug = errors.New("missing template slug")

	// ErrInvalidChannel indicates a template addressed to an unknown channel.
	ErrInvalidChannel = errors.New("invalid template channel")

	// ErrEmptyLanguage indicates a translation bundle with an empty language code.
	ErrEmptyLanguage = errors.New("empty language code in translation bundle")
)
