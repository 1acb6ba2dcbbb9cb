package template

import "context"

// Store persists templates. Get performs an exact lookup; the engine owns
// the store-specific and language fallback chain.
type Store interface {
	// Get returns the template matching the key exactly, or ErrNotFound.
	Get(ctx context.Context, key Key) (*Template, error)

	// Upsert creates or replaces a template variant.
	Upsert(ctx context.Context, tmpl Template) error
}
