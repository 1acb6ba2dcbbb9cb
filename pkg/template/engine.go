package template

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/notifykit/notifykit/pkg/notification"
)

// DefaultLanguage is the fallback when a variant does not exist in the
// requested language.
const DefaultLanguage = "en"

// variablePattern matches {{name}} placeholders, tolerating inner spaces.
var variablePattern = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)

// Engine renders channel-specific notification content from stored
// templates. Lookups walk a fallback chain (store-specific before global,
// requested language before the default) and are cached with a TTL.
type Engine struct {
	store       Store
	cache       *ttlCache
	defaultLang string
}

// EngineOption configures an Engine.
type EngineOption func(*engineConfig)

type engineConfig struct {
	cacheTTL    time.Duration
	defaultLang string
}

// WithCacheTTL sets how long template lookups are cached. Defaults to 5m.
func WithCacheTTL(ttl time.Duration) EngineOption {
	return func(c *engineConfig) {
		if ttl > 0 {
			c.cacheTTL = ttl
		}
	}
}

// WithDefaultLanguage sets the final fallback language. Defaults to "en".
func WithDefaultLanguage(lang string) EngineOption {
	return func(c *engineConfig) {
		if lang != "" {
			c.defaultLang = lang
		}
	}
}

// NewEngine creates a template engine over the given store.
func NewEngine(store Store, opts ...EngineOption) (*Engine, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	cfg := &engineConfig{
		cacheTTL:    5 * time.Minute,
		defaultLang: DefaultLanguage,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &Engine{
		store:       store,
		cache:       newTTLCache(cfg.cacheTTL),
		defaultLang: cfg.defaultLang,
	}, nil
}

// Upsert writes a template through to the store and invalidates the cached
// lookup for its key.
func (e *Engine) Upsert(ctx context.Context, tmpl Template) error {
	if err := e.store.Upsert(ctx, tmpl); err != nil {
		return err
	}
	key := Key{Slug: tmpl.Slug, Channel: tmpl.Channel, Language: tmpl.Language, StoreID: tmpl.StoreID}
	e.cache.invalidate(key.cacheKey())
	return nil
}

// Lookup resolves the template for a key, walking store-specific before
// global and the requested language before the default. Inactive templates
// are skipped. Returns ErrNotFound when no variant in the chain exists.
func (e *Engine) Lookup(ctx context.Context, key Key) (*Template, error) {
	if key.Language == "" {
		key.Language = e.defaultLang
	}

	candidates := []Key{key}
	if key.StoreID != "" {
		candidates = append(candidates, Key{Slug: key.Slug, Channel: key.Channel, Language: key.Language})
	}
	if key.Language != e.defaultLang {
		if key.StoreID != "" {
			candidates = append(candidates, Key{Slug: key.Slug, Channel: key.Channel, Language: e.defaultLang, StoreID: key.StoreID})
		}
		candidates = append(candidates, Key{Slug: key.Slug, Channel: key.Channel, Language: e.defaultLang})
	}

	for _, cand := range candidates {
		tmpl, err := e.lookupOne(ctx, cand)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		if tmpl != nil && tmpl.IsActive {
			return tmpl, nil
		}
	}
	return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, key.Slug, key.Channel)
}

func (e *Engine) lookupOne(ctx context.Context, key Key) (*Template, error) {
	ck := key.cacheKey()
	if tmpl, ok := e.cache.get(ck); ok {
		if tmpl == nil {
			return nil, ErrNotFound
		}
		return tmpl, nil
	}

	tmpl, err := e.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Negative caching keeps absent variants cheap
			e.cache.put(ck, nil)
		}
		return nil, err
	}

	e.cache.put(ck, tmpl)
	return tmpl, nil
}

// Render resolves the template for a key and substitutes {{variable}}
// placeholders from vars into every content field. Placeholders without a
// matching variable are left intact so missing data stays visible.
func (e *Engine) Render(ctx context.Context, key Key, vars map[string]string) (*notification.Content, error) {
	tmpl, err := e.Lookup(ctx, key)
	if err != nil {
		return nil, err
	}

	return &notification.Content{
		Subject: Substitute(tmpl.Subject, vars),
		Title:   Substitute(tmpl.Title, vars),
		Body:    Substitute(tmpl.Body, vars),
		HTML:    Substitute(tmpl.HTML, vars),
	}, nil
}

// InvalidateAll drops every cached lookup. Intended for operational tooling
// after bulk template imports.
func (e *Engine) InvalidateAll() {
	e.cache.purge()
}

// Substitute replaces {{name}} placeholders in s with values from vars.
func Substitute(s string, vars map[string]string) string {
	if s == "" || len(vars) == 0 {
		return s
	}
	return variablePattern.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.TrimSpace(strings.Trim(match, "{}"))
		if val, ok := vars[name]; ok {
			return val
		}
		return match
	})
}
