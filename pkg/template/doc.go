// Package template renders channel-specific notification content from stored
// templates and resolves per-user languages.
//
// Templates are addressed by (slug, channel, language, store); lookup walks
// store-specific before global and the requested language before the default,
// skipping inactive variants. Lookups are cached with a TTL; the cache is a
// performance layer over the store, never the source of truth, and is
// invalidated on every upsert.
//
//	engine, _ := template.NewEngine(template.NewMemoryStore())
//	content, err := engine.Render(ctx, template.Key{
//	    Slug:     "order_payment_received",
//	    Channel:  notification.ChannelEmail,
//	    Language: "de",
//	}, map[string]string{"order_id": "1042"})
//
// Placeholders use the {{name}} form. Unknown placeholders are left intact
// so missing data stays visible instead of disappearing silently.
//
// The Translator resolves a user's preferred languages against the loaded
// YAML bundles via golang.org/x/text language matching, and falls back to
// built-in default phrasings when no stored translation exists.
package template
