package template_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notifykit/notifykit/pkg/notification"
	"github.com/notifykit/notifykit/pkg/template"
)

func newEngine(t *testing.T, templates ...template.Template) *template.Engine {
	t.Helper()

	store := template.NewMemoryStore()
	for _, tmpl := range templates {
		require.NoError(t, store.Upsert(context.Background(), tmpl))
	}

	engine, err := template.NewEngine(store)
	require.NoError(t, err)
	return engine
}

func TestSubstitute(t *testing.T) {
	t.Parallel()

	vars := map[string]string{"name": "Ada", "amount": "42.00"}

	assert.Equal(t, "Hello Ada", template.Substitute("Hello {{name}}", vars))
	assert.Equal(t, "Hello Ada", template.Substitute("Hello {{ name }}", vars))
	assert.Equal(t, "Ada paid 42.00", template.Substitute("{{name}} paid {{amount}}", vars))

	// Unknown placeholders stay visible instead of vanishing.
	assert.Equal(t, "Hi {{missing}}", template.Substitute("Hi {{missing}}", vars))
	assert.Equal(t, "", template.Substitute("", vars))

	rendered := template.Substitute("Dear {{name}}, your order shipped", vars)
	assert.Contains(t, rendered, "Ada")
	assert.NotContains(t, rendered, "{{name}}")
}

func TestEngine_Lookup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	base := template.Template{
		Slug:     "order-paid",
		Channel:  notification.ChannelEmail,
		Language: "en",
		Subject:  "Payment received",
		Body:     "Thanks {{name}}!",
		IsActive: true,
	}

	t.Run("exact match", func(t *testing.T) {
		t.Parallel()

		engine := newEngine(t, base)
		tmpl, err := engine.Lookup(ctx, template.Key{Slug: "order-paid", Channel: notification.ChannelEmail, Language: "en"})
		require.NoError(t, err)
		assert.Equal(t, "Payment received", tmpl.Subject)
	})

	t.Run("falls back to default language", func(t *testing.T) {
		t.Parallel()

		engine := newEngine(t, base)
		tmpl, err := engine.Lookup(ctx, template.Key{Slug: "order-paid", Channel: notification.ChannelEmail, Language: "de"})
		require.NoError(t, err)
		assert.Equal(t, "en", tmpl.Language)
	})

	t.Run("store-specific overrides global", func(t *testing.T) {
		t.Parallel()

		storeSpecific := base
		storeSpecific.StoreID = "store-7"
		storeSpecific.Subject = "Your store-7 payment"

		engine := newEngine(t, base, storeSpecific)
		tmpl, err := engine.Lookup(ctx, template.Key{
			Slug: "order-paid", Channel: notification.ChannelEmail, Language: "en", StoreID: "store-7",
		})
		require.NoError(t, err)
		assert.Equal(t, "Your store-7 payment", tmpl.Subject)

		// A store without its own variant falls back to the global one.
		tmpl, err = engine.Lookup(ctx, template.Key{
			Slug: "order-paid", Channel: notification.ChannelEmail, Language: "en", StoreID: "store-9",
		})
		require.NoError(t, err)
		assert.Equal(t, "Payment received", tmpl.Subject)
	})

	t.Run("inactive templates are skipped", func(t *testing.T) {
		t.Parallel()

		inactive := base
		inactive.IsActive = false

		engine := newEngine(t, inactive)
		_, err := engine.Lookup(ctx, template.Key{Slug: "order-paid", Channel: notification.ChannelEmail, Language: "en"})
		assert.ErrorIs(t, err, template.ErrNotFound)
	})

	t.Run("missing template", func(t *testing.T) {
		t.Parallel()

		engine := newEngine(t)
		_, err := engine.Lookup(ctx, template.Key{Slug: "nope", Channel: notification.ChannelEmail})
		assert.ErrorIs(t, err, template.ErrNotFound)
	})
}

func TestEngine_Render(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	engine := newEngine(t, template.Template{
		Slug:     "order-paid",
		Channel:  notification.ChannelEmail,
		Language: "en",
		Subject:  "Payment for order {{order_id}}",
		Body:     "Hi {{name}}, we received {{amount}}.",
		HTML:     "<p>Hi {{name}}</p>",
		IsActive: true,
	})

	content, err := engine.Render(ctx,
		template.Key{Slug: "order-paid", Channel: notification.ChannelEmail, Language: "en"},
		map[string]string{"order_id": "o-1", "name": "Ada", "amount": "$42"},
	)
	require.NoError(t, err)
	assert.Equal(t, "Payment for order o-1", content.Subject)
	assert.Equal(t, "Hi Ada, we received $42.", content.Body)
	assert.Equal(t, "<p>Hi Ada</p>", content.HTML)
}

func TestEngine_UpsertInvalidatesCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := template.NewMemoryStore()
	engine, err := template.NewEngine(store)
	require.NoError(t, err)

	tmpl := template.Template{
		Slug:     "welcome",
		Channel:  notification.ChannelInApp,
		Language: "en",
		Body:     "Welcome!",
		IsActive: true,
	}
	require.NoError(t, engine.Upsert(ctx, tmpl))

	key := template.Key{Slug: "welcome", Channel: notification.ChannelInApp, Language: "en"}
	got, err := engine.Lookup(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "Welcome!", got.Body)

	tmpl.Body = "Welcome aboard!"
	require.NoError(t, engine.Upsert(ctx, tmpl))

	got, err = engine.Lookup(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "Welcome aboard!", got.Body)
}
