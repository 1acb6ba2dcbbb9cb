package dispatch

import (
	"context"

	"github.com/notifykit/notifykit/pkg/notification"
)

// Preferences is a per-type per-channel opt-in map for one user.
type Preferences map[notification.Type]map[notification.Channel]bool

// Enabled reports whether the user accepts the given type on the given
// channel. A type with no stored entry falls back to the channel defaults:
// in-app and email are enabled, SMS and push require an explicit opt-in.
func (p Preferences) Enabled(typ notification.Type, ch notification.Channel) bool {
	if p != nil {
		if channels, ok := p[typ]; ok {
			return channels[ch]
		}
	}
	return defaultEnabled(ch)
}

func defaultEnabled(ch notification.Channel) bool {
	return ch == notification.ChannelInApp || ch == notification.ChannelEmail
}

// PreferenceResolver is the external preference collaborator. A nil
// Preferences return (with nil error) means no preference record exists and
// the defaults apply.
type PreferenceResolver interface {
	Preferences(ctx context.Context, userID string) (Preferences, error)
}

// StaticPreferences is a fixed in-memory PreferenceResolver. Useful for
// tests and single-tenant deployments.
type StaticPreferences map[string]Preferences

func (s StaticPreferences) Preferences(ctx context.Context, userID string) (Preferences, error) {
	return s[userID], nil
}
