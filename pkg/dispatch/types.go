package dispatch

import (
	"fmt"
	"sort"
	"strings"

	"github.com/notifykit/notifykit/pkg/notification"
)

// ChannelResult is the per-channel outcome of one dispatched notification.
type ChannelResult struct {
	Success     bool   `json:"success"`
	Attempts    int    `json:"attempts"`
	Error       string `json:"error,omitempty"`
	RateLimited bool   `json:"rate_limited,omitempty"`
	Skipped     bool   `json:"skipped,omitempty"` // disabled by user preference
}

// Result aggregates per-channel outcomes. Success is best-effort across
// channels: true when at least one channel delivered.
type Result struct {
	Success        bool                                   `json:"success"`
	NotificationID string                                 `json:"notification_id,omitempty"`
	Channels       map[notification.Channel]ChannelResult `json:"channels"`
}

// FailureReason concatenates per-channel failure reasons. Empty when at
// least one channel succeeded.
func (r *Result) FailureReason() string {
	if r.Success {
		return ""
	}

	channels := make([]string, 0, len(r.Channels))
	for ch := range r.Channels {
		channels = append(channels, string(ch))
	}
	sort.Strings(channels)

	var parts []string
	for _, ch := range channels {
		cr := r.Channels[notification.Channel(ch)]
		if cr.Success {
			continue
		}
		reason := cr.Error
		if reason == "" && cr.Skipped {
			reason = "disabled by preference"
		}
		parts = append(parts, fmt.Sprintf("%s: %s", ch, reason))
	}
	if len(parts) == 0 {
		return "no channels enabled"
	}
	return strings.Join(parts, "; ")
}
