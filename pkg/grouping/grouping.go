package grouping

import (
	"fmt"
	"slices"
	"time"

	"github.com/notifykit/notifykit/pkg/notification"
)

// Options controls how notifications are collapsed into groups.
type Options struct {
	// ByType groups notifications sharing a type. When false every
	// notification becomes its own group.
	ByType bool

	// TimeWindow is the bucketing interval: notifications of the same type
	// falling into the same window are grouped. Defaults to one hour.
	TimeWindow time.Duration

	// MaxGroupSize caps how many notifications one group retains. When a
	// group overflows, the oldest items are dropped first but Count keeps
	// the true total. Defaults to 10.
	MaxGroupSize int
}

// DefaultOptions groups by type over one-hour windows with at most ten
// retained items per group.
func DefaultOptions() Options {
	return Options{
		ByType:       true,
		TimeWindow:   time.Hour,
		MaxGroupSize: 10,
	}
}

// Group is a collapsed set of related notifications. Latest is the most
// recent member and drives the group's position in the feed.
type Group struct {
	Type   notification.Type           `json:"type"`
	Label  string                      `json:"label"`
	Count  int                         `json:"count"`
	Latest notification.Notification   `json:"latest"`
	Items  []notification.Notification `json:"items"`
}

// Apply collapses notifications into groups for feed display. Grouping is
// pure: it never mutates the input and the same input always produces the
// same output. Groups are returned newest first by their latest member.
func Apply(notifs []notification.Notification, opts Options) []Group {
	if opts.TimeWindow <= 0 {
		opts.TimeWindow = time.Hour
	}
	if opts.MaxGroupSize <= 0 {
		opts.MaxGroupSize = 10
	}

	if len(notifs) == 0 {
		return nil
	}

	// Oldest first so appends keep group items chronological.
	sorted := slices.Clone(notifs)
	slices.SortFunc(sorted, func(a, b notification.Notification) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	type key struct {
		typ    notification.Type
		bucket int64
		id     string
	}

	index := make(map[key]int)
	var groups []*Group
	for _, n := range sorted {
		k := key{typ: n.Type}
		if opts.ByType {
			k.bucket = n.CreatedAt.UnixNano() / int64(opts.TimeWindow)
		} else {
			k.id = n.ID
		}

		i, ok := index[k]
		if !ok {
			index[k] = len(groups)
			groups = append(groups, &Group{Type: n.Type})
			i = len(groups) - 1
		}

		g := groups[i]
		g.Count++
		g.Latest = n
		g.Items = append(g.Items, n)
		if len(g.Items) > opts.MaxGroupSize {
			g.Items = g.Items[1:]
		}
	}

	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		if g.Count == 1 {
			g.Label = g.Latest.Title
		} else {
			g.Label = fmt.Sprintf("%d %s", g.Count, g.Type.Label())
		}
		out = append(out, *g)
	}
	slices.SortFunc(out, func(a, b Group) int {
		return b.Latest.CreatedAt.Compare(a.Latest.CreatedAt)
	})
	return out
}
