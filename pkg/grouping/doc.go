// Package grouping collapses bursts of similar notifications for feed
// display.
//
// Five "order payment received" notifications within an hour become one
// group labeled "5 order payments" instead of five separate feed entries.
// Grouping is a pure presentation-time transformation: stored notifications
// are untouched and ungrouped queries still see every item.
//
//	groups := grouping.Apply(notifs, grouping.DefaultOptions())
//	for _, g := range groups {
//		fmt.Println(g.Label, g.Latest.CreatedAt)
//	}
package grouping
