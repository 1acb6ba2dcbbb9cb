// Package notification defines the shared domain model for the notification
// delivery subsystem: channels, priorities, notification types, the immutable
// delivery request, rendered content, and the read-side notification store
// that powers the in-app feed, digests and grouping.
//
// The package deliberately contains no delivery logic. Orchestration lives in
// pkg/dispatch, channel adapters in pkg/sender, and bookkeeping in
// pkg/deliverylog.
package notification
