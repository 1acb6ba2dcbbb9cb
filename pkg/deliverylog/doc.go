// Package deliverylog records the lifecycle of every attempted notification
// send: sent, delivered, opened, clicked, failed or bounced. Entries are
// append-only; only status transitions keyed by (user_id, notification_id)
// update an existing entry.
//
// Beyond bookkeeping, the log derives aggregate statistics (delivery, open
// and click rates) and an engagement score consumed by send-time planning.
package deliverylog
