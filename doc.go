// Package notifykit is a multi-channel notification delivery toolkit.
//
// The packages under pkg/ compose into a delivery pipeline:
//
//   - notification: core request, notification and preference types with
//     in-app feed storage
//   - dispatch: the orchestrator fanning a request out across channels
//   - sender: channel senders (in-app feed, Postmark email)
//   - ratelimit: sliding-window per-user, per-channel send limits
//   - retry: backoff with jitter, a retry queue and dead-lettering
//   - deliverylog: per-attempt delivery records and engagement stats
//   - template: content templates, placeholder substitution, translations
//   - schedule: future-dated sends with pluggable storage
//   - batch: chunked bulk sends to many recipients
//   - digest: periodic summaries of unread low-priority notifications
//   - grouping: collapsing notification bursts for feed display
//   - sendtime: advisory planning of when a user should be notified
//   - sweep: a shared background loop driving the periodic processors
//
// The remaining packages (config, logger, pg, redis) carry the ambient
// concerns. Each package documents its own usage; dispatch is the usual
// entry point.
package notifykit
