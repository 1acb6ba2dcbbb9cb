// Package dispatch orchestrates multi-channel notification delivery.
//
// The Orchestrator is the single entry point of the subsystem: scheduled
// sends, batches and digests all funnel through Orchestrator.Send. For each
// request it:
//
//  1. Resolves the user's per-type channel preferences (in-app and email
//     are enabled by default when no record exists).
//  2. Intersects them with the requested channels.
//  3. Independently per channel: checks the rate limiter, renders content,
//     executes the channel sender wrapped in classified retries, records
//     the rate-limit usage and the delivery attempt, and hands exhausted
//     sends to the retry processor for asynchronous reprocessing.
//
// Delivery is best effort across channels: the result is successful when at
// least one channel delivered, with per-channel detail preserved for the
// caller and the delivery log. Send returns an error only for programmer
// errors such as an unknown channel.
package dispatch
