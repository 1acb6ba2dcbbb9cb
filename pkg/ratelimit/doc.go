// Package ratelimit gates notification sends with sliding hourly and daily
// windows tracked per user, channel and optionally notification type, plus a
// per-user global window across all channels.
//
// A send is allowed only when both the scoped window and the global window
// have capacity. Checks never consume capacity; callers record usage after a
// send was actually attempted:
//
//	limiter, _ := ratelimit.New(ratelimit.NewMemoryStore(), ratelimit.DefaultConfig())
//
//	res, err := limiter.Check(ctx, userID, notification.ChannelEmail, req.Type)
//	if err != nil || !res.Allowed {
//	    // reject with res.Reason
//	}
//	// ... perform the send ...
//	_ = limiter.Record(ctx, userID, notification.ChannelEmail, req.Type)
//
// Windows are sliding: a timestamp counts toward a window only while
// now - timestamp < window length. Stale timestamps are pruned lazily.
//
// Two stores ship with the package: MemoryStore for tests and single-replica
// deployments, and RedisStore (sorted sets) for deployments where several
// replicas must share one source of truth.
package ratelimit
