// Package digest aggregates unread notifications into periodic summaries.
//
// Instead of emailing every low-urgency event as it happens, a daily or
// weekly digest collects a user's unread low and normal priority
// notifications and delivers one summary. High and urgent notifications are
// never digested. Period boundaries respect the user's timezone: daily
// digests cover everything since local midnight, weekly ones since the most
// recent Monday.
//
//	agg := digest.New(store, orchestrator,
//		digest.WithTranslator(translator),
//		digest.WithUserResolver(users),
//		digest.WithUserSource(subscriptions),
//	)
//	stats, err := agg.ProcessPeriod(ctx, digest.PeriodDaily)
//
// ProcessPeriod asks the configured UserSource for the period's subscribers;
// ProcessDigests takes an explicit user list when the caller already has one.
//
// Source notifications are marked read only after the digest is delivered;
// a failed send leaves them in place for the next run.
package digest
