// Package sendtime decides whether now is a good moment to notify a user.
//
// The planner weighs the user's preferred hours and days (in their own
// timezone), the time since their previous notification, and a rolling
// hourly frequency cap. When it defers, it proposes the next acceptable
// delivery time; when it allows, it also suggests a priority adjusted for
// the user's engagement score.
//
//	planner := sendtime.New(sendtime.WithActivitySource(deliveryLog))
//	d, err := planner.ShouldSend(ctx, req, userCtx)
//	if err == nil && !d.ShouldSend {
//		sched.Schedule(ctx, req, *d.BestTime)
//	}
//
// The planner is advisory. Callers that need guaranteed delivery ignore it;
// callers optimizing for engagement consult it and reschedule deferrals.
package sendtime
