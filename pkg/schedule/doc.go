// Package schedule provides deferred notification delivery.
//
// Notifications are persisted with a future delivery time and picked up by a
// periodic sweep that hands due items to the dispatch orchestrator. Claiming
// transitions rows from pending to processing atomically, so multiple
// application instances can sweep the same storage without duplicate sends;
// the PostgreSQL implementation uses FOR UPDATE SKIP LOCKED for this.
// Claims carry a lease (see WithLease): if a sweep crashes mid-batch, its
// processing rows become claimable again once the lease runs out.
//
// Basic usage:
//
//	pool, _ := pg.Connect(ctx, pgCfg)
//	sched := schedule.New(schedule.NewPgStorage(pool), orchestrator)
//
//	id, err := sched.Schedule(ctx, notification.Request{
//		UserID:   "user-1",
//		Type:     notification.TypeBookingReminder,
//		Title:    "Upcoming session",
//		Message:  "Your session starts in one hour.",
//		Channels: []notification.Channel{notification.ChannelEmail},
//	}, time.Now().Add(24*time.Hour))
//
// Pending notifications can be cancelled until the sweep claims them:
//
//	if err := sched.Cancel(ctx, id, "user-1"); err != nil {
//		// schedule.ErrNotPending: already sent, failed or cancelled
//	}
//
// Run the sweep with the shared periodic runner:
//
//	runner, _ := sweep.New("schedule", time.Minute, func(ctx context.Context) error {
//		_, err := sched.ProcessDue(ctx)
//		return err
//	})
//	runner.Start(ctx)
package schedule
