// Package pg provides PostgreSQL connectivity for the notification stores.
//
// It wraps pgxpool with environment-driven configuration, startup retries
// and a readiness probe. The scheduled-notification storage builds on the
// pool this package hands out.
//
//	cfg := config.MustLoad[pg.Config]()
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer pool.Close()
//
//	storage := schedule.NewPgStorage(pool)
package pg
