// Package redis provides Redis connectivity for the rate limiter.
//
// It wraps go-redis with environment-driven configuration, startup retries
// and a readiness probe. The sliding-window rate limit counters live in
// Redis when notifications are dispatched from multiple replicas.
//
//	cfg := config.MustLoad[redis.Config]()
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	limiter := ratelimit.New(ratelimit.NewRedisStore(client), ratelimit.DefaultConfig())
package redis
