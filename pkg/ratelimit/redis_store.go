package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on Redis sorted sets, one set per counter key
// with send timestamps as scores. Because every replica reads and writes the
// same sets, the counters behave correctly under concurrent replicas.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithKeyPrefix sets the key namespace prefix. Defaults to "ratelimit".
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// NewRedisStore creates a Redis-backed sliding window store.
func NewRedisStore(client redis.UniversalClient, opts ...RedisStoreOption) (*RedisStore, error) {
	if client == nil {
		return nil, ErrStoreRequired
	}

	s := &RedisStore{
		client: client,
		prefix: "ratelimit",
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *RedisStore) key(key string) string {
	return s.prefix + ":" + key
}

func (s *RedisStore) Record(ctx context.Context, key string, at time.Time) error {
	rkey := s.key(key)

	pipe := s.client.TxPipeline()
	pipe.ZAdd(ctx, rkey, redis.Z{
		Score: float64(at.UnixNano()),
		// Unique member so two sends in the same nanosecond both count
		Member: strconv.FormatInt(at.UnixNano(), 10) + ":" + uuid.NewString(),
	})
	// Keep the set bounded: entries older than the daily window are dead
	pipe.ZRemRangeByScore(ctx, rkey, "-inf", strconv.FormatInt(at.Add(-DayWindow).UnixNano(), 10))
	pipe.Expire(ctx, rkey, DayWindow+time.Hour)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record timestamp: %w", err)
	}
	return nil
}

func (s *RedisStore) CountSince(ctx context.Context, key string, since time.Time) (int, time.Time, error) {
	rkey := s.key(key)
	minScore := strconv.FormatInt(since.UnixNano(), 10)

	count, err := s.client.ZCount(ctx, rkey, minScore, "+inf").Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("count window: %w", err)
	}
	if count == 0 {
		return 0, time.Time{}, nil
	}

	oldest, err := s.client.ZRangeByScoreWithScores(ctx, rkey, &redis.ZRangeBy{
		Min:   minScore,
		Max:   "+inf",
		Count: 1,
	}).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("oldest in window: %w", err)
	}

	var oldestAt time.Time
	if len(oldest) > 0 {
		oldestAt = time.Unix(0, int64(oldest[0].Score))
	}
	return int(count), oldestAt, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}
