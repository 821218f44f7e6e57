package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "shortly:ratelimit:"

// RedisLimiter shares windows between replicas through Redis.
type RedisLimiter struct {
	client    redis.Cmdable
	limit     int
	period    time.Duration
	keyPrefix string
}

func NewRedisLimiter(client redis.Cmdable, limit int, period time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client:    client,
		limit:     limit,
		period:    period,
		keyPrefix: defaultKeyPrefix,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	const op = "ratelimit.RedisLimiter.Allow"

	key = l.keyPrefix + key

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pttl := pipe.PTTL(ctx, key)

	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, fmt.Errorf("%s: failed to count request: %w", op, err)
	}

	count := incr.Val()
	ttl := pttl.Val()

	// A negative TTL means the counter was just created and has no expiry yet.
	if ttl < 0 {
		if err := l.client.PExpire(ctx, key, l.period).Err(); err != nil {
			return Result{}, fmt.Errorf("%s: failed to set window expiry: %w", op, err)
		}
		ttl = l.period
	}

	return newResult(l.limit, count, ttl), nil
}
