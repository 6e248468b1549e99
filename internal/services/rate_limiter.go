package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter counts attempts per key inside a fixed window.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type redisLimiter struct {
	rdb    redis.Cmdable
	limit  int64
	window time.Duration
	prefix string
}

// NewRedisLimiter allows limit attempts per key within window (fixed window, INCR + EXPIRE).
func NewRedisLimiter(rdb redis.Cmdable, prefix string, limit int, window time.Duration) RateLimiter {
	return &redisLimiter{rdb: rdb, limit: int64(limit), window: window, prefix: prefix}
}

func (l *redisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := fmt.Sprintf("%s:%s", l.prefix, key)
	count, err := l.rdb.Incr(ctx, k).Result()
	if err != nil {
		return false, err
	}
	// TTL ставим на первом инкременте
	if count == 1 {
		if err := l.rdb.Expire(ctx, k, l.window).Err(); err != nil {
			return false, err
		}
	}
	return count <= l.limit, nil
}

type noLimit struct{}

func (noLimit) Allow(context.Context, string) (bool, error) { return true, nil }

// NoLimit is used when no redis address is configured.
func NoLimit() RateLimiter { return noLimit{} }
