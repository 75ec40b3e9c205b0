package ratelimit

import (
	"context"
	"errors"
	"time"
)

type slidingWindow interface {
	SlidingWindowHit(ctx context.Context, key string, now time.Time, window time.Duration) (int64, error)
	RateLimitKey(scope string) string
}

// RedisStore keeps sliding logs in Redis sorted sets so every instance shares buckets.
type RedisStore struct {
	client slidingWindow
}

// NewRedisStore wraps a redis client.
func NewRedisStore(client slidingWindow) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client required for rate limit store")
	}
	return &RedisStore{client: client}, nil
}

func (r *RedisStore) Hit(ctx context.Context, key string, now time.Time, window time.Duration) (int64, error) {
	return r.client.SlidingWindowHit(ctx, r.client.RateLimitKey(key), now, window)
}
