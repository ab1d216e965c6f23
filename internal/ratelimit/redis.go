package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ratelimit:"

// RedisStore shares counters between instances through Redis.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore creates a store over client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// Increment records a hit with INCR and starts the window on the first hit.
func (s *RedisStore) Increment(ctx context.Context, key string, limit int, window time.Duration) (Result, error) {
	key = redisKeyPrefix + key

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return Result{}, err
	}

	ttl, err := s.client.PTTL(ctx, key).Result()
	if err != nil {
		return Result{}, err
	}
	// A key without expiry means the window was never started.
	if count == 1 || ttl < 0 {
		if err := s.client.PExpire(ctx, key, window).Err(); err != nil {
			return Result{}, err
		}
		ttl = window
	}

	return Result{
		Allowed:   count <= int64(limit),
		Remaining: max(limit-int(count), 0),
		ResetAt:   time.Now().Add(ttl),
	}, nil
}
