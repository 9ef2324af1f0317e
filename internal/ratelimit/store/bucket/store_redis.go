package bucket

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"doccheck/internal/ratelimit/models"
)

const redisKeyPrefix = "doccheck:ratelimit:"

// RedisStore is a fixed window limiter shared by every replica that points at
// the same redis. Each window is one counter key that expires with the window.
type RedisStore struct {
	client redis.UniversalClient
	now    func() time.Time
}

// NewRedisStore wraps client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

// Allow counts one request against key.
func (s *RedisStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error) {
	return s.AllowN(ctx, key, 1, limit, window)
}

// AllowN counts cost requests against key. Unlike the in-memory store a
// denied request still consumes the window, so a caller hammering a closed
// window stays closed until it rolls over.
func (s *RedisStore) AllowN(ctx context.Context, key string, cost int, limit int, window time.Duration) (*models.RateLimitResult, error) {
	now := s.now()
	start := now.Truncate(window)
	resetAt := start.Add(window)
	windowKey := fmt.Sprintf("%s%s:%d", redisKeyPrefix, key, start.Unix())

	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.IncrBy(ctx, windowKey, int64(cost))
		pipe.ExpireAt(ctx, windowKey, resetAt.Add(time.Second))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("redis rate limit %s: %w", key, err)
	}

	count := int(incr.Val())
	if count > limit {
		return &models.RateLimitResult{
			Allowed:    false,
			Limit:      limit,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: models.RetryAfterSeconds(now, resetAt),
		}, nil
	}
	return &models.RateLimitResult{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - count,
		ResetAt:   resetAt,
	}, nil
}
