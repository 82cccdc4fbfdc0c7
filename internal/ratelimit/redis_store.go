package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is the shared attempt store for multi-instance deployments.
// INCR is atomic server-side; the expiry is attached once when the key is
// first created so the window is fixed, not sliding per attempt.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	redisKey := fmt.Sprintf("slotshare:ratelimit:%s", key)

	count, err := s.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return 0, time.Time{}, err
	}
	if count == 1 {
		if err := s.client.Expire(ctx, redisKey, window).Err(); err != nil {
			return 0, time.Time{}, err
		}
	}

	ttl, err := s.client.TTL(ctx, redisKey).Result()
	if err != nil {
		return int(count), time.Now().Add(window), nil
	}
	return int(count), time.Now().Add(ttl), nil
}
