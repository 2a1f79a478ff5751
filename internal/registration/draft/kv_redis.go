package draft

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"onboard/pkg/platform/sentinel"
)

// Redis key prefix for registration drafts. The rest of the key is the
// session identifier; no other component writes under this prefix.
const redisKeyPrefix = "onboard:draft:"

// RedisKV is the Redis-backed KV surface. This is the production
// implementation for deployments with more than one instance.
type RedisKV struct {
	client *redis.Client
}

// NewRedisKV wraps an existing Redis client. Client lifecycle is managed by
// the caller.
func NewRedisKV(client *redis.Client) *RedisKV {
	return &RedisKV{client: client}
}

func (kv *RedisKV) Get(ctx context.Context, key string) (string, error) {
	value, err := kv.client.Get(ctx, redisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get: %w", err)
	}
	return value, nil
}

func (kv *RedisKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := kv.client.Set(ctx, redisKeyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (kv *RedisKV) Remove(ctx context.Context, key string) error {
	if err := kv.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
