package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"instra/internal/domain/access"
	"instra/internal/shared/config"
)

// RedisPermissionCache backs the permission cache port with Redis. Values
// are JSON-encoded string slices (or override pairs) under the typed keys.
type RedisPermissionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisPermissionCache(client *redis.Client, ttl time.Duration) *RedisPermissionCache {
	return &RedisPermissionCache{client: client, ttl: ttl}
}

// NewRedisClient builds a go-redis client from the shared config section.
func NewRedisClient(cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

func (c *RedisPermissionCache) GetCodes(ctx context.Context, key access.CacheKey) ([]string, bool, error) {
	raw, err := c.client.Get(ctx, string(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache key %s: %w", key, err)
	}

	var codes []string
	if err := json.Unmarshal(raw, &codes); err != nil {
		return nil, false, fmt.Errorf("failed to decode cache key %s: %w", key, err)
	}
	return codes, true, nil
}

func (c *RedisPermissionCache) SetCodes(ctx context.Context, key access.CacheKey, codes []string) error {
	if codes == nil {
		codes = []string{}
	}
	raw, err := json.Marshal(codes)
	if err != nil {
		return fmt.Errorf("failed to encode cache key %s: %w", key, err)
	}
	if err := c.client.Set(ctx, string(key), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache key %s: %w", key, err)
	}
	return nil
}

func (c *RedisPermissionCache) GetOverrides(ctx context.Context, key access.CacheKey) (*access.OverrideCodes, bool, error) {
	raw, err := c.client.Get(ctx, string(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache key %s: %w", key, err)
	}

	var codes access.OverrideCodes
	if err := json.Unmarshal(raw, &codes); err != nil {
		return nil, false, fmt.Errorf("failed to decode cache key %s: %w", key, err)
	}
	return &codes, true, nil
}

func (c *RedisPermissionCache) SetOverrides(ctx context.Context, key access.CacheKey, codes *access.OverrideCodes) error {
	raw, err := json.Marshal(codes)
	if err != nil {
		return fmt.Errorf("failed to encode cache key %s: %w", key, err)
	}
	if err := c.client.Set(ctx, string(key), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache key %s: %w", key, err)
	}
	return nil
}

func (c *RedisPermissionCache) Delete(ctx context.Context, keys ...access.CacheKey) error {
	if len(keys) == 0 {
		return nil
	}
	raw := make([]string, 0, len(keys))
	for _, k := range keys {
		raw = append(raw, string(k))
	}
	if err := c.client.Del(ctx, raw...).Err(); err != nil {
		return fmt.Errorf("failed to delete cache keys: %w", err)
	}
	return nil
}
