// Package cache provides a resolve cache for the redirect path, mapping
// slugs to target URLs so hot links skip the database lookup.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when the slug is not present in the cache.
var ErrCacheMiss = errors.New("cache miss")

// ResolveCache caches resolved slug -> target URL pairs.
type ResolveCache interface {
	Get(ctx context.Context, slug string) (string, error)
	Set(ctx context.Context, slug, targetURL string) error
	Invalidate(ctx context.Context, slug string) error
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
	}
}

func key(slug string) string {
	return "resolve:" + slug
}

func (c *RedisCache) Get(ctx context.Context, slug string) (string, error) {
	const op = "cache.RedisCache.Get"

	targetURL, err := c.client.Get(ctx, key(slug)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", fmt.Errorf("%s: %w", op, ErrCacheMiss)
		}

		return "", fmt.Errorf("%s: failed to get cached url: %w", op, err)
	}

	return targetURL, nil
}

func (c *RedisCache) Set(ctx context.Context, slug, targetURL string) error {
	const op = "cache.RedisCache.Set"

	if err := c.client.Set(ctx, key(slug), targetURL, c.ttl).Err(); err != nil {
		return fmt.Errorf("%s: failed to cache url: %w", op, err)
	}

	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, slug string) error {
	const op = "cache.RedisCache.Invalidate"

	if err := c.client.Del(ctx, key(slug)).Err(); err != nil {
		return fmt.Errorf("%s: failed to invalidate cached url: %w", op, err)
	}

	return nil
}
