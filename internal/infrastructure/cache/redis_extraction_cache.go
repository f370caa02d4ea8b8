// Package cache stores vision extraction results so re-extracting an
// identical document does not call the model again.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/madhugraj/transact-ai-nexus-sub002/internal/application/extraction"
	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces extraction entries in a shared Redis
const DefaultKeyPrefix = "nexus:extraction:"

// RedisExtractionCache implements ExtractionCache using Redis.
// Entries are shared by every API instance.
type RedisExtractionCache struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisExtractionCache connects to Redis and verifies the connection
func NewRedisExtractionCache(cfg RedisConfig, keyPrefix string) (*RedisExtractionCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisExtractionCacheWithClient(client, keyPrefix), nil
}

// NewRedisExtractionCacheWithClient wraps an existing client
func NewRedisExtractionCacheWithClient(client *redis.Client, keyPrefix string) *RedisExtractionCache {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &RedisExtractionCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get returns the cached payload for key
func (c *RedisExtractionCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read extraction cache: %w", err)
	}
	return data, true, nil
}

// Set stores value under key; a non-positive ttl keeps it until evicted
func (c *RedisExtractionCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := c.client.Set(ctx, c.keyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write extraction cache: %w", err)
	}
	return nil
}

// Ping reports whether Redis is reachable
func (c *RedisExtractionCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (c *RedisExtractionCache) Close() error {
	return c.client.Close()
}

var _ extraction.ExtractionCache = (*RedisExtractionCache)(nil)
