package cache

import (
	"fmt"

	"github.com/madhugraj/transact-ai-nexus-sub002/internal/application/extraction"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/infrastructure/config"
	"go.uber.org/zap"
)

// defaultInMemoryItems bounds the fallback cache; extraction payloads are a few KB each
const defaultInMemoryItems = 1000

// ExtractionCacheFactory creates extraction caches based on configuration
type ExtractionCacheFactory struct {
	redisConfig           config.RedisConfig
	cacheConfig           config.CacheConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// ExtractionCacheFactoryOption is a functional option for configuring the factory
type ExtractionCacheFactoryOption func(*ExtractionCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) ExtractionCacheFactoryOption {
	return func(f *ExtractionCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to an in-memory cache
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) ExtractionCacheFactoryOption {
	return func(f *ExtractionCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewExtractionCacheFactory creates a new factory
func NewExtractionCacheFactory(redisCfg config.RedisConfig, cacheCfg config.CacheConfig, opts ...ExtractionCacheFactoryOption) *ExtractionCacheFactory {
	f := &ExtractionCacheFactory{
		redisConfig:           redisCfg,
		cacheConfig:           cacheCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateCache returns a Redis cache when Redis answers, otherwise an
// in-memory cache if fallback is allowed. A disabled cache returns nil.
func (f *ExtractionCacheFactory) CreateCache() (extraction.ExtractionCache, error) {
	if !f.cacheConfig.Enabled {
		f.logger.Info("Extraction cache disabled")
		return nil, nil
	}

	redisCache, err := NewRedisExtractionCache(RedisConfig{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}, f.cacheConfig.KeyPrefix)
	if err == nil {
		f.logger.Info("Using Redis extraction cache", zap.String("addr", f.redisConfig.Addr()))
		return redisCache, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for extraction cache but unavailable: %w", err)
	}
	f.logger.Warn("Redis unavailable, falling back to in-memory extraction cache",
		zap.Error(err),
	)
	return NewInMemoryExtractionCache(defaultInMemoryItems), nil
}
