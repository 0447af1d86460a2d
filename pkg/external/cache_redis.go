package external

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rx-interaction-engine/internal/domain"
)

// pairKeyPrefix namespaces merged pair results so Clear never touches keys
// owned by other tenants of the same Redis instance.
const pairKeyPrefix = "rx:pair:"

// RedisResultCache implements domain.ResultCache on Redis. Cached values are
// wrapped in an envelope carrying their own expiry so a nil record (a cached
// "no interaction" outcome) is distinguishable from a cache miss.
type RedisResultCache struct {
	client     *redis.Client
	defaultTTL time.Duration
}

// cachedPairResult is the stored envelope for one merged pair result.
type cachedPairResult struct {
	Record    *domain.InteractionRecord `json:"data"`
	CachedAt  time.Time                 `json:"cached_at"`
	ExpiresAt time.Time                 `json:"expires_at"`
}

// NewRedisResultCache creates a Redis-backed result cache and verifies the
// connection.
func NewRedisResultCache(cfg domain.CacheConfig) (*RedisResultCache, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.PoolTimeout > 0 {
		opts.PoolTimeout = cfg.PoolTimeout
	}
	if cfg.MaxRetries > 0 {
		opts.MaxRetries = cfg.MaxRetries
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisResultCache{
		client:     client,
		defaultTTL: cfg.DefaultTTL,
	}, nil
}

// Get returns the cached merged record for a canonical pair key.
func (c *RedisResultCache) Get(ctx context.Context, key string) (*domain.InteractionRecord, bool, error) {
	val, err := c.client.Get(ctx, pairKeyPrefix+key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, domain.NewCacheError("get", err)
	}

	var cached cachedPairResult
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		// Corrupted entries are dropped and treated as misses.
		c.client.Del(ctx, pairKeyPrefix+key)
		return nil, false, nil
	}
	if time.Now().After(cached.ExpiresAt) {
		c.client.Del(ctx, pairKeyPrefix+key)
		return nil, false, nil
	}

	return cached.Record, true, nil
}

// Set stores the merged record (possibly nil) under the pair key.
func (c *RedisResultCache) Set(ctx context.Context, key string, record *domain.InteractionRecord, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}

	cached := cachedPairResult{
		Record:    record,
		CachedAt:  time.Now(),
		ExpiresAt: time.Now().Add(ttl),
	}
	data, err := json.Marshal(cached)
	if err != nil {
		return domain.NewCacheError("set", err)
	}

	if err := c.client.Set(ctx, pairKeyPrefix+key, data, ttl).Err(); err != nil {
		return domain.NewCacheError("set", err)
	}
	return nil
}

// Clear invalidates every cached pair result. It is idempotent: clearing an
// already empty cache succeeds.
func (c *RedisResultCache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, pairKeyPrefix+"*", 0).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return domain.NewCacheError("clear", err)
	}
	if len(keys) == 0 {
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return domain.NewCacheError("clear", err)
	}
	return nil
}

// Ping checks the Redis connection for health reporting.
func (c *RedisResultCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *RedisResultCache) Close() error {
	return c.client.Close()
}
