package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AltairaLabs/CallKit/config"
	"github.com/AltairaLabs/CallKit/logger"
)

const defaultConfigTTL = 5 * time.Minute

// RedisConfigCache is a read-through cache in front of an AgentConfigStore.
// Agent configurations are read on every session start, so caching them
// keeps the backing store off the hot path. Misses and backend errors fall
// through to the inner store; cache write failures are logged, never
// surfaced.
type RedisConfigCache struct {
	client *redis.Client
	inner  AgentConfigStore
	ttl    time.Duration
	prefix string
}

// RedisOption configures a RedisConfigCache.
type RedisOption func(*RedisConfigCache)

// WithTTL sets how long cached configurations live. Default is 5 minutes,
// bounding how stale a tenant's config can be after an update.
func WithTTL(ttl time.Duration) RedisOption {
	return func(c *RedisConfigCache) {
		c.ttl = ttl
	}
}

// WithPrefix sets the Redis key prefix. Default is "callkit".
func WithPrefix(prefix string) RedisOption {
	return func(c *RedisConfigCache) {
		c.prefix = prefix
	}
}

// NewRedisConfigCache wraps an AgentConfigStore with a Redis cache.
func NewRedisConfigCache(client *redis.Client, inner AgentConfigStore, opts ...RedisOption) *RedisConfigCache {
	c := &RedisConfigCache{
		client: client,
		inner:  inner,
		ttl:    defaultConfigTTL,
		prefix: "callkit",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the tenant's configuration, from cache when possible.
func (c *RedisConfigCache) Get(ctx context.Context, tenantID string) (*config.AgentConfig, error) {
	if tenantID == "" {
		return nil, ErrInvalidID
	}

	key := c.configKey(tenantID)
	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var cfg config.AgentConfig
		if err := json.Unmarshal(data, &cfg); err == nil {
			return &cfg, nil
		}
		// Corrupt cache entry: drop it and fall through to the inner store.
		c.client.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		logger.Warn("agent config cache read failed", "tenant_id", tenantID, "error", err)
	}

	cfg, err := c.inner.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(cfg); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			logger.Warn("agent config cache write failed", "tenant_id", tenantID, "error", err)
		}
	}
	return cfg, nil
}

// Invalidate removes a tenant's cached configuration, forcing the next Get
// to hit the inner store.
func (c *RedisConfigCache) Invalidate(ctx context.Context, tenantID string) error {
	return c.client.Del(ctx, c.configKey(tenantID)).Err()
}

func (c *RedisConfigCache) configKey(tenantID string) string {
	return fmt.Sprintf("%s:agent-config:%s", c.prefix, tenantID)
}
