package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/AndyVoronov/ObschiySbor-sub000/core/logger"

	"github.com/redis/go-redis/v9"
)

// Cache is a thin JSON cache over redis. A nil client degrades every
// operation to a miss so callers never have to branch on availability.
type Cache struct {
	client *redis.Client
}

type Config struct {
	Addr     string
	Password string
	DB       int
}

func New(cfg Config) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	logger.Info("Redis cache initialized", "addr", cfg.Addr, "db", cfg.DB)
	return &Cache{client: client}, nil
}

// GetJSON loads key into dest. Returns false on miss or decode failure.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) bool {
	if c == nil || c.client == nil {
		return false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		logger.Warn("Cache:GetJSON:Unmarshal", "key", key, "error", err)
		return false
	}
	return true
}

// SetJSON stores value under key with the given TTL. Failures are logged,
// never propagated; the cache is an optimization, not a dependency.
func (c *Cache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		logger.Warn("Cache:SetJSON:Marshal", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		logger.Warn("Cache:SetJSON:Set", "key", key, "error", err)
	}
}

func (c *Cache) Delete(ctx context.Context, key string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		logger.Warn("Cache:Delete", "key", key, "error", err)
	}
}

// Ping reports backend health for the health endpoint.
func (c *Cache) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return redis.ErrClosed
	}
	return c.client.Ping(ctx).Err()
}
