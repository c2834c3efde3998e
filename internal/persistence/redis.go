package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/staffdesk/staffdesk/internal/config"
)

const trendKeyPrefix = "staffdesk:trends:"

// Redis wraps the go-redis client.
type Redis struct {
	Client *redis.Client
}

// NewRedis builds a client for the provided configuration. It returns nil
// when the cache is disabled. No connection is made until first use; call
// Ping to check reachability.
func NewRedis(cfg config.RedisConfig) *Redis {
	if !cfg.Enabled() {
		return nil
	}
	return &Redis{Client: redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})}
}

// OpenTrendCache connects the trend cache. An unreachable server is logged
// and the cache is left off, so trends are computed on every request.
func OpenTrendCache(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*Redis, *TrendCache) {
	r := NewRedis(cfg)
	if r == nil {
		return nil, nil
	}
	if err := r.Ping(ctx); err != nil {
		logger.Warn("unable to reach redis, trend cache disabled", zap.String("addr", cfg.Addr), zap.Error(err))
		r.Close()
		return nil, nil
	}
	logger.Info("connected to redis", zap.String("addr", cfg.Addr))
	return r, NewTrendCache(r, cfg.TrendTTL())
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

// TrendCache stores JSON-encoded trend results under a shared key prefix.
type TrendCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTrendCache returns a cache backed by r.
func NewTrendCache(r *Redis, ttl time.Duration) *TrendCache {
	return &TrendCache{client: r.Client, ttl: ttl}
}

// Get decodes the cached value for key into dst. It reports false on a miss.
func (c *TrendCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := c.client.Get(ctx, trendKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores value under key.
func (c *TrendCache) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, trendKeyPrefix+key, raw, c.ttl).Err()
}

// Clear drops every cached trend.
func (c *TrendCache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, trendKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
