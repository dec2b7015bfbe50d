package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"go-newspulse/internal/metrics"
	"go-newspulse/internal/model"
)

// RedisCache shares aggregation results between instances. Redis failures degrade to
// cache misses.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, prefix: "newspulse:"}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]model.Article, bool) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("redis cache get failed", "key", key, "error", err)
		}
		metrics.CacheRequests.WithLabelValues("redis", "miss").Inc()
		return nil, false
	}

	var articles []model.Article
	if err := json.Unmarshal(data, &articles); err != nil {
		slog.Warn("redis cache payload unreadable", "key", key, "error", err)
		metrics.CacheRequests.WithLabelValues("redis", "miss").Inc()
		return nil, false
	}
	metrics.CacheRequests.WithLabelValues("redis", "hit").Inc()
	return articles, true
}

func (c *RedisCache) Set(ctx context.Context, key string, articles []model.Article) {
	data, err := json.Marshal(articles)
	if err != nil {
		slog.Warn("redis cache encode failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		slog.Warn("redis cache set failed", "key", key, "error", err)
	}
}

func (c *RedisCache) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		slog.Warn("redis cache delete failed", "key", key, "error", err)
	}
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
