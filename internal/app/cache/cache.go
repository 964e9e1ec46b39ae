package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// EmbeddingCache stores query embeddings so repeated searches skip the
// provider round trip.
type EmbeddingCache interface {
	GetVector(ctx context.Context, key string) ([]float32, bool)
	PutVector(ctx context.Context, key string, vec []float32)
	Close() error
}

const defaultTTL = 15 * time.Minute

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.SugaredLogger
}

func NewRedisCache(addr string, log *zap.SugaredLogger) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisCache{client: client, ttl: defaultTTL, log: log}
}

func (c *RedisCache) GetVector(ctx context.Context, key string) ([]float32, bool) {
	raw, err := c.client.Get(ctx, c.namespaced(key)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.log.Warnw("embedding cache read failed", "key", key, "error", err)
		return nil, false
	}
	var vec []float32
	if err := json.Unmarshal(raw, &vec); err != nil {
		c.log.Warnw("embedding cache entry corrupted, dropping", "key", key, "error", err)
		c.client.Del(ctx, c.namespaced(key))
		return nil, false
	}
	return vec, true
}

func (c *RedisCache) PutVector(ctx context.Context, key string, vec []float32) {
	raw, err := json.Marshal(vec)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.namespaced(key), raw, c.ttl).Err(); err != nil {
		c.log.Warnw("embedding cache write failed", "key", key, "error", err)
	}
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) namespaced(key string) string {
	return "videoapi:queryvec:" + key
}

// NoopCache disables caching. Used when no redis address is configured
// and in tests that must always hit the embedder.
type NoopCache struct{}

func (NoopCache) GetVector(context.Context, string) ([]float32, bool) { return nil, false }
func (NoopCache) PutVector(context.Context, string, []float32)        {}
func (NoopCache) Close() error                                        { return nil }
