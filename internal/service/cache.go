package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by Cache.Get when nothing is stored under a key
var ErrCacheMiss = errors.New("cache miss")

// Cache stores serialized responses by key
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// RedisCache is a Cache backed by Redis with a fixed TTL per entry
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache creates a cache storing entries under prefix for ttl
func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}
	return data, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	if err := c.client.Set(ctx, c.prefix+key, value, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// ideasKey hashes the rendered prompt together with the image flag, so a
// change to the vocabulary or templates never serves stale entries.
func ideasKey(prompt string, images bool) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("ideas|images=%t|%s", images, prompt)))
	return "ideas:" + hex.EncodeToString(sum[:])
}

func stepsKey(prompt string) string {
	sum := sha256.Sum256([]byte("steps|" + prompt))
	return "steps:" + hex.EncodeToString(sum[:])
}

// cached decodes the entry under key into a T. Any failure counts as a miss.
func cached[T any](ctx context.Context, s *IdeasService, key string) (*T, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			s.log.Warn("cache read failed", "error", err)
		}
		return nil, false
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		s.log.Warn("discarding unreadable cache entry", "key", key, "error", err)
		return nil, false
	}
	return &v, true
}

func (s *IdeasService) store(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		s.log.Warn("failed to encode cache entry", "error", err)
		return
	}
	if err := s.cache.Set(ctx, key, data); err != nil {
		s.log.Warn("cache write failed", "error", err)
	}
}
