package service

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rol3ert99/CookbookAPP-backend/internal/testhelpers"
)

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, ideasKey("prompt", true), ideasKey("prompt", true))
	assert.NotEqual(t, ideasKey("prompt", true), ideasKey("prompt", false))
	assert.NotEqual(t, ideasKey("a", true), ideasKey("b", true))
	assert.NotEqual(t, stepsKey("prompt"), ideasKey("prompt", false))
	assert.Regexp(t, `^ideas:[0-9a-f]{64}$`, ideasKey("prompt", true))
}

func TestRedisCache(t *testing.T) {
	url := testhelpers.StartRedis(t)
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	defer client.Close()

	ctx := context.Background()
	cache := NewRedisCache(client, "cookbook:", time.Minute)

	_, err = cache.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, cache.Set(ctx, "k", []byte(`{"dishes":[]}`)))

	data, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"dishes":[]}`, string(data))

	ttl, err := client.TTL(ctx, "cookbook:k").Result()
	require.NoError(t, err)
	assert.InDelta(t, time.Minute.Seconds(), ttl.Seconds(), 5)
}
