package marketdata

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Requires a running Redis, e.g. OPTIONOMETER_REDIS_ADDR=localhost:6379.
func TestRedisCache(t *testing.T) {
	addr := os.Getenv("OPTIONOMETER_REDIS_ADDR")
	if addr == "" {
		t.Skip("OPTIONOMETER_REDIS_ADDR not set")
	}

	ctx := context.Background()
	cache, err := DialRedis(ctx, addr, 0)
	require.NoError(t, err)
	defer cache.Close()

	key := "optionometer:test:" + time.Now().Format(time.RFC3339Nano)
	t.Cleanup(func() { _ = cache.client.Del(ctx, key).Err() })

	_, ok, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, key, []byte(`{"s":"ok"}`), time.Minute))

	body, ok, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"s":"ok"}`, string(body))

	ttl, err := cache.client.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
