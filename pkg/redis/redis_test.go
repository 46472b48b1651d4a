package redis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/optrisk/pkg/config"
)

func TestNewClient_Disabled(t *testing.T) {
	cfg := &config.Config{Redis: config.RedisConfig{Enabled: false}}

	client, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.False(t, client.Enabled())
	assert.NoError(t, client.Ping(context.Background()))
	assert.NoError(t, client.Close())
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(Disabled(), "test")
	cfg := ClientRateLimit("127.0.0.1", 5)

	// When Redis is disabled, all requests should be allowed
	for i := 0; i < 10; i++ {
		allowed, remaining, err := limiter.Allow(context.Background(), cfg)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, cfg.Limit, remaining)
	}
	assert.False(t, limiter.Enabled())
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(Disabled(), "test")
	ctx := context.Background()

	var result string
	found, err := cache.Get(ctx, "key", &result)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, cache.Set(ctx, "key", "value", time.Minute))
}

func TestCache_GetOrSetDisabledAlwaysComputes(t *testing.T) {
	cache := NewCache(Disabled(), "test")
	calls := 0
	fn := func() (interface{}, error) {
		calls++
		return map[string]float64{"total_pv": 1.5}, nil
	}

	var dest map[string]float64
	hit, err := cache.GetOrSet(context.Background(), "k", &dest, time.Minute, fn)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 1.5, dest["total_pv"])

	_, err = cache.GetOrSet(context.Background(), "k", &dest, time.Minute, fn)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestCache_GetOrSetPropagatesError(t *testing.T) {
	cache := NewCache(Disabled(), "test")
	boom := errors.New("boom")

	var dest int
	_, err := cache.GetOrSet(context.Background(), "k", &dest, time.Minute, func() (interface{}, error) {
		return nil, boom
	})
	assert.Same(t, boom, err)
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "risk:result:black_scholes:abc", RiskResultKey("black_scholes", "abc"))
	assert.Equal(t, "risk:snapshot:42:binomial(steps=500):abc", SnapshotResultKey(42, "binomial(steps=500)", "abc"))
	assert.Equal(t, "client:10.0.0.1", ClientRateLimit("10.0.0.1", 3).Key)
}

// REDIS_HOST 가 설정된 경우에만 실행
func TestRateLimiter_Live(t *testing.T) {
	if os.Getenv("REDIS_HOST") == "" {
		t.Skip("REDIS_HOST not set, skipping integration test")
	}
	t.Setenv("REDIS_ENABLED", "true")
	cfg, err := config.Load()
	require.NoError(t, err)

	client, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer client.Close()

	limiter := NewRateLimiter(client, "optrisk-test-"+time.Now().Format("150405.000"))
	rl := RateLimitConfig{Key: "live", Limit: 3, Window: time.Minute}
	for i := 0; i < 3; i++ {
		allowed, _, err := limiter.Allow(context.Background(), rl)
		require.NoError(t, err)
		assert.True(t, allowed)
	}
	allowed, remaining, err := limiter.Allow(context.Background(), rl)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Zero(t, remaining)
}
