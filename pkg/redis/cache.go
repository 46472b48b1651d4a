package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache provides typed caching utilities
// ⭐ SSOT: 캐시 헬퍼는 여기서만
type Cache struct {
	client *Client
	prefix string
}

// NewCache creates a new cache helper
func NewCache(client *Client, prefix string) *Cache {
	return &Cache{
		client: client,
		prefix: prefix,
	}
}

// Enabled reports whether values are actually stored
func (c *Cache) Enabled() bool {
	return c != nil && c.client.Enabled()
}

func (c *Cache) fullKey(key string) string {
	return fmt.Sprintf("%s:cache:%s", c.prefix, key)
}

// Get retrieves a cached value
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !c.client.Enabled() {
		return false, nil
	}

	data, err := c.client.Redis().Get(ctx, c.fullKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get failed: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal failed: %w", err)
	}

	return true, nil
}

// Set stores a value in cache with TTL
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.client.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}

	return c.client.Redis().Set(ctx, c.fullKey(key), data, ttl).Err()
}

// GetOrSet retrieves from cache or calls fn to populate it.
// Reports whether the value came from the cache.
// fn 에러는 캐시하지 않음 (엔진 에러는 결정적이므로 매번 즉시 반환)
func (c *Cache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, fn func() (interface{}, error)) (bool, error) {
	found, err := c.Get(ctx, key, dest)
	if err == nil && found {
		return true, nil
	}

	value, err := fn()
	if err != nil {
		return false, err
	}

	// 캐시 쓰기 실패는 요청 실패가 아님
	_ = c.Set(ctx, key, value, ttl)

	data, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("cache marshal failed: %w", err)
	}
	return false, json.Unmarshal(data, dest)
}

// Predefined TTLs
const (
	TTLShort  = 1 * time.Minute  // 스냅샷 기반 결과 (스냅샷 갱신 주기)
	TTLMedium = 10 * time.Minute // 요청 내 market_data 기반 결과
)

// RiskResultKey keys a portfolio result by pricing model and canonical request hash
func RiskResultKey(model, requestHash string) string {
	return fmt.Sprintf("risk:result:%s:%s", model, requestHash)
}

// SnapshotResultKey keys a result computed against a server snapshot version
func SnapshotResultKey(snapshotVersion int64, model, requestHash string) string {
	return fmt.Sprintf("risk:snapshot:%d:%s:%s", snapshotVersion, model, requestHash)
}
