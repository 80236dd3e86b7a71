package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenCache holds short-lived bearer tokens for outbound APIs, such as
// the Daraja OAuth access token, until shortly before they expire
type TokenCache interface {
	// Get returns the cached token and whether it was found
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, token string, ttl time.Duration) error
}

const tokenCachePrefix = "adf:token-cache:"

// RedisTokenCache stores tokens in Redis
type RedisTokenCache struct {
	client redis.UniversalClient
}

// NewRedisTokenCache creates a token cache on an existing client
func NewRedisTokenCache(client redis.UniversalClient) *RedisTokenCache {
	return &RedisTokenCache{client: client}
}

// Get reads a cached token
func (c *RedisTokenCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, tokenCachePrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read cached token: %w", err)
	}
	return val, true, nil
}

// Set stores a token for ttl
func (c *RedisTokenCache) Set(ctx context.Context, key, token string, ttl time.Duration) error {
	if err := c.client.Set(ctx, tokenCachePrefix+key, token, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache token: %w", err)
	}
	return nil
}

// InMemoryTokenCache stores tokens in process memory
type InMemoryTokenCache struct {
	mu      sync.RWMutex
	entries map[string]cachedToken
	now     func() time.Time
}

type cachedToken struct {
	value     string
	expiresAt time.Time
}

// NewInMemoryTokenCache creates an empty in-memory token cache
func NewInMemoryTokenCache() *InMemoryTokenCache {
	return &InMemoryTokenCache{entries: make(map[string]cachedToken), now: time.Now}
}

// Get returns the token while it is still valid
func (c *InMemoryTokenCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expiresAt) {
		return "", false, nil
	}
	return e.value, true, nil
}

// Set stores a token for ttl
func (c *InMemoryTokenCache) Set(_ context.Context, key, token string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cachedToken{value: token, expiresAt: c.now().Add(ttl)}
	return nil
}

var (
	_ TokenCache = (*RedisTokenCache)(nil)
	_ TokenCache = (*InMemoryTokenCache)(nil)
)
