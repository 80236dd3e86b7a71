package cache

import (
	"fmt"

	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/adfinitum/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Factory builds the Redis-backed stores the server needs from one shared
// client, or their in-memory counterparts when Redis is unavailable
type Factory struct {
	client                redis.UniversalClient
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// FactoryOption configures a Factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether a Redis outage falls back to
// in-memory stores. Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory connects to Redis. When the connection fails and fallback is
// allowed the factory is returned without a client.
func NewFactory(cfg config.RedisConfig, opts ...FactoryOption) (*Factory, error) {
	f := &Factory{logger: zap.NewNop(), allowInMemoryFallback: true}
	for _, opt := range opts {
		opt(f)
	}

	client, err := NewRedisClient(cfg)
	if err != nil {
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("redis required but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory stores. "+
			"Token revocation and callback deduplication will not be shared between instances.",
			zap.Error(err))
		return f, nil
	}
	f.client = client
	f.logger.Info("connected to Redis", zap.String("addr", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)))
	return f, nil
}

// NewFactoryWithClient wraps an existing client; nil selects in-memory stores
func NewFactoryWithClient(client redis.UniversalClient, logger *zap.Logger) *Factory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Factory{client: client, logger: logger, allowInMemoryFallback: true}
}

// Client returns the shared Redis client, nil in fallback mode
func (f *Factory) Client() redis.UniversalClient {
	return f.client
}

// IdempotencyStore returns the store used to deduplicate payment callbacks
func (f *Factory) IdempotencyStore() shared.IdempotencyStore {
	if f.client == nil {
		return NewInMemoryIdempotencyStore()
	}
	return NewRedisIdempotencyStore(f.client, "adf:mpesa:callback:")
}

// TokenCache returns the cache for outbound OAuth tokens
func (f *Factory) TokenCache() TokenCache {
	if f.client == nil {
		return NewInMemoryTokenCache()
	}
	return NewRedisTokenCache(f.client)
}

// Close releases the shared client
func (f *Factory) Close() error {
	if f.client == nil {
		return nil
	}
	return f.client.Close()
}
