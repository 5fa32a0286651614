package cache

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/erp/pos/internal/application/monitor"
	"github.com/erp/pos/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ClaimStore is a monitor.ClaimStore that owns resources
type ClaimStore interface {
	monitor.ClaimStore
	io.Closer
}

// ClaimStoreFactory creates claim stores based on configuration
type ClaimStoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// ClaimStoreFactoryOption is a functional option for configuring the factory
type ClaimStoreFactoryOption func(*ClaimStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) ClaimStoreFactoryOption {
	return func(f *ClaimStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to
// process memory. Default is true.
func WithInMemoryFallback(allow bool) ClaimStoreFactoryOption {
	return func(f *ClaimStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewClaimStoreFactory creates a new factory
func NewClaimStoreFactory(cfg config.RedisConfig, opts ...ClaimStoreFactoryOption) *ClaimStoreFactory {
	f := &ClaimStoreFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore returns a Redis store when Redis is configured and reachable,
// otherwise an in-memory store if fallback is allowed
func (f *ClaimStoreFactory) CreateStore() (ClaimStore, error) {
	if !f.redisConfig.Enabled() {
		f.logger.Info("Redis not configured, using in-memory warning claims")
		return NewInMemoryClaimStore(), nil
	}

	store, err := NewRedisClaimStore(RedisConfig{
		Addr:        f.redisConfig.Addr(),
		Password:    f.redisConfig.Password,
		DB:          f.redisConfig.DB,
		DialTimeout: 2 * time.Second,
	})
	if err == nil {
		f.logger.Info("Using Redis warning claims", zap.String("addr", f.redisConfig.Addr()))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for warning claims but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory warning claims. "+
		"Replicas may write duplicate warnings until the dedupe window catches up.",
		zap.Error(err),
	)
	return NewInMemoryClaimStore(), nil
}

var (
	_ ClaimStore = (*RedisClaimStore)(nil)
	_ ClaimStore = (*InMemoryClaimStore)(nil)
)

// pinger is implemented by stores with a remote backend
type pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks the backend of a store. In-memory stores are always healthy.
func Ping(ctx context.Context, store ClaimStore) error {
	if p, ok := store.(pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
