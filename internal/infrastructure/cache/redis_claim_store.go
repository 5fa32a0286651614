// Package cache holds the short-lived claim stores used to keep replicas
// from repeating the same background side effect.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultClaimPrefix = "pos:claim:"

// RedisClaimStore implements monitor.ClaimStore on Redis so that every
// replica sees the same claims
type RedisClaimStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	DialTimeout time.Duration
}

// NewRedisClaimStore connects to Redis and verifies the connection
func NewRedisClaimStore(cfg RedisConfig) (*RedisClaimStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisClaimStoreWithClient(client, ""), nil
}

// NewRedisClaimStoreWithClient creates a store on an existing client
func NewRedisClaimStoreWithClient(client redis.UniversalClient, keyPrefix string) *RedisClaimStore {
	if keyPrefix == "" {
		keyPrefix = defaultClaimPrefix
	}
	return &RedisClaimStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Claim sets the key with SET NX and the given ttl. It returns false when
// another holder set it first.
func (s *RedisClaimStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.keyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim %q: %w", key, err)
	}
	return ok, nil
}

// Release deletes the key
func (s *RedisClaimStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release %q: %w", key, err)
	}
	return nil
}

// Ping checks the Redis connection
func (s *RedisClaimStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (s *RedisClaimStore) Close() error {
	return s.client.Close()
}
