package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/britrip/hotelier/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

const defaultGuardPrefix = "hotelier:inflight:"

// RedisGuard implements shared.InFlightGuard with SETNX so replicas share
// the same in-flight keys
type RedisGuard struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisGuard connects to addr and verifies the connection
func NewRedisGuard(ctx context.Context, addr, password string, db int) (*RedisGuard, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisGuardWithClient(client, ""), nil
}

// NewRedisGuardWithClient wraps an existing client
func NewRedisGuardWithClient(client *redis.Client, keyPrefix string) *RedisGuard {
	if keyPrefix == "" {
		keyPrefix = defaultGuardPrefix
	}
	return &RedisGuard{client: client, keyPrefix: keyPrefix}
}

// Acquire implements shared.InFlightGuard
func (g *RedisGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.keyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire in-flight key: %w", err)
	}
	return ok, nil
}

// Release implements shared.InFlightGuard
func (g *RedisGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, g.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release in-flight key: %w", err)
	}
	return nil
}

// Held implements shared.InFlightGuard
func (g *RedisGuard) Held(ctx context.Context, key string) (bool, error) {
	n, err := g.client.Exists(ctx, g.keyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check in-flight key: %w", err)
	}
	return n > 0, nil
}

// Close closes the Redis client
func (g *RedisGuard) Close() error {
	return g.client.Close()
}

var _ shared.InFlightGuard = (*RedisGuard)(nil)
