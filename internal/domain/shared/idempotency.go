package shared

import (
	"context"
	"time"
)

// InFlightGuard blocks an operation from running concurrently with itself.
// Keys are scoped by the caller, typically "<session>:<operation>".
type InFlightGuard interface {
	// Acquire marks key as in flight for at most ttl.
	// Returns false if the key is already held.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release frees key so the operation may run again
	Release(ctx context.Context, key string) error

	// Held reports whether key is currently in flight
	Held(ctx context.Context, key string) (bool, error)

	Close() error
}

// GuardConfig holds configuration for in-flight guarding
type GuardConfig struct {
	// TTL bounds how long a crashed holder can block the key
	TTL time.Duration
}

// DefaultGuardConfig returns the default guard configuration
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		TTL: 2 * time.Minute,
	}
}
