package cache

import (
	"context"

	"github.com/britrip/hotelier/internal/domain/shared"
	"github.com/britrip/hotelier/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewGuard returns a Redis guard when an address is configured, falling back to
// the in-memory guard when Redis is not configured or unreachable
func NewGuard(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) shared.InFlightGuard {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Addr == "" {
		logger.Info("using in-memory in-flight guard")
		return NewInMemoryGuard()
	}
	g, err := NewRedisGuard(ctx, cfg.Addr, cfg.Password, cfg.DB)
	if err != nil {
		logger.Warn("Redis unavailable, falling back to in-memory in-flight guard. "+
			"Concurrent operations are only blocked within this instance.",
			zap.String("addr", cfg.Addr),
			zap.Error(err),
		)
		return NewInMemoryGuard()
	}
	logger.Info("using Redis in-flight guard", zap.String("addr", cfg.Addr))
	return g
}
