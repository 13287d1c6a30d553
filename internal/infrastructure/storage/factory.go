package storage

import (
	"context"

	consoleapp "github.com/britrip/hotelier/internal/application/console"
	infraconfig "github.com/britrip/hotelier/internal/infrastructure/config"
	"go.uber.org/zap"
)

// New builds the asset store selected by cfg.Driver
func New(ctx context.Context, cfg *infraconfig.StorageConfig, logger *zap.Logger) (consoleapp.AssetStore, error) {
	if cfg.Driver != "s3" {
		return NewInlineAssetStore(), nil
	}
	s, err := NewS3AssetStore(ctx, cfg, WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if err := s.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return s, nil
}
