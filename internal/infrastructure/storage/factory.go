package storage

import (
	"context"
	"fmt"

	"github.com/erp/erpsync/internal/domain/integration"
	infraconfig "github.com/erp/erpsync/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewBinaryStore builds the binary store selected by cfg.Driver
func NewBinaryStore(ctx context.Context, cfg *infraconfig.StorageConfig, logger *zap.Logger) (integration.BinaryStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Driver {
	case "", infraconfig.StorageDriverFilesystem:
		return NewFilesystemStorage(cfg.Root)
	case infraconfig.StorageDriverS3:
		store, err := NewS3ObjectStorage(cfg, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		logger.Info("Using S3 image storage", zap.String("bucket", store.GetBucket()))
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
