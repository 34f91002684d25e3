package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledgerbook/backend/internal/domain/document"
	"github.com/ledgerbook/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Storage drivers
const (
	DriverS3     = "s3"
	DriverMemory = "memory"
)

// NewObjectStorage builds the backend selected by storage.driver.
// For S3 the bucket is created when missing.
func NewObjectStorage(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (document.ObjectStorage, error) {
	switch strings.ToLower(cfg.Driver) {
	case DriverS3:
		s, err := NewS3ObjectStorage(ctx, cfg, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		logger.Info("Using S3 object storage",
			zap.String("bucket", cfg.Bucket),
			zap.String("endpoint", cfg.Endpoint))
		return s, nil
	case DriverMemory, "":
		logger.Warn("Using in-memory object storage; uploaded files are lost on restart")
		return NewMemoryObjectStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}
