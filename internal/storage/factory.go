package storage

import (
	"context"
	"fmt"

	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/internal/config"
	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/internal/storage/local"
	s3backend "github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/internal/storage/s3"
)

// NewFromConfig creates a Backend from the configured backend type.
func NewFromConfig(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch cfg.StorageBackend {
	case "s3":
		b, err := s3backend.New(ctx, s3backend.Config{
			Endpoint:  cfg.S3Endpoint,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Region:    cfg.S3Region,
			UseSSL:    cfg.S3UseSSL,
		})
		if err != nil {
			return nil, err
		}
		return b, nil
	case "local":
		b, err := local.New(local.Config{
			RootPath:   cfg.LocalStoragePath,
			CreateDirs: true,
		})
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown backend type: %s", cfg.StorageBackend)
	}
}
