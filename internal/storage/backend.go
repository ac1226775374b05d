// Package storage defines the Backend interface for archive blob storage
// and provides a factory over the concrete implementations.
package storage

import (
	"context"
	"io"
	"time"
)

// Backend is the interface for archive blob storage backends.
// Implementations handle raw object I/O (S3, local filesystem).
// Archive metadata (entries, analysis) is handled separately by archive.Store.
type Backend interface {
	// GetObject retrieves an object by key.
	GetObject(ctx context.Context, key string) (io.ReadCloser, int64, error)

	// PutObject uploads content to the given key.
	PutObject(ctx context.Context, key string, body io.Reader, size int64) error

	// DeleteObject removes an object by key.
	DeleteObject(ctx context.Context, key string) error

	// ObjectExists checks if an object exists at the given key.
	ObjectExists(ctx context.Context, key string) (bool, error)

	// Type returns the backend type identifier ("s3", "local").
	Type() string

	// Close releases any resources held by the backend.
	Close() error
}

// Presigner is implemented by backends that can mint presigned upload URLs.
// Backends without it (local) rely on the API layer's direct upload sink.
type Presigner interface {
	// PresignPut returns a URL that accepts a direct PUT of the object body
	// for the given validity window.
	PresignPut(ctx context.Context, key string, ttl time.Duration) (string, error)
}
