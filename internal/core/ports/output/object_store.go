package ports

import (
	"context"
	"time"
)

// ObjectStore publishes colored meshes to S3-compatible storage
type ObjectStore interface {
	// IsAvailable reports whether the store is enabled
	IsAvailable() bool

	// Publish uploads the file at path under key
	Publish(ctx context.Context, key, path string) error

	// Exists checks whether key is present
	Exists(ctx context.Context, key string) (bool, error)

	// URL returns a presigned GET URL for key
	URL(ctx context.Context, key string, ttl time.Duration) (string, error)
}
