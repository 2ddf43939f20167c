package fs

import (
	"context"
	"time"
)

// Object is a fetched storage object along with the metadata the feed
// builder needs from it.
type Object struct {
	Body         []byte
	Size         int64
	LastModified time.Time
}

// Storage is the object storage a podcast bucket lives in. The feed is
// built from a full listing and written back through the same interface.
type Storage interface {
	// ListKeys returns every object key in the bucket. Pagination is
	// handled internally.
	ListKeys(ctx context.Context) ([]string, error)

	// GetObject fetches an object's bytes, size and last-modified time.
	GetObject(ctx context.Context, key string) (*Object, error)

	// Create writes a new object with the given content type and
	// public-read visibility.
	Create(ctx context.Context, key, contentType string, body []byte) error

	// EnsurePublicRead verifies the object carries a public READ grant and
	// adds one if it doesn't. Idempotent.
	EnsurePublicRead(ctx context.Context, key string) error
}
