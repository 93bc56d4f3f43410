package interfaces

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned when a storage key does not exist
var ErrKeyNotFound = errors.New("key not found")

// BlobStorage is the uniform read/write-bytes-by-key contract presented by
// every storage backend (local filesystem, embedded Badger). The repository
// must behave identically regardless of which backend is configured.
type BlobStorage interface {
	// Put writes data under key, replacing any existing value
	Put(ctx context.Context, key string, data []byte) error

	// Get reads the value stored under key, or ErrKeyNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Exists reports whether key is present
	Exists(ctx context.Context, key string) (bool, error)

	// List returns all keys with the given prefix
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error

	// Close releases backend resources
	Close() error
}
