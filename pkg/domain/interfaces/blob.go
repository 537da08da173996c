package interfaces

import (
	"context"
	"time"
)

// BlobStore is a flat key/value store of JSON documents. Keys are
// slash-separated paths such as "assessments/json/foo.json".
type BlobStore interface {
	// Get returns the content of key and its last modification time.
	// Returns model.ErrNotFound when the key does not exist.
	Get(ctx context.Context, key string) ([]byte, time.Time, error)

	// Put writes data to key, replacing any existing content
	Put(ctx context.Context, key string, data []byte) error

	// Create writes data to key only when the key does not exist yet.
	// Returns model.ErrAlreadyExists otherwise.
	Create(ctx context.Context, key string, data []byte) error

	// Delete removes key. Returns model.ErrNotFound when the key does not exist.
	Delete(ctx context.Context, key string) error

	// List returns all keys under prefix in lexical order
	List(ctx context.Context, prefix string) ([]string, error)

	Close() error
}
