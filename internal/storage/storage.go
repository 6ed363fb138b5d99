// Package storage persists opaque snapshot blobs under string keys.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when no value is stored under the key.
var ErrNotFound = errors.New("storage: key not found")

// SnapshotStore is a durable key/value store for serialized store snapshots.
type SnapshotStore interface {
	// Save stores value under key, replacing any previous value.
	Save(ctx context.Context, key string, value []byte) error
	// Load returns the value under key or ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}
