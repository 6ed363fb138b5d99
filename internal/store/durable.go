package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/hyperjump/ragdesk/internal/models"
	"github.com/hyperjump/ragdesk/internal/storage"
)

// DefaultSnapshotKey is the storage key the snapshot is saved under.
const DefaultSnapshotKey = "rag-storage"

// ErrPersist wraps failures to save the snapshot after a mutation. The in-memory change stays applied.
var ErrPersist = errors.New("failed to persist snapshot")

// Durable is a Store that saves a snapshot to a SnapshotStore after every mutation.
type Durable struct {
	*Store
	backend storage.SnapshotStore
	key     string
	mu      sync.Mutex // orders mutate+save pairs
}

// NewDurable wraps s with persistence to backend under key. An empty key uses DefaultSnapshotKey.
func NewDurable(s *Store, backend storage.SnapshotStore, key string) *Durable {
	if key == "" {
		key = DefaultSnapshotKey
	}
	return &Durable{Store: s, backend: backend, key: key}
}

// Open restores the persisted snapshot. A missing snapshot leaves the store empty.
func (d *Durable) Open(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	data, err := d.backend.Load(ctx, d.key)
	if errors.Is(err, storage.ErrNotFound) {
		d.logger.Debug("no snapshot found", zap.String("key", d.key))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}
	if err := d.Store.UnmarshalSnapshot(data); err != nil {
		return err
	}
	d.logger.Info("snapshot loaded",
		zap.String("key", d.key),
		zap.Int("documents", d.Store.Len()))
	return nil
}

// Ingest adds a document and persists the new state. On a persistence error the returned ID is
// still valid and the error wraps ErrPersist.
func (d *Durable) Ingest(ctx context.Context, name, content string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.Store.Ingest(name, content)
	return id, d.persist(ctx)
}

// Delete removes a document and persists the new state when it existed.
func (d *Durable) Delete(ctx context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.Store.Delete(id) {
		return false, nil
	}
	return true, d.persist(ctx)
}

// Export returns the current snapshot as JSON.
func (d *Durable) Export() ([]byte, error) {
	return d.Store.MarshalSnapshot()
}

// Import replaces the state with a JSON snapshot and persists it. An invalid snapshot changes nothing.
func (d *Durable) Import(ctx context.Context, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.Store.UnmarshalSnapshot(data); err != nil {
		return err
	}
	return d.persist(ctx)
}

// Restore replaces the state with snap and persists it.
func (d *Durable) Restore(ctx context.Context, snap models.Snapshot) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.Store.Restore(snap); err != nil {
		return err
	}
	return d.persist(ctx)
}

// Key returns the storage key.
func (d *Durable) Key() string {
	return d.key
}

func (d *Durable) persist(ctx context.Context) error {
	data, err := d.Store.MarshalSnapshot()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	if err := d.backend.Save(ctx, d.key, data); err != nil {
		d.logger.Error("snapshot save failed", zap.String("key", d.key), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}
