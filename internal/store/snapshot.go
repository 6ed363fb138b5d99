package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/ragdesk/internal/models"
)

// ErrInvalidSnapshot is returned when a snapshot fails validation. The store is left unchanged.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Snapshot returns the full store state, documents in insertion order.
func (s *Store) Snapshot() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := models.Snapshot{
		Version:    models.SnapshotVersion,
		Dimensions: s.embedder.Dimensions(),
		Documents:  make([]models.SnapshotDocument, 0, len(s.order)),
	}
	for _, id := range s.order {
		doc := s.docs[id]
		uploaded := doc.UploadedAt
		sd := models.SnapshotDocument{
			ID:         doc.ID,
			Name:       doc.Name,
			Content:    doc.Content,
			UploadedAt: &uploaded,
			Chunks:     make([]models.SnapshotChunk, len(doc.Fragments)),
		}
		for i, f := range doc.Fragments {
			sd.Chunks[i] = models.SnapshotChunk{
				ID:         f.ID,
				Content:    f.Content,
				Embedding:  append([]float64(nil), f.Embedding...),
				DocumentID: f.DocumentID,
			}
		}
		snap.Documents = append(snap.Documents, sd)
	}
	return snap
}

// MarshalSnapshot encodes the store state as JSON.
func (s *Store) MarshalSnapshot() ([]byte, error) {
	data, err := json.Marshal(s.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// Restore validates snap and replaces the store state with it. On error the state is unchanged.
// Documents and every document's chunks must be present, even when empty.
// Chunks without an embedding are re-embedded; a missing chunk documentId is taken from its document.
func (s *Store) Restore(snap models.Snapshot) error {
	docs, order, err := s.build(snap)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.docs = docs
	s.order = order
	s.mu.Unlock()

	s.logger.Debug("snapshot restored", zap.Int("documents", len(order)))
	return nil
}

// UnmarshalSnapshot decodes a JSON snapshot and restores it.
func (s *Store) UnmarshalSnapshot(data []byte) error {
	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return s.Restore(snap)
}

func (s *Store) build(snap models.Snapshot) (map[string]*models.Document, []string, error) {
	dims := s.embedder.Dimensions()
	if snap.Version != 0 && snap.Version != models.SnapshotVersion {
		return nil, nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidSnapshot, snap.Version)
	}
	if snap.Dimensions != 0 && snap.Dimensions != dims {
		return nil, nil, fmt.Errorf("%w: dimensions %d, store uses %d", ErrInvalidSnapshot, snap.Dimensions, dims)
	}
	if snap.Documents == nil {
		return nil, nil, fmt.Errorf("%w: documents is missing", ErrInvalidSnapshot)
	}

	docs := make(map[string]*models.Document, len(snap.Documents))
	order := make([]string, 0, len(snap.Documents))
	chunkIDs := make(map[string]struct{})
	for i, sd := range snap.Documents {
		path := fmt.Sprintf("documents[%d]", i)
		if sd.ID == "" {
			return nil, nil, fmt.Errorf("%w: %s.id is empty", ErrInvalidSnapshot, path)
		}
		if _, dup := docs[sd.ID]; dup {
			return nil, nil, fmt.Errorf("%w: %s.id %q is duplicated", ErrInvalidSnapshot, path, sd.ID)
		}
		if sd.UploadedAt == nil {
			return nil, nil, fmt.Errorf("%w: %s.uploadedAt is missing", ErrInvalidSnapshot, path)
		}
		if sd.Chunks == nil {
			return nil, nil, fmt.Errorf("%w: %s.chunks is missing", ErrInvalidSnapshot, path)
		}
		doc := &models.Document{
			ID:         sd.ID,
			Name:       sd.Name,
			Content:    sd.Content,
			UploadedAt: sd.UploadedAt.UTC(),
			Fragments:  make([]models.Fragment, len(sd.Chunks)),
		}
		for j, c := range sd.Chunks {
			cpath := fmt.Sprintf("%s.chunks[%d]", path, j)
			if c.ID == "" {
				return nil, nil, fmt.Errorf("%w: %s.id is empty", ErrInvalidSnapshot, cpath)
			}
			if strings.TrimSpace(c.Content) == "" {
				return nil, nil, fmt.Errorf("%w: %s.content is empty", ErrInvalidSnapshot, cpath)
			}
			if _, dup := chunkIDs[c.ID]; dup {
				return nil, nil, fmt.Errorf("%w: %s.id %q is duplicated", ErrInvalidSnapshot, cpath, c.ID)
			}
			chunkIDs[c.ID] = struct{}{}
			owner := c.DocumentID
			if owner == "" {
				owner = sd.ID
			}
			if owner != sd.ID {
				return nil, nil, fmt.Errorf("%w: %s.documentId %q does not match %q", ErrInvalidSnapshot, cpath, owner, sd.ID)
			}
			emb := c.Embedding
			switch {
			case emb == nil:
				emb = s.embedder.Embed(c.Content)
			case len(emb) != dims:
				return nil, nil, fmt.Errorf("%w: %s.embedding has %d dimensions, want %d", ErrInvalidSnapshot, cpath, len(emb), dims)
			default:
				emb = append([]float64(nil), emb...)
			}
			doc.Fragments[j] = models.Fragment{
				ID:         c.ID,
				DocumentID: owner,
				Index:      j,
				Content:    c.Content,
				Embedding:  emb,
			}
		}
		docs[doc.ID] = doc
		order = append(order, doc.ID)
	}
	return docs, order, nil
}
