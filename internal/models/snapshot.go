package models

import "time"

// SnapshotVersion is the current snapshot format version.
const SnapshotVersion = 1

// Snapshot is the serialized form of a document store. Documents keep store insertion order.
// A nil Documents slice means the field was absent; an empty store encodes an empty slice.
type Snapshot struct {
	Version    int                `json:"version"`
	Dimensions int                `json:"dimensions"`
	Documents  []SnapshotDocument `json:"documents"`
}

// SnapshotDocument is a persisted document.
type SnapshotDocument struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Content    string          `json:"content"`
	UploadedAt *time.Time      `json:"uploadedAt"`
	Chunks     []SnapshotChunk `json:"chunks"`
}

// SnapshotChunk is a persisted fragment. A nil Embedding is recomputed on restore.
type SnapshotChunk struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	Embedding  []float64 `json:"embedding"`
	DocumentID string    `json:"documentId"`
}
