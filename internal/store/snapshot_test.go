package store

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/ragdesk/internal/embedding"
	"github.com/hyperjump/ragdesk/internal/models"
)

func TestSnapshot_RoundTrip(t *testing.T) {
	src := newTestStore(WithChunkSize(20))
	src.Ingest("zoo.txt", animals)
	src.Ingest("sky.txt", "Birds can fly. Planes can fly too!")

	data, err := src.MarshalSnapshot()
	require.NoError(t, err)

	dst := New(WithChunkSize(20))
	require.NoError(t, dst.UnmarshalSnapshot(data))

	assert.Equal(t, src.ListDocuments(), dst.ListDocuments())
	for _, q := range []string{"mammals", "fly", "water", "nothing matches"} {
		assert.Equal(t, src.Search(models.Query{Text: q, Limit: 10}), dst.Search(models.Query{Text: q, Limit: 10}), q)
	}
	for _, sum := range src.ListDocuments() {
		a, _ := src.Get(sum.ID)
		b, _ := dst.Get(sum.ID)
		require.Equal(t, len(a.Fragments), len(b.Fragments))
		for i := range a.Fragments {
			for j := range a.Fragments[i].Embedding {
				assert.Equal(t, math.Float64bits(a.Fragments[i].Embedding[j]), math.Float64bits(b.Fragments[i].Embedding[j]))
			}
		}
	}
}

func TestSnapshot_JSONLayout(t *testing.T) {
	s := newTestStore()
	s.Ingest("a.txt", "Hello world.")
	data, err := s.MarshalSnapshot()
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.EqualValues(t, 1, raw["version"])
	assert.EqualValues(t, 100, raw["dimensions"])
	docs := raw["documents"].([]any)
	require.Len(t, docs, 1)
	doc := docs[0].(map[string]any)
	assert.Equal(t, "doc1", doc["id"])
	assert.Equal(t, "2026-10-19T12:00:01Z", doc["uploadedAt"])
	chunk := doc["chunks"].([]any)[0].(map[string]any)
	assert.Equal(t, "doc1_chunk_0", chunk["id"])
	assert.Equal(t, "doc1", chunk["documentId"])
	assert.Len(t, chunk["embedding"], 100)
}

func TestSnapshot_EmptyStore(t *testing.T) {
	data, err := New().MarshalSnapshot()
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":1,"dimensions":100,"documents":[]}`, string(data))

	s := newTestStore()
	s.Ingest("a", "text.")
	require.NoError(t, s.UnmarshalSnapshot(data))
	assert.Zero(t, s.Len())
}

func TestSnapshot_RecomputesMissingEmbedding(t *testing.T) {
	raw := `{"version":1,"documents":[{"id":"d1","name":"n","content":"Cats are mammals.",
		"uploadedAt":"2026-01-02T03:04:05Z","chunks":[{"id":"d1_chunk_0","content":"Cats are mammals"}]}]}`
	s := New()
	require.NoError(t, s.UnmarshalSnapshot([]byte(raw)))

	doc, ok := s.Get("d1")
	require.True(t, ok)
	require.Len(t, doc.Fragments, 1)
	assert.Equal(t, embedding.Embed("Cats are mammals", 100), doc.Fragments[0].Embedding)
	assert.Equal(t, "d1", doc.Fragments[0].DocumentID, "back-reference filled from the document")
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), doc.UploadedAt)
	assert.Len(t, s.Query("mammals", 1), 1)
}

func TestSnapshot_InvalidLeavesStateUntouched(t *testing.T) {
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	good := func() models.Snapshot {
		return models.Snapshot{Version: 1, Documents: []models.SnapshotDocument{{
			ID: "d1", Name: "n", Content: "x.", UploadedAt: &ts,
			Chunks: []models.SnapshotChunk{{ID: "d1_chunk_0", Content: "x", DocumentID: "d1"}},
		}}}
	}
	tests := []struct {
		name   string
		mutate func(*models.Snapshot)
		msg    string
	}{
		{"version", func(s *models.Snapshot) { s.Version = 2 }, "unsupported version"},
		{"dimensions", func(s *models.Snapshot) { s.Dimensions = 8 }, "dimensions 8"},
		{"empty doc id", func(s *models.Snapshot) { s.Documents[0].ID = "" }, "documents[0].id is empty"},
		{"duplicate doc id", func(s *models.Snapshot) {
			d := s.Documents[0]
			d.Chunks = nil
			s.Documents = append(s.Documents, d)
		}, "documents[1].id \"d1\" is duplicated"},
		{"missing uploadedAt", func(s *models.Snapshot) { s.Documents[0].UploadedAt = nil }, "uploadedAt is missing"},
		{"empty chunk id", func(s *models.Snapshot) { s.Documents[0].Chunks[0].ID = "" }, "chunks[0].id is empty"},
		{"duplicate chunk id", func(s *models.Snapshot) {
			s.Documents[0].Chunks = append(s.Documents[0].Chunks, s.Documents[0].Chunks[0])
		}, "chunks[1].id"},
		{"foreign documentId", func(s *models.Snapshot) { s.Documents[0].Chunks[0].DocumentID = "other" }, "does not match"},
		{"missing documents", func(s *models.Snapshot) { s.Documents = nil }, "documents is missing"},
		{"missing chunks", func(s *models.Snapshot) { s.Documents[0].Chunks = nil }, "documents[0].chunks is missing"},
		{"empty chunk content", func(s *models.Snapshot) { s.Documents[0].Chunks[0].Content = "" }, "chunks[0].content is empty"},
		{"blank chunk content", func(s *models.Snapshot) { s.Documents[0].Chunks[0].Content = " \n\t" }, "chunks[0].content is empty"},
		{"embedding length", func(s *models.Snapshot) { s.Documents[0].Chunks[0].Embedding = []float64{1, 0} }, "2 dimensions"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(WithChunkSize(20))
			s.Ingest("zoo.txt", animals)
			before := s.Snapshot()

			snap := good()
			tt.mutate(&snap)
			err := s.Restore(snap)
			require.ErrorIs(t, err, ErrInvalidSnapshot)
			assert.Contains(t, err.Error(), tt.msg)
			assert.Equal(t, before, s.Snapshot())
		})
	}

	s := New()
	require.NoError(t, s.Restore(good()), "baseline snapshot is valid")
}

func TestSnapshot_MalformedJSON(t *testing.T) {
	s := newTestStore()
	s.Ingest("a", "keep me.")
	err := s.UnmarshalSnapshot([]byte(`{"documents":`))
	require.ErrorIs(t, err, ErrInvalidSnapshot)
	assert.Equal(t, 1, s.Len())
	assert.False(t, strings.Contains(err.Error(), "keep me"))
}

func TestSnapshot_RequiredFieldsFromJSON(t *testing.T) {
	for _, raw := range []string{
		`{}`,
		`{"foo":1}`,
		`{"version":1}`,
		`{"version":1,"documents":[{"id":"d1","uploadedAt":"2026-01-02T03:04:05Z"}]}`,
		`{"version":1,"documents":[{"id":"d1","uploadedAt":"2026-01-02T03:04:05Z","chunks":[{"id":"c"}]}]}`,
	} {
		s := newTestStore()
		s.Ingest("a", "keep me.")
		require.ErrorIs(t, s.UnmarshalSnapshot([]byte(raw)), ErrInvalidSnapshot, raw)
		assert.Equal(t, 1, s.Len(), raw)
	}
}
