// Package store owns the document pool: it chunks and embeds ingested text, answers similarity
// queries over every fragment, and snapshots or restores the whole pool.
package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/ragdesk/internal/embedding"
	"github.com/hyperjump/ragdesk/internal/indexer"
	"github.com/hyperjump/ragdesk/internal/models"
	"github.com/hyperjump/ragdesk/internal/vector"
)

// DefaultLimit is the number of results returned when a query does not set one.
const DefaultLimit = 5

// Store is an in-memory document pool safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	docs  map[string]*models.Document
	order []string // insertion order

	chunkSize    int
	defaultLimit int
	embedder     embedding.Embedder
	logger       *zap.Logger
	now          func() time.Time
	newID        func() string
}

// Option configures a Store.
type Option func(*Store)

// WithChunkSize sets the target fragment size in characters.
func WithChunkSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// WithDimensions uses a HashEmbedder with the given dimensions.
func WithDimensions(n int) Option {
	return func(s *Store) { s.embedder = embedding.NewHashEmbedder(n) }
}

// WithDefaultLimit sets the result count used by Search when the query has no limit.
func WithDefaultLimit(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.defaultLimit = n
		}
	}
}

// WithEmbedder replaces the embedder.
func WithEmbedder(e embedding.Embedder) Option {
	return func(s *Store) {
		if e != nil {
			s.embedder = e
		}
	}
}

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the time source for UploadedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator sets the document ID generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		docs:         make(map[string]*models.Document),
		chunkSize:    indexer.DefaultChunkSize,
		defaultLimit: DefaultLimit,
		embedder:     embedding.NewHashEmbedder(embedding.DefaultDimensions),
		logger:       zap.NewNop(),
		now:          time.Now,
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest chunks and embeds content, stores it as a new document and returns its ID.
// The document becomes visible to queries only once every fragment has its embedding.
// Empty content produces a document without fragments.
func (s *Store) Ingest(name, content string) string {
	id := s.newID()
	chunks := indexer.Chunk(content, s.chunkSize)
	doc := &models.Document{
		ID:         id,
		Name:       name,
		Content:    content,
		Fragments:  make([]models.Fragment, len(chunks)),
		UploadedAt: s.now().UTC(),
	}
	for i, text := range chunks {
		doc.Fragments[i] = models.Fragment{
			ID:         fragmentID(id, i),
			DocumentID: id,
			Index:      i,
			Content:    text,
			Embedding:  s.embedder.Embed(text),
		}
	}

	s.mu.Lock()
	for {
		if !s.idTakenLocked(doc) {
			break
		}
		// Generator collision; fall back to a random ID before publishing.
		doc.ID = uuid.NewString()
		for i := range doc.Fragments {
			doc.Fragments[i].ID = fragmentID(doc.ID, i)
			doc.Fragments[i].DocumentID = doc.ID
		}
	}
	s.docs[doc.ID] = doc
	s.order = append(s.order, doc.ID)
	s.mu.Unlock()

	s.logger.Debug("document ingested",
		zap.String("doc_id", doc.ID),
		zap.String("name", name),
		zap.Int("fragments", len(doc.Fragments)))
	return doc.ID
}

// idTakenLocked reports whether doc's ID or any of its fragment IDs is already in the pool.
// Restored snapshots may hold fragment IDs that do not follow the document-ID prefix.
func (s *Store) idTakenLocked(doc *models.Document) bool {
	if _, taken := s.docs[doc.ID]; taken {
		return true
	}
	if len(doc.Fragments) == 0 {
		return false
	}
	ids := make(map[string]struct{}, len(doc.Fragments))
	for _, f := range doc.Fragments {
		ids[f.ID] = struct{}{}
	}
	for _, other := range s.docs {
		for _, f := range other.Fragments {
			if _, taken := ids[f.ID]; taken {
				return true
			}
		}
	}
	return false
}

func fragmentID(docID string, i int) string {
	return fmt.Sprintf("%s_chunk_%d", docID, i)
}

// Delete removes a document and all its fragments. It reports whether the document existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return false
	}
	delete(s.docs, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.logger.Debug("document deleted", zap.String("doc_id", id))
	return true
}

// Query returns up to limit fragments most similar to text, best first.
// Ties keep pool order: documents in insertion order, fragments by ordinal.
func (s *Store) Query(text string, limit int) []models.Fragment {
	results := s.rank(text, limit)
	out := make([]models.Fragment, len(results))
	for i, r := range results {
		out[i] = r.Fragment
	}
	return out
}

// Search is Query with scores, ranks and document names. A zero limit uses the default limit.
func (s *Store) Search(q models.Query) []models.QueryResult {
	limit := q.Limit
	if limit == 0 {
		limit = s.defaultLimit
	}
	return s.rank(q.Text, limit)
}

func (s *Store) rank(text string, limit int) []models.QueryResult {
	if limit <= 0 {
		return []models.QueryResult{}
	}
	query := s.embedder.Embed(text)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var candidates []vector.Candidate
	var frags []*models.Fragment
	var names []string
	for _, id := range s.order {
		doc := s.docs[id]
		for i := range doc.Fragments {
			f := &doc.Fragments[i]
			candidates = append(candidates, vector.Candidate{ID: f.ID, Vector: f.Embedding})
			frags = append(frags, f)
			names = append(names, doc.Name)
		}
	}

	scored := vector.Score(query, candidates, limit)
	results := make([]models.QueryResult, len(scored))
	for i, sc := range scored {
		f := frags[sc.Index]
		results[i] = models.QueryResult{
			Fragment: f.Clone(),
			Document: names[sc.Index],
			Score:    sc.Score,
			Rank:     i + 1,
		}
	}
	return results
}

// Get returns a copy of the document with the given ID.
func (s *Store) Get(id string) (models.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return models.Document{}, false
	}
	return doc.Clone(), true
}

// ListDocuments returns document summaries, most recently added first.
func (s *Store) ListDocuments() []models.DocumentSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.DocumentSummary, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		out = append(out, s.docs[s.order[i]].Summary())
	}
	return out
}

// Len returns the number of documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// FragmentCount returns the number of fragments across all documents.
func (s *Store) FragmentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, doc := range s.docs {
		n += len(doc.Fragments)
	}
	return n
}

// Dimensions returns the embedding dimensionality.
func (s *Store) Dimensions() int {
	return s.embedder.Dimensions()
}

// ChunkSize returns the target fragment size.
func (s *Store) ChunkSize() int {
	return s.chunkSize
}

// DefaultLimit returns the result count Search uses for queries without a limit.
func (s *Store) DefaultLimit() int {
	return s.defaultLimit
}
