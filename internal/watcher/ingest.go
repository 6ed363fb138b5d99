package watcher

import (
	"context"
	"errors"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/hyperjump/ragdesk/internal/extract"
	"github.com/hyperjump/ragdesk/internal/models"
)

// Target is the document store the drop folder feeds.
type Target interface {
	Ingest(ctx context.Context, name, content string) (string, error)
	Delete(ctx context.Context, id string) (bool, error)
	Get(id string) (models.Document, bool)
	ListDocuments() []models.DocumentSummary
}

// FileIngestor is a Handler that extracts dropped files into a Target. Each path maps to at most
// one document: a rewritten file replaces its document and a removed file deletes it.
type FileIngestor struct {
	target    Target
	extractor *extract.Extractor
	logger    *zap.Logger

	mu     sync.Mutex
	byPath map[string]string
}

// NewFileIngestor returns an ingestor for target. logger may be nil.
func NewFileIngestor(target Target, extractor *extract.Extractor, logger *zap.Logger) *FileIngestor {
	if extractor == nil {
		extractor = extract.NewExtractor()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileIngestor{
		target:    target,
		extractor: extractor,
		logger:    logger,
		byPath:    make(map[string]string),
	}
}

// FileChanged extracts path and ingests it unless the same content is already stored for it.
// An untracked file whose name and content match an existing document adopts that document,
// so restarting over a populated folder does not duplicate documents.
func (f *FileIngestor) FileChanged(ctx context.Context, path string) {
	text, err := f.extractor.Extract(path)
	if err != nil {
		level := f.logger.Warn
		if errors.Is(err, extract.ErrUnsupportedFormat) {
			level = f.logger.Debug
		}
		level("drop folder extract failed", zap.String("path", path), zap.Error(err))
		return
	}
	name := filepath.Base(path)

	f.mu.Lock()
	defer f.mu.Unlock()
	prev, tracked := f.byPath[path]
	if tracked {
		if doc, ok := f.target.Get(prev); ok && doc.Content == text {
			return
		}
	} else if id := f.findLocked(name, text); id != "" {
		f.byPath[path] = id
		return
	}

	id, err := f.target.Ingest(ctx, name, text)
	if id == "" {
		f.logger.Error("drop folder ingest failed", zap.String("path", path), zap.Error(err))
		return
	}
	if err != nil {
		f.logger.Error("drop folder ingest not persisted", zap.String("path", path), zap.Error(err))
	}
	f.byPath[path] = id
	f.logger.Info("drop folder file ingested", zap.String("path", path), zap.String("doc_id", id))
	if tracked {
		if _, err := f.target.Delete(ctx, prev); err != nil {
			f.logger.Error("drop folder replace failed", zap.String("doc_id", prev), zap.Error(err))
		}
	}
}

func (f *FileIngestor) findLocked(name, text string) string {
	owned := make(map[string]bool, len(f.byPath))
	for _, id := range f.byPath {
		owned[id] = true
	}
	for _, sum := range f.target.ListDocuments() {
		if sum.Name != name || owned[sum.ID] {
			continue
		}
		if doc, ok := f.target.Get(sum.ID); ok && doc.Content == text {
			return sum.ID
		}
	}
	return ""
}

// FileRemoved deletes the document ingested from path, if any.
func (f *FileIngestor) FileRemoved(ctx context.Context, path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byPath[path]
	if !ok {
		return
	}
	delete(f.byPath, path)
	if _, err := f.target.Delete(ctx, id); err != nil {
		f.logger.Error("drop folder delete failed", zap.String("doc_id", id), zap.Error(err))
		return
	}
	f.logger.Info("drop folder file removed", zap.String("path", path), zap.String("doc_id", id))
}

// DocumentID returns the document ingested from path.
func (f *FileIngestor) DocumentID(path string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byPath[path]
	return id, ok
}
