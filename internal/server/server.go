// Package server provides the HTTP API for ragdesk.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/ragdesk/internal/assistant"
	"github.com/hyperjump/ragdesk/internal/config"
	"github.com/hyperjump/ragdesk/internal/extract"
	"github.com/hyperjump/ragdesk/internal/models"
	"github.com/hyperjump/ragdesk/internal/ollama"
)

// maxUploadBytes caps multipart uploads.
const maxUploadBytes = 32 << 20

// DocumentStore is the store surface the API exposes.
type DocumentStore interface {
	Ingest(ctx context.Context, name, content string) (string, error)
	Delete(ctx context.Context, id string) (bool, error)
	Get(id string) (models.Document, bool)
	ListDocuments() []models.DocumentSummary
	Search(q models.Query) []models.QueryResult
	Export() ([]byte, error)
	Import(ctx context.Context, data []byte) error
	Len() int
	FragmentCount() int
	Dimensions() int
	ChunkSize() int
}

// Asker answers questions from the stored documents.
type Asker interface {
	Ask(ctx context.Context, req assistant.Request) (*assistant.Answer, error)
}

// ModelLister lists the generation models available.
type ModelLister interface {
	Models(ctx context.Context) ([]ollama.Model, error)
}

// WatchService manages drop-folder roots.
type WatchService interface {
	Directories() []string
	AddDirectory(path string, syncExisting bool) error
	RemoveDirectory(path string) error
}

// Server is the HTTP server for the ragdesk API.
type Server struct {
	docs       DocumentStore
	extractor  *extract.Extractor
	asker      Asker
	models     ModelLister
	watch      WatchService
	config     *config.Config
	configPath string
	configMu   sync.Mutex
	logger     *zap.Logger
	server     *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithAssistant enables POST /api/v1/ask.
func WithAssistant(a Asker) Option {
	return func(s *Server) { s.asker = a }
}

// WithModels enables GET /api/v1/models.
func WithModels(m ModelLister) Option {
	return func(s *Server) { s.models = m }
}

// WithWatch enables the drop-folder endpoints. When configPath is set, directory changes are
// saved to the config file.
func WithWatch(w WatchService, configPath string) Option {
	return func(s *Server) {
		s.watch = w
		s.configPath = configPath
	}
}

// NewServer creates a server with the given dependencies.
func NewServer(docs DocumentStore, cfg *config.Config, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = config.Default()
	}
	s := &Server{
		docs:      docs,
		extractor: extract.NewExtractor(),
		config:    cfg,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if s.config.Debug {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Timeout(5 * time.Minute))

	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Route("/documents", func(r chi.Router) {
			r.Get("/", s.handleListDocuments)
			r.Post("/", s.handleCreateDocument)
			r.Post("/upload", s.handleUploadDocument)
			r.Get("/{id}", s.handleGetDocument)
			r.Delete("/{id}", s.handleDeleteDocument)
		})
		r.Post("/query", s.handleQuery)
		r.Post("/ask", s.handleAsk)
		r.Get("/models", s.handleModels)
		r.Get("/snapshot", s.handleExportSnapshot)
		r.Put("/snapshot", s.handleImportSnapshot)
		r.Route("/watch/directories", func(r chi.Router) {
			r.Get("/", s.handleWatchDirectoriesList)
			r.Post("/", s.handleWatchDirectoriesAdd)
			r.Delete("/", s.handleWatchDirectoriesRemove)
		})
	})
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := s.config.Server.Addr()
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
