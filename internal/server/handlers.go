package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/ragdesk/internal/assistant"
	"github.com/hyperjump/ragdesk/internal/config"
	"github.com/hyperjump/ragdesk/internal/extract"
	"github.com/hyperjump/ragdesk/internal/models"
	"github.com/hyperjump/ragdesk/internal/storage"
	"github.com/hyperjump/ragdesk/internal/store"
)

type createDocumentRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type askRequest struct {
	Question string `json:"question"`
	Limit    int    `json:"limit,omitempty"`
	Model    string `json:"model,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		s.respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	s.ingest(w, r, req.Name, req.Content)
}

func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	ext := extract.Ext(header.Filename)
	if !extract.Supported(ext) {
		s.respondError(w, http.StatusUnsupportedMediaType, "unsupported file type "+ext)
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "failed to read upload")
		return
	}
	text, err := s.extractor.ExtractBytes(data, ext)
	if err != nil {
		s.logger.Error("extraction failed", zap.String("file", header.Filename), zap.Error(err))
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	name := r.FormValue("name")
	if name == "" {
		name = filepath.Base(header.Filename)
	}
	s.ingest(w, r, name, text)
}

func (s *Server) ingest(w http.ResponseWriter, r *http.Request, name, content string) {
	s.logger.Debug("ingest document request", zap.String("name", name), zap.Int("bytes", len(content)))
	id, err := s.docs.Ingest(r.Context(), name, content)
	if err != nil {
		s.logger.Error("ingest failed", zap.String("doc_id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	doc, _ := s.docs.Get(id)
	s.respondJSON(w, http.StatusCreated, map[string]interface{}{"id": id, "fragments": len(doc.Fragments)})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs := s.docs.ListDocuments()
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"documents": docs, "total": len(docs)})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.docs.Get(chi.URLParam(r, "id"))
	if !ok {
		s.respondError(w, http.StatusNotFound, "document not found")
		return
	}
	s.respondJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete document request", zap.String("id", id))
	deleted, err := s.docs.Delete(r.Context(), id)
	if err != nil {
		s.logger.Error("deletion failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	status := http.StatusOK
	if !deleted {
		status = http.StatusNotFound
	}
	s.respondJSON(w, status, map[string]bool{"deleted": deleted})
}

// clampLimit applies the configured default to a missing limit and caps it at the maximum.
func (s *Server) clampLimit(limit int) int {
	if limit == 0 {
		limit = s.config.Retrieval.DefaultLimit
	}
	if maxLimit := s.config.Retrieval.MaxLimit; maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return limit
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var q models.Query
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(q.Text) == "" {
		s.respondError(w, http.StatusBadRequest, "query is required")
		return
	}
	q.Limit = s.clampLimit(q.Limit)
	s.logger.Debug("query request", zap.String("query", q.Text), zap.Int("limit", q.Limit))
	start := time.Now()
	results := s.docs.Search(q)
	s.respondJSON(w, http.StatusOK, models.QueryResponse{
		Query:     q.Text,
		Results:   results,
		Total:     len(results),
		QueryTime: time.Since(start).Milliseconds(),
	})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if s.asker == nil {
		s.respondError(w, http.StatusNotImplemented, "assistant not enabled")
		return
	}
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		s.respondError(w, http.StatusBadRequest, "question is required")
		return
	}
	ans, err := s.asker.Ask(r.Context(), assistant.Request{
		Question: req.Question,
		Limit:    s.clampLimit(req.Limit),
		Model:    req.Model,
	})
	if errors.Is(err, assistant.ErrNoModel) {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.logger.Error("ask failed", zap.Error(err))
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, ans)
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	if s.models == nil {
		s.respondError(w, http.StatusNotImplemented, "model listing not enabled")
		return
	}
	list, err := s.models.Models(r.Context())
	if err != nil {
		s.logger.Error("list models failed", zap.Error(err))
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"models": list})
}

func (s *Server) handleExportSnapshot(w http.ResponseWriter, r *http.Request) {
	data, err := s.docs.Export()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="ragdesk-snapshot.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleImportSnapshot(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	if err := s.docs.Import(r.Context(), data); err != nil {
		if errors.Is(err, store.ErrInvalidSnapshot) {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("snapshot import failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]int{"documents": s.docs.Len()})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"documents": s.docs.Len(),
		"fragments": s.docs.FragmentCount(),
	}
	configInfo := map[string]interface{}{
		"embedding_dimensions": s.docs.Dimensions(),
		"chunk_size":           s.docs.ChunkSize(),
		"default_limit":        s.config.Retrieval.DefaultLimit,
		"max_limit":            s.config.Retrieval.MaxLimit,
		"database_path":        s.config.Storage.DatabasePath,
		"ollama_url":           s.config.Ollama.ServerURL,
		"model":                s.config.Ollama.Model,
	}
	if size, err := storage.DatabaseSize(s.config.Storage.DatabasePath); err == nil {
		resp["disk_usage_bytes"] = size
	}
	resp["config"] = configInfo
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWatchDirectoriesList(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"directories": s.watch.Directories()})
}

type watchAddRequest struct {
	Path string `json:"path"`
	Sync *bool  `json:"sync,omitempty"`
}

func (s *Server) handleWatchDirectoriesAdd(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	var req watchAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required")
		return
	}
	abs, err := filepath.Abs(req.Path)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid path")
		return
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			s.respondError(w, http.StatusNotFound, "directory not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !info.IsDir() {
		s.respondError(w, http.StatusBadRequest, "path is not a directory")
		return
	}
	syncExisting := req.Sync == nil || *req.Sync
	if err := s.watch.AddDirectory(abs, syncExisting); err != nil {
		s.logger.Error("watch add directory failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.persistWatchDirectories()
	s.respondJSON(w, http.StatusCreated, map[string]string{"path": abs, "status": "added"})
}

func (s *Server) handleWatchDirectoriesRemove(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	path := r.URL.Query().Get("path")
	if path == "" {
		var body struct {
			Path string `json:"path"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			path = body.Path
		}
	}
	if path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required (query or body)")
		return
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid path")
		return
	}
	if err := s.watch.RemoveDirectory(abs); err != nil {
		s.logger.Error("watch remove directory failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.persistWatchDirectories()
	s.respondJSON(w, http.StatusOK, map[string]string{"path": abs, "status": "removed"})
}

func (s *Server) persistWatchDirectories() {
	if s.configPath == "" {
		return
	}
	s.configMu.Lock()
	defer s.configMu.Unlock()
	s.config.Watch.Directories = s.watch.Directories()
	if err := config.Save(s.configPath, s.config); err != nil {
		s.logger.Warn("failed to persist watch config", zap.Error(err))
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
