package config

import (
	"os"
	"path/filepath"
)

const (
	DefaultChunkSize    = 500
	DefaultDimensions   = 100
	DefaultLimit        = 5
	DefaultMaxLimit     = 50
	DefaultOllamaURL    = "http://localhost:11434"
	DefaultTemperature  = 0.7
	DefaultMaxTokens    = 2048
	DefaultTimeoutSecs  = 120
	DefaultSnapshotKey  = "rag-storage"
	DefaultDatabasePath = "~/.local/share/ragdesk/ragdesk.db"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = DefaultDatabasePath
	}
	if cfg.Storage.SnapshotKey == "" {
		cfg.Storage.SnapshotKey = DefaultSnapshotKey
	}
	if cfg.Retrieval.ChunkSize <= 0 {
		cfg.Retrieval.ChunkSize = DefaultChunkSize
	}
	if cfg.Retrieval.Dimensions <= 0 {
		cfg.Retrieval.Dimensions = DefaultDimensions
	}
	if cfg.Retrieval.DefaultLimit <= 0 {
		cfg.Retrieval.DefaultLimit = DefaultLimit
	}
	if cfg.Retrieval.MaxLimit <= 0 {
		cfg.Retrieval.MaxLimit = DefaultMaxLimit
	}
	if cfg.Retrieval.MaxLimit < cfg.Retrieval.DefaultLimit {
		cfg.Retrieval.MaxLimit = cfg.Retrieval.DefaultLimit
	}
	if cfg.Ollama.ServerURL == "" {
		cfg.Ollama.ServerURL = DefaultOllamaURL
	}
	if cfg.Ollama.Temperature == 0 {
		cfg.Ollama.Temperature = DefaultTemperature
	}
	if cfg.Ollama.MaxTokens == 0 {
		cfg.Ollama.MaxTokens = DefaultMaxTokens
	}
	if cfg.Ollama.TimeoutSecs == 0 {
		cfg.Ollama.TimeoutSecs = DefaultTimeoutSecs
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".txt", ".md", ".rst", ".pdf", ".docx", ".xlsx", ".odt", ".rtf"}
	}
}

// DefaultPath returns ~/.config/ragdesk/config.yaml, or ./config.yaml when that exists and the
// home config does not.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	p := filepath.Join(home, ".config", "ragdesk", "config.yaml")
	if _, err := os.Stat(p); err != nil {
		if _, err := os.Stat("config.yaml"); err == nil {
			return "config.yaml"
		}
	}
	return p
}
