package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables that override file values.
const (
	EnvOllamaHost  = "OLLAMA_HOST"
	EnvOllamaModel = "RAGDESK_MODEL"
	EnvDebug       = "RAGDESK_DEBUG"
)

// LoadDotEnv loads variables from the given .env files (default ".env") without overriding
// variables already set. A missing file is not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// ApplyEnv overrides cfg with values from the environment.
func ApplyEnv(cfg *Config) {
	if host := strings.TrimSpace(os.Getenv(EnvOllamaHost)); host != "" {
		if !strings.Contains(host, "://") {
			host = "http://" + host
		}
		cfg.Ollama.ServerURL = strings.TrimRight(host, "/")
	}
	if model := strings.TrimSpace(os.Getenv(EnvOllamaModel)); model != "" {
		cfg.Ollama.Model = model
	}
	if v := os.Getenv(EnvDebug); v != "" {
		if debug, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = debug
		}
	}
}
