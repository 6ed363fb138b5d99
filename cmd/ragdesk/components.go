package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/ragdesk/internal/assistant"
	"github.com/hyperjump/ragdesk/internal/config"
	"github.com/hyperjump/ragdesk/internal/ollama"
	"github.com/hyperjump/ragdesk/internal/storage"
	"github.com/hyperjump/ragdesk/internal/store"
	"github.com/hyperjump/ragdesk/pkg/utils"
)

// loadConfig resolves the config path, loads .env, the YAML file and environment overrides.
// A missing file at the default path yields the defaults. Returns the config and the path
// it is saved to.
func loadConfig(path string) (*config.Config, string, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, "", err
	}
	explicit := path != ""
	if !explicit {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	switch {
	case err == nil:
	case !explicit && errors.Is(err, fs.ErrNotExist):
		cfg = config.Default()
	default:
		return nil, "", err
	}
	config.ApplyEnv(cfg)
	return cfg, path, nil
}

// Components holds initialized services.
type Components struct {
	Config     *config.Config
	ConfigPath string
	Logger     *zap.Logger
	Backend    *storage.SQLiteStore
	Store      *store.Durable
	Ollama     *ollama.Client
	Assistant  *assistant.Assistant
}

// Close releases the database and flushes the logger.
func (c *Components) Close() {
	if c.Backend != nil {
		_ = c.Backend.Close()
	}
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
}

func initializeComponents(cmd *cobra.Command) (*Components, error) {
	configPath, _ := cmd.Flags().GetString("config")
	debugFlag, _ := cmd.Flags().GetBool("debug")

	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Debug = cfg.Debug || debugFlag
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	logger.Debug("config loaded", zap.String("config_path", resolved), zap.Bool("debug", cfg.Debug))

	backend, err := storage.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	docs := store.NewDurable(store.New(
		store.WithChunkSize(cfg.Retrieval.ChunkSize),
		store.WithDimensions(cfg.Retrieval.Dimensions),
		store.WithDefaultLimit(cfg.Retrieval.DefaultLimit),
		store.WithLogger(logger),
	), backend, cfg.Storage.SnapshotKey)
	if err := docs.Open(cmd.Context()); err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	client := ollama.NewClient(ollama.Config{
		BaseURL: cfg.Ollama.ServerURL,
		Timeout: time.Duration(cfg.Ollama.TimeoutSecs) * time.Second,
	})
	ask := assistant.New(docs, client, assistant.Options{
		Model:       cfg.Ollama.Model,
		Temperature: cfg.Ollama.Temperature,
		MaxTokens:   cfg.Ollama.MaxTokens,
	}, logger)

	return &Components{
		Config:     cfg,
		ConfigPath: resolved,
		Logger:     logger,
		Backend:    backend,
		Store:      docs,
		Ollama:     client,
		Assistant:  ask,
	}, nil
}

// withComponents runs fn with initialized components and closes them afterwards.
func withComponents(cmd *cobra.Command, fn func(ctx context.Context, c *Components) error) error {
	c, err := initializeComponents(cmd)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(cmd.Context(), c)
}
