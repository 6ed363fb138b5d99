package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/ragdesk/internal/extract"
	"github.com/hyperjump/ragdesk/internal/server"
	"github.com/hyperjump/ragdesk/internal/watcher"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the drop-folder watcher",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().String("addr", "", "listen address host:port (default from config)")
	cmd.Flags().Bool("no-watch", false, "disable the drop-folder watcher")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	noWatch, _ := cmd.Flags().GetBool("no-watch")

	c, err := initializeComponents(cmd)
	if err != nil {
		return err
	}
	defer c.Close()
	logger := c.Logger
	cfg := c.Config
	if addr != "" {
		host, port, err := splitAddr(addr)
		if err != nil {
			return err
		}
		cfg.Server.Host, cfg.Server.Port = host, port
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []server.Option{
		server.WithAssistant(c.Assistant),
		server.WithModels(c.Ollama),
	}
	if !noWatch {
		ingestor := watcher.NewFileIngestor(c.Store, extract.NewExtractor(), logger)
		w := watcher.New(ingestor,
			watcher.WithExtensions(cfg.Watch.Extensions...),
			watcher.WithLogger(logger),
		)
		if err := w.Start(ctx, cfg.Watch.Directories...); err != nil {
			return fmt.Errorf("failed to start watcher: %w", err)
		}
		defer w.Stop()
		w.SyncExistingInBackground()
		opts = append(opts, server.WithWatch(w, c.ConfigPath))
	}

	srv := server.NewServer(c.Store, cfg, logger, opts...)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Warn("shutdown failed", zap.Error(err))
	}
	return nil
}
