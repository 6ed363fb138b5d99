package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperjump/ragdesk/internal/cli"
	"github.com/hyperjump/ragdesk/pkg/utils"
)

type statusConfig struct {
	EmbeddingDimensions int    `json:"embedding_dimensions"`
	ChunkSize           int    `json:"chunk_size"`
	DefaultLimit        int    `json:"default_limit"`
	MaxLimit            int    `json:"max_limit"`
	DatabasePath        string `json:"database_path"`
	OllamaURL           string `json:"ollama_url"`
	Model               string `json:"model,omitempty"`
}

type statusResponse struct {
	Documents      int           `json:"documents"`
	Fragments      int           `json:"fragments"`
	DiskUsageBytes *int64        `json:"disk_usage_bytes,omitempty"`
	Ollama         string        `json:"ollama"`
	Config         *statusConfig `json:"config"`
}

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show store, storage and Ollama status",
		Args:  cobra.NoArgs,
		RunE:  runStatus,
	}
	cmd.Flags().StringP("output", "o", "text", "output format: text or json")
	return cmd
}

func runStatus(cmd *cobra.Command, _ []string) error {
	format, err := outputFlag(cmd)
	if err != nil {
		return err
	}
	return withComponents(cmd, func(ctx context.Context, c *Components) error {
		status := statusResponse{
			Documents: c.Store.Len(),
			Fragments: c.Store.FragmentCount(),
			Ollama:    "unreachable",
			Config: &statusConfig{
				EmbeddingDimensions: c.Store.Dimensions(),
				ChunkSize:           c.Store.ChunkSize(),
				DefaultLimit:        c.Config.Retrieval.DefaultLimit,
				MaxLimit:            c.Config.Retrieval.MaxLimit,
				DatabasePath:        c.Config.Storage.DatabasePath,
				OllamaURL:           c.Ollama.BaseURL(),
				Model:               c.Config.Ollama.Model,
			},
		}
		if size, err := c.Backend.DiskUsage(); err == nil {
			status.DiskUsageBytes = &size
		}
		if v, err := c.Ollama.Version(ctx); err == nil {
			status.Ollama = v
		}

		out := cmd.OutOrStdout()
		if format == cli.OutputJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(status)
		}
		fmt.Fprintf(out, "documents:          %d\n", status.Documents)
		fmt.Fprintf(out, "fragments:          %d\n", status.Fragments)
		if status.DiskUsageBytes != nil {
			fmt.Fprintf(out, "disk_usage:         %s\n", utils.FormatBytes(*status.DiskUsageBytes))
		}
		fmt.Fprintf(out, "ollama:             %s\n", status.Ollama)
		fmt.Fprintln(out, "\n# configuration")
		fmt.Fprintf(out, "embedding_dims:     %d\n", status.Config.EmbeddingDimensions)
		fmt.Fprintf(out, "chunk_size:         %d\n", status.Config.ChunkSize)
		fmt.Fprintf(out, "default_limit:      %d\n", status.Config.DefaultLimit)
		fmt.Fprintf(out, "max_limit:          %d\n", status.Config.MaxLimit)
		fmt.Fprintf(out, "database_path:      %s\n", status.Config.DatabasePath)
		fmt.Fprintf(out, "ollama_url:         %s\n", status.Config.OllamaURL)
		if status.Config.Model != "" {
			fmt.Fprintf(out, "model:              %s\n", status.Config.Model)
		}
		return nil
	})
}
