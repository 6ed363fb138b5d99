package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hyperjump/ragdesk/internal/assistant"
	"github.com/hyperjump/ragdesk/internal/cli"
	"github.com/hyperjump/ragdesk/pkg/utils"
)

func newAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>...",
		Short: "Answer a question from the stored documents with an Ollama model",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAsk,
	}
	cmd.Flags().IntP("limit", "n", 0, "number of context fragments (default from config)")
	cmd.Flags().StringP("model", "m", "", "Ollama model (default from config or RAGDESK_MODEL)")
	cmd.Flags().StringP("output", "o", "text", "output format: text, compact, or json")
	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	model, _ := cmd.Flags().GetString("model")
	format, err := outputFlag(cmd)
	if err != nil {
		return err
	}
	question := joinArgs(args)
	if question == "" {
		return errors.New("question is empty")
	}
	return withComponents(cmd, func(ctx context.Context, c *Components) error {
		ans, err := c.Assistant.Ask(ctx, assistant.Request{
			Question: question,
			Limit:    clampLimit(limit, c),
			Model:    model,
		})
		if errors.Is(err, assistant.ErrNoModel) {
			return fmt.Errorf("%w: pass --model or set ollama.model in the config", err)
		}
		if err != nil {
			return err
		}
		return cli.WriteAnswer(cmd.OutOrStdout(), ans, format)
	})
}

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the models available on the Ollama server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withComponents(cmd, func(ctx context.Context, c *Components) error {
				list, err := c.Ollama.Models(ctx)
				if err != nil {
					return fmt.Errorf("failed to list models from %s: %w", c.Ollama.BaseURL(), err)
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "NAME\tSIZE\tMODIFIED")
				for _, m := range list {
					marker := ""
					if m.Name == c.Config.Ollama.Model {
						marker = " *"
					}
					fmt.Fprintf(tw, "%s%s\t%s\t%s\n", m.Name, marker, utils.FormatBytes(m.Size), m.ModifiedAt)
				}
				return tw.Flush()
			})
		},
	}
}
