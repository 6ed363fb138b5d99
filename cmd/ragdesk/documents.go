package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/ragdesk/internal/cli"
	"github.com/hyperjump/ragdesk/internal/extract"
	"github.com/hyperjump/ragdesk/internal/models"
)

func newIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <file-or-directory>...",
		Short: "Extract, chunk and embed documents",
		Long:  "Ingest files into the store. Directories are walked recursively and files with a watched extension are ingested.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runIngest,
	}
	cmd.Flags().String("name", "", "document name (single file only; default is the file name)")
	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	if name != "" && len(args) > 1 {
		return errors.New("--name can only be used with a single file")
	}
	return withComponents(cmd, func(ctx context.Context, c *Components) error {
		ex := extract.NewExtractor()
		out := cmd.OutOrStdout()
		for _, arg := range args {
			files, err := collectFiles(arg, c.Config.Watch.Extensions)
			if err != nil {
				return err
			}
			for _, path := range files {
				text, err := ex.Extract(path)
				if err != nil {
					c.Logger.Warn("skipping file", zap.String("path", path), zap.Error(err))
					fmt.Fprintf(cmd.ErrOrStderr(), "Skipped %s: %v\n", path, err)
					continue
				}
				docName := name
				if docName == "" {
					docName = filepath.Base(path)
				}
				id, err := c.Store.Ingest(ctx, docName, text)
				if err != nil {
					return fmt.Errorf("ingest %s: %w", path, err)
				}
				doc, _ := c.Store.Get(id)
				fmt.Fprintf(out, "Document ingested: %s (%d fragments) from %s\n", id, len(doc.Fragments), path)
			}
		}
		return nil
	})
}

// collectFiles returns path itself for a file, or the supported files under a directory whose
// extension is in exts.
func collectFiles(path string, exts []string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	allowed := make(map[string]bool, len(exts))
	for _, e := range exts {
		allowed[strings.ToLower(e)] = true
	}
	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != path && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		ext := extract.Ext(p)
		if extract.Supported(ext) && (len(allowed) == 0 || allowed[ext]) {
			files = append(files, p)
		}
		return nil
	})
	return files, err
}

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <text>...",
		Short: "Find the fragments most similar to a query",
		Long:  "Query is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runQuery,
	}
	cmd.Flags().IntP("limit", "n", 0, "number of results (default from config)")
	cmd.Flags().StringP("output", "o", "text", "output format: text, compact, or json")
	return cmd
}

// joinArgs joins positional args with spaces so quoted and unquoted queries behave the same.
func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func runQuery(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	format, err := outputFlag(cmd)
	if err != nil {
		return err
	}
	text := joinArgs(args)
	if text == "" {
		return errors.New("query is empty")
	}
	return withComponents(cmd, func(_ context.Context, c *Components) error {
		q := models.Query{Text: text, Limit: clampLimit(limit, c)}
		start := time.Now()
		results := c.Store.Search(q)
		return cli.WriteQueryResults(cmd.OutOrStdout(), &models.QueryResponse{
			Query:     text,
			Results:   results,
			Total:     len(results),
			QueryTime: time.Since(start).Milliseconds(),
		}, format)
	})
}

func clampLimit(limit int, c *Components) int {
	if limit == 0 {
		limit = c.Config.Retrieval.DefaultLimit
	}
	if limit > c.Config.Retrieval.MaxLimit {
		limit = c.Config.Retrieval.MaxLimit
	}
	return limit
}

func outputFlag(cmd *cobra.Command) (cli.OutputFormat, error) {
	s, _ := cmd.Flags().GetString("output")
	return cli.ParseFormat(s)
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored documents, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := outputFlag(cmd)
			if err != nil {
				return err
			}
			return withComponents(cmd, func(_ context.Context, c *Components) error {
				return cli.WriteDocuments(cmd.OutOrStdout(), c.Store.ListDocuments(), format)
			})
		},
	}
	cmd.Flags().StringP("output", "o", "text", "output format: text, compact, or json")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <document-id>",
		Short: "Delete a document and its fragments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withComponents(cmd, func(ctx context.Context, c *Components) error {
				deleted, err := c.Store.Delete(ctx, args[0])
				if err != nil {
					return fmt.Errorf("deletion failed: %w", err)
				}
				if !deleted {
					return fmt.Errorf("document not found: %s", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Document deleted: %s\n", args[0])
				return nil
			})
		},
	}
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the store snapshot as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, _ := cmd.Flags().GetString("out")
			return withComponents(cmd, func(_ context.Context, c *Components) error {
				data, err := c.Store.Export()
				if err != nil {
					return err
				}
				if out == "" || out == "-" {
					_, err = cmd.OutOrStdout().Write(append(data, '\n'))
					return err
				}
				if err := os.WriteFile(out, data, 0600); err != nil {
					return fmt.Errorf("failed to write snapshot: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d documents to %s\n", c.Store.Len(), out)
				return nil
			})
		},
	}
	cmd.Flags().StringP("out", "o", "", "output file (default stdout)")
	return cmd
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <snapshot.json|->",
		Short: "Replace the store contents with a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to read snapshot: %w", err)
			}
			return withComponents(cmd, func(ctx context.Context, c *Components) error {
				if err := c.Store.Import(ctx, data); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d documents (%d fragments)\n", c.Store.Len(), c.Store.FragmentCount())
				return nil
			})
		},
	}
}
