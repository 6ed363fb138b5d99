// Package cli provides output formatting and an API client for the ragdesk commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/ragdesk/internal/assistant"
	"github.com/hyperjump/ragdesk/internal/models"
	"github.com/hyperjump/ragdesk/pkg/utils"
)

// OutputFormat selects how results are printed.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact prints one result per line.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

const rule = "─────────────────────────────────────────────────────────"

// ParseFormat maps a flag value to an OutputFormat.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "", OutputText:
		return OutputText, nil
	case OutputCompact, OutputJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text, compact, or json", s)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteQueryResults writes ranked fragments to w in the given format.
func WriteQueryResults(w io.Writer, response *models.QueryResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, response)
	case OutputCompact:
		for _, r := range response.Results {
			fmt.Fprintf(w, "%d\t%.4f\t%s\t%s\n", r.Rank, r.Score, r.Document, TruncateWords(oneLine(r.Fragment.Content), 12))
		}
		return nil
	default:
		fmt.Fprintf(w, "\nFound %d results in %dms\n\n", response.Total, response.QueryTime)
		for _, r := range response.Results {
			fmt.Fprintln(w, rule)
			fmt.Fprintf(w, "Rank: %d | Score: %.4f\n", r.Rank, r.Score)
			fmt.Fprintf(w, "Fragment: %s\n", r.Fragment.ID)
			if r.Document != "" {
				fmt.Fprintf(w, "Document: %s\n", r.Document)
			}
			fmt.Fprintf(w, "\n%s\n\n", utils.Truncate(r.Fragment.Content, 200))
		}
		return nil
	}
}

// WriteDocuments writes document summaries to w.
func WriteDocuments(w io.Writer, docs []models.DocumentSummary, format OutputFormat) error {
	if format == OutputJSON {
		if docs == nil {
			docs = []models.DocumentSummary{}
		}
		return writeJSON(w, docs)
	}
	if len(docs) == 0 && format == OutputText {
		fmt.Fprintln(w, "No documents.")
		return nil
	}
	for _, d := range docs {
		if format == OutputCompact {
			fmt.Fprintf(w, "%s\t%s\n", d.ID, d.Name)
			continue
		}
		fmt.Fprintf(w, "%s  %s  (%d fragments, %d bytes, %s)\n",
			d.ID, d.Name, d.FragmentCount, d.Size, d.UploadedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// WriteAnswer writes a generated answer followed by its numbered sources.
func WriteAnswer(w io.Writer, answer *assistant.Answer, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, answer)
	}
	fmt.Fprintln(w, strings.TrimSpace(answer.Text))
	if len(answer.Sources) == 0 || format == OutputCompact {
		return nil
	}
	fmt.Fprintln(w, "\nSources:")
	for i, s := range answer.Sources {
		fmt.Fprintf(w, "  [%d] %s (%.4f) %s\n", i+1, s.Document, s.Score, TruncateWords(oneLine(s.Fragment.Content), 10))
	}
	return nil
}

// TruncateWords returns up to maxWords from the space-separated string.
func TruncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ") + "..."
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
