// Package assistant answers questions with retrieval-augmented generation over the document store.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/ragdesk/internal/models"
	"github.com/hyperjump/ragdesk/internal/ollama"
)

// ErrNoModel is returned when no generation model is configured or requested.
var ErrNoModel = errors.New("no model selected")

// Retriever returns the fragments most relevant to a query.
type Retriever interface {
	Search(q models.Query) []models.QueryResult
}

// Generator produces a completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, r ollama.GenerateRequest) (string, error)
}

// Options are the generation settings used when a request does not override them.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Request is a single question.
type Request struct {
	Question string
	Limit    int
	Model    string
}

// Answer is the generated text and the fragments it was grounded on.
type Answer struct {
	Text    string               `json:"answer"`
	Sources []models.QueryResult `json:"sources"`
	Model   string               `json:"model"`
}

// Assistant combines a Retriever and a Generator.
type Assistant struct {
	retriever Retriever
	generator Generator
	opts      Options
	logger    *zap.Logger
}

// New returns an assistant. logger may be nil.
func New(r Retriever, g Generator, opts Options, logger *zap.Logger) *Assistant {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assistant{retriever: r, generator: g, opts: opts, logger: logger}
}

// Ask retrieves context for req.Question and asks the model to answer from it.
func (a *Assistant) Ask(ctx context.Context, req Request) (*Answer, error) {
	model := req.Model
	if model == "" {
		model = a.opts.Model
	}
	if model == "" {
		return nil, ErrNoModel
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, errors.New("question is empty")
	}

	sources := a.retriever.Search(models.Query{Text: question, Limit: req.Limit})
	prompt := BuildPrompt(question, sources)
	a.logger.Debug("asking model",
		zap.String("model", model),
		zap.Int("sources", len(sources)),
		zap.Int("prompt_len", len(prompt)))

	text, err := a.generator.Generate(ctx, ollama.GenerateRequest{
		Model:       model,
		Prompt:      prompt,
		Temperature: a.opts.Temperature,
		MaxTokens:   a.opts.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	return &Answer{Text: strings.TrimSpace(text), Sources: sources, Model: model}, nil
}

// BuildPrompt numbers the context fragments and appends the question. Without sources the
// question is returned unchanged.
func BuildPrompt(question string, sources []models.QueryResult) string {
	if len(sources) == 0 {
		return question
	}
	var b strings.Builder
	b.WriteString("Answer the question using only the context below. ")
	b.WriteString("If the context does not contain the answer, say that you do not know.\n\nContext:\n")
	for i, s := range sources {
		fmt.Fprintf(&b, "[%d]", i+1)
		if s.Document != "" {
			fmt.Fprintf(&b, " (%s)", s.Document)
		}
		b.WriteString(" ")
		b.WriteString(s.Fragment.Content)
		b.WriteString("\n")
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\nAnswer:")
	return b.String()
}
