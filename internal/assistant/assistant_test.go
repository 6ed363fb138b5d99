package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/ragdesk/internal/models"
	"github.com/hyperjump/ragdesk/internal/ollama"
	"github.com/hyperjump/ragdesk/internal/store"
)

type fakeGenerator struct {
	got   ollama.GenerateRequest
	reply string
	err   error
}

func (f *fakeGenerator) Generate(_ context.Context, r ollama.GenerateRequest) (string, error) {
	f.got = r
	return f.reply, f.err
}

func TestAsk_UsesRetrievedContext(t *testing.T) {
	s := store.New(store.WithChunkSize(20))
	s.Ingest("zoo.txt", "Cats are mammals. Dogs are mammals too. Fish live in water.")
	gen := &fakeGenerator{reply: "  Cats and dogs.  "}
	a := New(s, gen, Options{Model: "llama3.2", Temperature: 0.2, MaxTokens: 64}, nil)

	ans, err := a.Ask(context.Background(), Request{Question: "Which are mammals?", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, "Cats and dogs.", ans.Text)
	assert.Equal(t, "llama3.2", ans.Model)
	require.Len(t, ans.Sources, 2)

	assert.Equal(t, "llama3.2", gen.got.Model)
	assert.Equal(t, 0.2, gen.got.Temperature)
	assert.Equal(t, 64, gen.got.MaxTokens)
	assert.Contains(t, gen.got.Prompt, "[1] (zoo.txt) Cats are mammals\n")
	assert.Contains(t, gen.got.Prompt, "[2] (zoo.txt) Dogs are mammals too\n")
	assert.Contains(t, gen.got.Prompt, "Question: Which are mammals?")
}

func TestAsk_NoDocumentsSendsBareQuestion(t *testing.T) {
	gen := &fakeGenerator{reply: "Hello!"}
	a := New(store.New(), gen, Options{Model: "m"}, nil)

	ans, err := a.Ask(context.Background(), Request{Question: "Hi there"})
	require.NoError(t, err)
	assert.Equal(t, "Hi there", gen.got.Prompt)
	assert.Empty(t, ans.Sources)
}

func TestAsk_RequestModelOverrides(t *testing.T) {
	gen := &fakeGenerator{}
	a := New(store.New(), gen, Options{Model: "default"}, nil)
	ans, err := a.Ask(context.Background(), Request{Question: "q", Model: "override"})
	require.NoError(t, err)
	assert.Equal(t, "override", gen.got.Model)
	assert.Equal(t, "override", ans.Model)
}

func TestAsk_Errors(t *testing.T) {
	a := New(store.New(), &fakeGenerator{}, Options{}, nil)
	_, err := a.Ask(context.Background(), Request{Question: "q"})
	assert.ErrorIs(t, err, ErrNoModel)

	a = New(store.New(), &fakeGenerator{}, Options{Model: "m"}, nil)
	_, err = a.Ask(context.Background(), Request{Question: "   "})
	assert.Error(t, err)

	boom := errors.New("connection refused")
	a = New(store.New(), &fakeGenerator{err: boom}, Options{Model: "m"}, nil)
	_, err = a.Ask(context.Background(), Request{Question: "q"})
	assert.ErrorIs(t, err, boom)
}

func TestBuildPrompt(t *testing.T) {
	sources := []models.QueryResult{
		{Fragment: models.Fragment{Content: "alpha"}, Document: "a.txt"},
		{Fragment: models.Fragment{Content: "beta"}},
	}
	want := "Answer the question using only the context below. " +
		"If the context does not contain the answer, say that you do not know.\n\nContext:\n" +
		"[1] (a.txt) alpha\n[2] beta\n\nQuestion: what?\nAnswer:"
	assert.Equal(t, want, BuildPrompt("what?", sources))
	assert.Equal(t, "what?", BuildPrompt("what?", nil))
}
