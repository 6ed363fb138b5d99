// Package indexer splits document text into sentence-based fragments.
package indexer

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultChunkSize is the default soft upper bound on fragment length, in characters.
const DefaultChunkSize = 500

// sentenceJoiner joins sentences inside one fragment.
const sentenceJoiner = ". "

var sentenceBoundary = regexp.MustCompile(`[.!?]+`)

// Chunker splits text into fragments of roughly chunkSize characters.
type Chunker struct {
	chunkSize int
}

// NewChunker creates a chunker with the given target size. Non-positive sizes use DefaultChunkSize.
func NewChunker(chunkSize int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Chunker{chunkSize: chunkSize}
}

// Size returns the configured target size.
func (c *Chunker) Size() int {
	return c.chunkSize
}

// Chunk splits text using the configured target size.
func (c *Chunker) Chunk(text string) []string {
	return Chunk(text, c.chunkSize)
}

// Chunk splits text on sentence-terminal punctuation and greedily packs the trimmed sentences
// into fragments joined by ". ". A fragment is flushed when appending the next sentence would
// push it past targetSize. A single sentence longer than targetSize becomes its own fragment;
// sentences are never split.
func Chunk(text string, targetSize int) []string {
	if targetSize <= 0 {
		targetSize = DefaultChunkSize
	}
	sentences := Sentences(text)
	if len(sentences) == 0 {
		return nil
	}
	var (
		chunks []string
		buf    strings.Builder
		bufLen int
	)
	joinLen := utf8.RuneCountInString(sentenceJoiner)
	for _, s := range sentences {
		sLen := utf8.RuneCountInString(s)
		if bufLen > 0 && bufLen+joinLen+sLen > targetSize {
			chunks = append(chunks, buf.String())
			buf.Reset()
			bufLen = 0
		}
		if bufLen > 0 {
			buf.WriteString(sentenceJoiner)
			bufLen += joinLen
		}
		buf.WriteString(s)
		bufLen += sLen
	}
	if bufLen > 0 {
		chunks = append(chunks, buf.String())
	}
	return chunks
}

// Sentences splits text on runs of '.', '!' and '?' and returns the trimmed, non-empty segments.
func Sentences(text string) []string {
	var out []string
	for _, seg := range sentenceBoundary.Split(text, -1) {
		if s := strings.TrimSpace(seg); s != "" {
			out = append(out, s)
		}
	}
	return out
}
