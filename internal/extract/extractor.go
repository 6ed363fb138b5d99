// Package extract turns uploaded files into plain text for ingestion.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrUnsupportedFormat is returned for file extensions the extractor cannot read.
var ErrUnsupportedFormat = errors.New("unsupported document format")

type extractFunc func(content []byte) (string, error)

var extractors = map[string]extractFunc{
	".txt":  extractPlain,
	".md":   extractPlain,
	".rst":  extractPlain,
	".csv":  extractPlain,
	".json": extractPlain,
	".pdf":  extractPDF,
	".docx": extractDOCX,
	".pptx": extractPPTX,
	".xlsx": extractExcel,
	".odt":  extractOpenDocument,
	".odp":  extractOpenDocument,
	".ods":  extractOpenDocument,
	".rtf":  extractRTF,
}

// Extractor extracts plain text from document files.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads the file at path and returns its text content.
func (e *Extractor) Extract(path string) (string, error) {
	ext := Ext(path)
	if !Supported(ext) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return e.ExtractBytes(content, ext)
}

// ExtractBytes extracts text from content based on the given extension, which includes the
// leading dot (e.g. ".pdf"). Unknown extensions return ErrUnsupportedFormat.
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	fn, ok := extractors[strings.ToLower(ext)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return fn(content)
}

// Ext returns the lowercased extension of name.
func Ext(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// Supported reports whether ext can be extracted.
func Supported(ext string) bool {
	_, ok := extractors[strings.ToLower(ext)]
	return ok
}

// SupportedExtensions returns every supported extension, sorted.
func SupportedExtensions() []string {
	out := make([]string, 0, len(extractors))
	for ext := range extractors {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
