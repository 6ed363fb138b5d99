// Package embedding maps text to fixed-dimension vectors by feature hashing.
package embedding

// DefaultDimensions is the default embedding dimensionality.
const DefaultDimensions = 100

// Embedder produces vector embeddings for text.
type Embedder interface {
	Embed(text string) []float64
	Dimensions() int
}

// HashEmbedder is a deterministic bag-of-words embedder backed by Embed.
type HashEmbedder struct {
	dimensions int
}

// NewHashEmbedder returns an embedder producing vectors of the given dimensions.
// Non-positive dimensions use DefaultDimensions.
func NewHashEmbedder(dimensions int) *HashEmbedder {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &HashEmbedder{dimensions: dimensions}
}

// Embed returns the embedding of text.
func (e *HashEmbedder) Embed(text string) []float64 {
	return Embed(text, e.dimensions)
}

// Dimensions returns the embedding dimension.
func (e *HashEmbedder) Dimensions() int {
	return e.dimensions
}
