// Package vector scores and ranks embeddings by cosine similarity.
package vector

import "math"

// Cosine returns dot(a, b) / (|a| * |b|). Vectors of different lengths, empty vectors
// and vectors with zero norm score 0.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
