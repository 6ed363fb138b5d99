package embedding

import (
	"github.com/hyperjump/ragdesk/pkg/utils"
)

// Embed maps text to a unit-length vector of the given dimensions. Each distinct token is hashed
// to a bucket and the bucket is set to the token's frequency. Tokens that share a bucket overwrite
// each other in TokenOrder; they are not summed. Text without tokens yields the zero vector.
// Output is bit-identical for identical inputs.
func Embed(text string, dimensions int) []float64 {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	vec := make([]float64, dimensions)
	tokens, counts := TokenOrder(Tokenize(text))
	for _, tok := range tokens {
		vec[Bucket(HashString(tok), dimensions)] = float64(counts[tok])
	}
	utils.NormalizeL2(vec)
	return vec
}

// Bucket maps a 32-bit hash to [0, dimensions) as |hash| mod dimensions.
// The absolute value is taken in 64 bits so math.MinInt32 maps to 2147483648.
func Bucket(hash int32, dimensions int) int {
	h := int64(hash)
	if h < 0 {
		h = -h
	}
	return int(h % int64(dimensions))
}
