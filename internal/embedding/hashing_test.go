package embedding

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func norm(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x * x
	}
	return math.Sqrt(s)
}

func TestEmbed_Deterministic(t *testing.T) {
	texts := []string{"", "Cats are mammals", "A stitch in time saves nine! 2024 was a year.", "ünïcödé words"}
	for _, text := range texts {
		for _, d := range []int{1, 7, 100, 384} {
			a := Embed(text, d)
			b := Embed(text, d)
			require.Len(t, a, d)
			for i := range a {
				assert.Equal(t, math.Float64bits(a[i]), math.Float64bits(b[i]))
			}
		}
	}
}

func TestEmbed_UnitNorm(t *testing.T) {
	for _, text := range []string{"hello", "Cats are mammals. Dogs are mammals too.", "x y z x y z 1 2 3"} {
		assert.InDelta(t, 1.0, norm(Embed(text, 100)), 1e-12, text)
	}
}

func TestEmbed_ZeroVectorForNoTokens(t *testing.T) {
	for _, text := range []string{"", "   ", "?!.,;-", "éèà"} {
		v := Embed(text, 100)
		require.Len(t, v, 100)
		for _, x := range v {
			assert.Zero(t, x)
		}
	}
}

func TestEmbed_SingleToken(t *testing.T) {
	v := Embed("Hello hello HELLO", 100)
	assert.Equal(t, 1.0, v[22])
	assert.InDelta(t, 1.0, norm(v), 1e-12)
}

func TestEmbed_FrequencyWeights(t *testing.T) {
	// "a" -> 97, "b" -> 98 with 100 buckets.
	v := Embed("a a a b", 100)
	assert.InDelta(t, 3/math.Sqrt(10), v[97], 1e-15)
	assert.InDelta(t, 1/math.Sqrt(10), v[98], 1e-15)
}

func TestEmbed_CollisionOverwrites(t *testing.T) {
	// With 7 buckets "a" and "mammals" both land in bucket 6, "b" in bucket 0.
	// "mammals" comes later and overwrites the count of "a" instead of adding to it.
	v := Embed("a a mammals b", 7)
	assert.InDelta(t, 1/math.Sqrt2, v[6], 1e-15)
	assert.Equal(t, v[0], v[6])
}

func TestEmbed_NumericTokensComeFirst(t *testing.T) {
	// "10" and "a" share bucket 6 of 7. Numeric keys enumerate first, so "a" is written last.
	v := Embed("a 10 10 b", 7)
	assert.Equal(t, v[0], v[6])
}

func TestEmbed_DefaultDimensions(t *testing.T) {
	assert.Len(t, Embed("x", 0), DefaultDimensions)
	assert.Len(t, Embed("x", -1), DefaultDimensions)
}

func TestHashEmbedder(t *testing.T) {
	e := NewHashEmbedder(0)
	assert.Equal(t, DefaultDimensions, e.Dimensions())
	e = NewHashEmbedder(16)
	assert.Equal(t, 16, e.Dimensions())
	assert.Equal(t, Embed("some text", 16), e.Embed("some text"))
}
