package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore_OrdersByDescendingSimilarity(t *testing.T) {
	cands := []Candidate{
		{ID: "c", Vector: []float64{0, 1, 0}},
		{ID: "a", Vector: []float64{1, 0, 0}},
		{ID: "b", Vector: []float64{0.9, 0.1, 0}},
	}
	got := Score([]float64{1, 0, 0}, cands, 3)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{got[0].ID, got[1].ID, got[2].ID})
	assert.InDelta(t, 1.0, got[0].Score, 1e-12)
	assert.Zero(t, got[2].Score)
	assert.Equal(t, []int{1, 2, 0}, []int{got[0].Index, got[1].Index, got[2].Index})
}

func TestScore_DuplicateIDsKeepTheirPositions(t *testing.T) {
	cands := []Candidate{
		{ID: "x", Vector: []float64{0, 1}},
		{ID: "x", Vector: []float64{1, 0}},
	}
	got := Score([]float64{1, 0}, cands, 2)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Index)
	assert.Equal(t, 0, got[1].Index)
}

func TestScore_TiesKeepInputOrder(t *testing.T) {
	cands := []Candidate{
		{ID: "first", Vector: []float64{1, 1}},
		{ID: "top", Vector: []float64{1, 0}},
		{ID: "second", Vector: []float64{1, 1}},
		{ID: "third", Vector: []float64{2, 2}},
	}
	assert.Equal(t, []string{"top", "first", "second", "third"}, Rank([]float64{1, 0}, cands, 10))
}

func TestScore_Limit(t *testing.T) {
	cands := []Candidate{
		{ID: "a", Vector: []float64{1, 0}},
		{ID: "b", Vector: []float64{0, 1}},
	}
	assert.Len(t, Score([]float64{1, 0}, cands, 1), 1)
	assert.Len(t, Score([]float64{1, 0}, cands, 5), 2)
	assert.Empty(t, Score([]float64{1, 0}, cands, 0))
	assert.Empty(t, Score([]float64{1, 0}, cands, -1))
	assert.Empty(t, Score([]float64{1, 0}, nil, 3))
	assert.NotNil(t, Score([]float64{1, 0}, nil, 3))
}

func TestScore_ZeroQueryKeepsInsertionOrder(t *testing.T) {
	cands := []Candidate{
		{ID: "x", Vector: []float64{0, 1}},
		{ID: "y", Vector: []float64{1, 0}},
	}
	got := Score([]float64{0, 0}, cands, 2)
	assert.Equal(t, "x", got[0].ID)
	assert.Zero(t, got[0].Score)
	assert.Zero(t, got[1].Score)
}
