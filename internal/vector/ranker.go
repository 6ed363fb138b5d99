package vector

import "sort"

// Candidate is an embedding eligible for ranking, identified by ID.
type Candidate struct {
	ID     string
	Vector []float64
}

// Scored is a ranked candidate and its cosine similarity to the query. Index is the
// candidate's position in the input slice.
type Scored struct {
	ID    string
	Index int
	Score float64
}

// Score returns up to limit candidates ordered by descending cosine similarity to query.
// Equal scores keep their input order. A non-positive limit returns nothing.
func Score(query []float64, candidates []Candidate, limit int) []Scored {
	if limit <= 0 || len(candidates) == 0 {
		return []Scored{}
	}
	scored := make([]Scored, len(candidates))
	for i, c := range candidates {
		scored[i] = Scored{ID: c.ID, Index: i, Score: Cosine(query, c.Vector)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if limit < len(scored) {
		scored = scored[:limit]
	}
	return scored
}

// Rank is Score without the scores.
func Rank(query []float64, candidates []Candidate, limit int) []string {
	scored := Score(query, candidates, limit)
	ids := make([]string, len(scored))
	for i, s := range scored {
		ids[i] = s.ID
	}
	return ids
}
