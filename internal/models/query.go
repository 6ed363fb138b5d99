package models

// Query is an ephemeral retrieval request. A zero Limit means "use the configured default";
// a negative Limit yields no results.
type Query struct {
	Text  string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// QueryResult is a single ranked fragment with its cosine similarity to the query.
type QueryResult struct {
	Fragment Fragment `json:"fragment"`
	Document string   `json:"document_name,omitempty"`
	Score    float64  `json:"score"`
	Rank     int      `json:"rank"`
}

// QueryResponse is the response for a query request.
type QueryResponse struct {
	Query     string        `json:"query"`
	Results   []QueryResult `json:"results"`
	Total     int           `json:"total"`
	QueryTime int64         `json:"query_time_ms"`
}
