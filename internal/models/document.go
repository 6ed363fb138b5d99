// Package models defines core data structures for documents, fragments, queries, and snapshots.
package models

import "time"

// Document is an uploaded text together with the fragments derived from it.
type Document struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Content    string     `json:"content"`
	Fragments  []Fragment `json:"chunks"`
	UploadedAt time.Time  `json:"uploadedAt"`
}

// Fragment is a contiguous slice of a document's text, the unit of retrieval.
// Index is the fragment's ordinal within its document, contiguous from 0.
type Fragment struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"documentId"`
	Index      int       `json:"index"`
	Content    string    `json:"content"`
	Embedding  []float64 `json:"embedding"`
}

// DocumentSummary is the listing view of a document.
type DocumentSummary struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	FragmentCount int       `json:"fragment_count"`
	Size          int       `json:"size"`
	UploadedAt    time.Time `json:"uploaded_at"`
}

// Summary returns the listing view of d. Size is the UTF-8 byte length of the content.
func (d *Document) Summary() DocumentSummary {
	return DocumentSummary{
		ID:            d.ID,
		Name:          d.Name,
		FragmentCount: len(d.Fragments),
		Size:          len(d.Content),
		UploadedAt:    d.UploadedAt,
	}
}

// Clone returns a deep copy of d so callers cannot mutate store-owned slices.
func (d *Document) Clone() Document {
	out := *d
	out.Fragments = make([]Fragment, len(d.Fragments))
	for i := range d.Fragments {
		out.Fragments[i] = d.Fragments[i].Clone()
	}
	return out
}

// Clone returns a copy of f with its own embedding slice.
func (f *Fragment) Clone() Fragment {
	out := *f
	if f.Embedding != nil {
		out.Embedding = append([]float64(nil), f.Embedding...)
	}
	return out
}
