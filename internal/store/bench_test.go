package store

import (
	"fmt"
	"strings"
	"testing"
)

func benchCorpus(n int) []string {
	docs := make([]string, n)
	for i := range docs {
		var sb strings.Builder
		for j := 0; j < 40; j++ {
			fmt.Fprintf(&sb, "Sentence %d of document %d mentions topic%d and topic%d. ", j, i, j%7, (i+j)%11)
		}
		docs[i] = sb.String()
	}
	return docs
}

func BenchmarkIngest(b *testing.B) {
	corpus := benchCorpus(10)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s := New()
		for j, text := range corpus {
			s.Ingest(fmt.Sprintf("doc%d.txt", j), text)
		}
	}
}

func BenchmarkQuery(b *testing.B) {
	s := New()
	for j, text := range benchCorpus(100) {
		s.Ingest(fmt.Sprintf("doc%d.txt", j), text)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s.Query("which document mentions topic3", 10)
	}
}
