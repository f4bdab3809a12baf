package benchmark

import (
	"context"
	"fmt"
	"testing"

	"github.com/decimalpack/Static-Website-Search/internal/index"
	"github.com/decimalpack/Static-Website-Search/internal/indexer/tokenizer"
	"github.com/decimalpack/Static-Website-Search/internal/sbf"
	"github.com/decimalpack/Static-Website-Search/internal/searcher/ranker"
)

func benchIndex(b *testing.B, numDocs int) *index.Index {
	b.Helper()
	records := make([]index.Record, 0, numDocs)
	for i := 0; i < numDocs; i++ {
		termFreq := map[string]uint32{
			"search":                        uint32(i%5 + 1),
			"filter":                        uint32(i%3 + 1),
			fmt.Sprintf("unique-%d", i):     1,
			fmt.Sprintf("cluster-%d", i%10): 2,
		}
		f, err := sbf.Build(termFreq, 0.01, 8,
			fmt.Sprintf("doc-%d", i),
			fmt.Sprintf("https://example.com/%d", i),
		)
		if err != nil {
			b.Fatal(err)
		}
		records = append(records, index.FromFilter(f))
	}
	idx, err := index.Load(records)
	if err != nil {
		b.Fatal(err)
	}
	return idx
}

// BenchmarkSearch measures a full ranking pass over indexes of varying size.
func BenchmarkSearch(b *testing.B) {
	for _, numDocs := range []int{100, 1000, 10000} {
		idx := benchIndex(b, numDocs)
		r := ranker.New(idx)
		ctx := context.Background()

		b.Run(fmt.Sprintf("docs_%d", numDocs), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := r.Search(ctx, []string{"search", "filter"}, 10); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkTokenize measures text normalisation throughput.
func BenchmarkTokenize(b *testing.B) {
	texts := []struct {
		name string
		text string
	}{
		{"query", "spectral bloom filters"},
		{"paragraph", "Spectral Bloom filters extend the classical Bloom filter " +
			"to multisets, answering frequency queries with counters packed at a " +
			"configurable bit width and decoded on demand during ranking."},
	}
	for _, tc := range texts {
		b.Run(tc.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = tokenizer.Tokenize(tc.text)
			}
		})
	}
}
