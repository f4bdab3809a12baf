package benchmark

import (
	"fmt"
	"strings"
	"testing"

	"github.com/decimalpack/Static-Website-Search/internal/sbf"
)

// BenchmarkHash measures the string hash for keys of varying length.
func BenchmarkHash(b *testing.B) {
	keys := []struct {
		name string
		key  string
	}{
		{"short", "go"},
		{"word", "frequency"},
		{"long", strings.Repeat("spectral", 16)},
	}
	for _, k := range keys {
		b.Run(k.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = sbf.Sum32(k.key, uint32(i))
			}
		})
	}
}

// BenchmarkBuild measures filter construction for vocabularies of varying
// size.
func BenchmarkBuild(b *testing.B) {
	sizes := []int{10, 100, 1000}
	for _, n := range sizes {
		termFreq := make(map[string]uint32, n)
		for i := 0; i < n; i++ {
			termFreq[fmt.Sprintf("term-%d", i)] = uint32(i%7 + 1)
		}
		b.Run(fmt.Sprintf("terms_%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_, err := sbf.Build(termFreq, 0.01, 8, "bench", "https://example.com/bench")
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkFrequency measures one count-min estimate against a built filter.
func BenchmarkFrequency(b *testing.B) {
	termFreq := make(map[string]uint32, 1000)
	for i := 0; i < 1000; i++ {
		termFreq[fmt.Sprintf("term-%d", i)] = uint32(i%7 + 1)
	}
	f, err := sbf.Build(termFreq, 0.01, 8, "bench", "https://example.com/bench")
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := f.Frequency(fmt.Sprintf("term-%d", i%1000)); err != nil {
			b.Fatal(err)
		}
	}
}
