package indexer

import "sort"

// MinimizeWidths rewrites raw term frequencies as ranks so the built
// filters need narrower counters. For every word the distinct frequencies
// across all documents are sorted, and each occurrence is replaced by
// 2*rank+1. Relative order between documents is preserved exactly, and the
// gap of two keeps ranks distinguishable after count-min overestimation of
// at most one rank step. Small counter widths can still clip ranks for
// words with many distinct frequencies.
func MinimizeWidths(freqs []map[string]uint32) []map[string]uint32 {
	perWord := make(map[string][]uint32)
	for _, termFreq := range freqs {
		for word, freq := range termFreq {
			perWord[word] = append(perWord[word], freq)
		}
	}
	for word, values := range perWord {
		sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
		deduped := values[:0]
		for i, v := range values {
			if i == 0 || v != values[i-1] {
				deduped = append(deduped, v)
			}
		}
		perWord[word] = deduped
	}

	out := make([]map[string]uint32, len(freqs))
	for i, termFreq := range freqs {
		out[i] = make(map[string]uint32, len(termFreq))
		for word, freq := range termFreq {
			values := perWord[word]
			rank := sort.Search(len(values), func(j int) bool { return values[j] >= freq })
			out[i][word] = uint32(rank)*2 + 1
		}
	}
	return out
}
