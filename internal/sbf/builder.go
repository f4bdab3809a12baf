package sbf

import (
	"fmt"
	"math"
	"strings"

	apperrors "github.com/decimalpack/Static-Website-Search/pkg/errors"
)

// Build constructs a spectral Bloom filter for the given term frequencies.
// fpRate tunes the slot count (a lower rate means a larger filter) and
// width is the number of bits per counter; frequencies beyond 2^width-1
// saturate. The returned filter already carries its base-2^15 encoding,
// ready to persist as an index record.
func Build(termFreq map[string]uint32, fpRate float64, width uint32, title, url string) (*Filter, error) {
	if width == 0 || width > 32 {
		return nil, fmt.Errorf("%w: counter width %d must be in 1..32", apperrors.ErrInvalidInput, width)
	}
	if fpRate <= 0 || fpRate >= 1 {
		return nil, fmt.Errorf("%w: false positive rate %g must be in (0,1)", apperrors.ErrInvalidInput, fpRate)
	}

	size, hashCount := optimalSize(uint32(len(termFreq)), fpRate)
	counters := make([]uint32, size)
	maxCount := uint32(1)<<width - 1

	slots := make([]uint32, hashCount)
	for term, freq := range termFreq {
		for probe := uint32(0); probe < hashCount; probe++ {
			slots[probe] = Sum32(term, probe) % size
		}
		min := counters[slots[0]]
		for _, s := range slots[1:] {
			if counters[s] < min {
				min = counters[s]
			}
		}
		// Conservative update: raise only the counters below the new
		// minimum, saturating at the counter capacity.
		target := min + freq
		if target < min || target > maxCount {
			target = maxCount
		}
		for _, s := range slots {
			if counters[s] <= target {
				counters[s] = target
			}
		}
	}

	encoded := Encode(bitString(counters, width))
	return New(encoded, hashCount, width, size, title, url)
}

// optimalSize derives the slot count and probe count from the unique term
// count and the target false positive rate, using the standard Bloom
// filter sizing formulas.
func optimalSize(uniqueTerms uint32, fpRate float64) (size, hashCount uint32) {
	if uniqueTerms == 0 {
		return 1, 1
	}
	m := -float64(uniqueTerms) * math.Log(fpRate) / (math.Ln2 * math.Ln2)
	k := m / float64(uniqueTerms) * math.Ln2
	return uint32(math.Ceil(m)), uint32(math.Ceil(k))
}

// bitString concatenates the counters as fixed-width binary.
func bitString(counters []uint32, width uint32) string {
	var b strings.Builder
	b.Grow(len(counters) * int(width))
	for _, c := range counters {
		fmt.Fprintf(&b, "%0*b", int(width), c)
	}
	return b.String()
}
