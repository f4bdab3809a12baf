package indexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinimizeWidthsRanksAcrossDocuments(t *testing.T) {
	out := MinimizeWidths([]map[string]uint32{
		{"go": 100, "fox": 7},
		{"go": 3},
		{"go": 1000},
	})

	// Distinct frequencies 3 < 100 < 1000 become ranks 0, 1, 2.
	assert.Equal(t, uint32(3), out[0]["go"])
	assert.Equal(t, uint32(1), out[1]["go"])
	assert.Equal(t, uint32(5), out[2]["go"])

	// A word seen once gets the lowest rank regardless of its raw count.
	assert.Equal(t, uint32(1), out[0]["fox"])
}

func TestMinimizeWidthsEqualFrequenciesShareRank(t *testing.T) {
	out := MinimizeWidths([]map[string]uint32{
		{"go": 42},
		{"go": 42},
		{"go": 7},
	})
	assert.Equal(t, out[0]["go"], out[1]["go"])
	assert.Equal(t, uint32(3), out[0]["go"])
	assert.Equal(t, uint32(1), out[2]["go"])
}

func TestMinimizeWidthsPreservesOrdering(t *testing.T) {
	in := []map[string]uint32{
		{"word": 9},
		{"word": 2},
		{"word": 31},
		{"word": 2},
	}
	out := MinimizeWidths(in)
	for i := range in {
		for j := range in {
			if in[i]["word"] < in[j]["word"] {
				assert.Less(t, out[i]["word"], out[j]["word"])
			}
		}
	}
}

func TestMinimizeWidthsEmpty(t *testing.T) {
	assert.Empty(t, MinimizeWidths(nil))
	out := MinimizeWidths([]map[string]uint32{{}})
	assert.Len(t, out, 1)
	assert.Empty(t, out[0])
}
