package sbf

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/decimalpack/Static-Website-Search/pkg/errors"
)

func TestBuildRoundTrip(t *testing.T) {
	termFreq := map[string]uint32{"a": 1, "b": 2, "c": 10}
	f, err := Build(termFreq, 0.01, 4, "post", "https://example.com/post")
	require.NoError(t, err)

	for term, want := range termFreq {
		got, err := f.Frequency(term)
		require.NoError(t, err)
		assert.Equal(t, want, got, "term %q", term)
	}
}

func TestBuildNeverUndershoots(t *testing.T) {
	// Even with a terrible false positive rate the estimate must stay at
	// or above the inserted count.
	termFreq := make(map[string]uint32, 100)
	for i := 0; i < 100; i++ {
		termFreq[fmt.Sprintf("term-%03d", i)] = uint32(i%30 + 1)
	}
	f, err := Build(termFreq, 0.99, 10, "", "")
	require.NoError(t, err)

	for term, inserted := range termFreq {
		got, err := f.Frequency(term)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got, inserted, "term %q", term)
	}
}

func TestBuildSaturatesAtWidth(t *testing.T) {
	f, err := Build(map[string]uint32{"hot": 100}, 0.01, 4, "", "")
	require.NoError(t, err)

	got, err := f.Frequency("hot")
	require.NoError(t, err)
	assert.Equal(t, uint32(15), got)
}

func TestBuildEmptyTermFreq(t *testing.T) {
	f, err := Build(nil, 0.01, 4, "empty", "")
	require.NoError(t, err)

	got, err := f.Frequency("anything")
	require.NoError(t, err)
	assert.Equal(t, uint32(0), got)
}

func TestBuildRejectsBadParameters(t *testing.T) {
	_, err := Build(map[string]uint32{"a": 1}, 0, 4, "", "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = Build(map[string]uint32{"a": 1}, 1.5, 4, "", "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = Build(map[string]uint32{"a": 1}, 0.01, 0, "", "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = Build(map[string]uint32{"a": 1}, 0.01, 33, "", "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestBuildEncodingSurvivesPersistence(t *testing.T) {
	// The encoded string is what gets stored; reconstructing a filter
	// from it must preserve every counter.
	src, err := Build(map[string]uint32{"alpha": 3, "beta": 7}, 0.05, 5, "t", "u")
	require.NoError(t, err)

	dst, err := New(src.Encoded(), src.HashCount(), src.Width(), src.Slots(), src.Title(), src.URL())
	require.NoError(t, err)

	for i := uint32(0); i < src.Slots(); i++ {
		a, err := src.Counter(i)
		require.NoError(t, err)
		b, err := dst.Counter(i)
		require.NoError(t, err)
		assert.Equal(t, a, b, "slot %d", i)
	}
}
