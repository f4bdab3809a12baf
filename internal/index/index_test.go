package index

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decimalpack/Static-Website-Search/internal/sbf"
)

func buildRecord(t *testing.T, title, url string, termFreq map[string]uint32) Record {
	t.Helper()
	f, err := sbf.Build(termFreq, 0.01, 4, title, url)
	require.NoError(t, err)
	return FromFilter(f)
}

func TestLoadPreservesOrder(t *testing.T) {
	records := make([]Record, 0, 5)
	for i := 0; i < 5; i++ {
		records = append(records, buildRecord(t,
			fmt.Sprintf("doc-%d", i),
			fmt.Sprintf("https://example.com/%d", i),
			map[string]uint32{"term": uint32(i + 1)},
		))
	}

	idx, err := Load(records)
	require.NoError(t, err)
	require.Equal(t, 5, idx.Len())
	assert.Equal(t, 0, idx.Skipped())

	for i := 0; i < idx.Len(); i++ {
		assert.Equal(t, fmt.Sprintf("doc-%d", i), idx.At(i).Title())
	}
}

func TestLoadSkipsCorruptRecords(t *testing.T) {
	good := buildRecord(t, "good", "https://example.com/good", map[string]uint32{"a": 1})
	bad := Record{SBFBase2p15: "not an encoding", NHashFunctions: 1, Width: 4, Size: 4}

	idx, err := Load([]Record{bad, good, bad})
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Len())
	assert.Equal(t, 2, idx.Skipped())
	assert.Equal(t, "good", idx.At(0).Title())
}

func TestLoadFailsWhenNothingUsable(t *testing.T) {
	bad := Record{SBFBase2p15: "?", NHashFunctions: 1, Width: 4, Size: 4}
	_, err := Load([]Record{bad})
	assert.Error(t, err)
}

func TestLoadEmpty(t *testing.T) {
	idx, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Len())
}

func TestRecordFilterRoundTrip(t *testing.T) {
	rec := buildRecord(t, "post", "https://example.com/post", map[string]uint32{"x": 3})
	f, err := rec.Filter()
	require.NoError(t, err)

	freq, err := f.Frequency("x")
	require.NoError(t, err)
	assert.Equal(t, uint32(3), freq)
	assert.Equal(t, rec, FromFilter(f))
}
