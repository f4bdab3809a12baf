package sbf

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/decimalpack/Static-Website-Search/pkg/errors"
)

// filterFromCounters packs explicit counter values the way the offline
// builder does, so tests can pin exact slot contents.
func filterFromCounters(t *testing.T, counters []uint32, width, hashCount uint32) *Filter {
	t.Helper()
	f, err := New(Encode(bitString(counters, width)), hashCount, width, uint32(len(counters)), "doc", "https://example.com/doc")
	require.NoError(t, err)
	return f
}

func TestNewValidation(t *testing.T) {
	valid := Encode(strings.Repeat("0", 16))

	_, err := New(valid, 0, 4, 4, "", "")
	assert.ErrorIs(t, err, apperrors.ErrFilterCorrupt)

	_, err = New(valid, 1, 0, 4, "", "")
	assert.ErrorIs(t, err, apperrors.ErrFilterCorrupt)

	// 16 bits cannot hold 5 counters of width 4.
	_, err = New(valid, 1, 4, 5, "", "")
	assert.ErrorIs(t, err, apperrors.ErrFilterCorrupt)

	_, err = New("bogus", 1, 4, 4, "", "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidEncoding)

	f, err := New(valid, 1, 4, 4, "title", "url")
	require.NoError(t, err)
	assert.Equal(t, "title", f.Title())
	assert.Equal(t, "url", f.URL())
	assert.Equal(t, uint32(4), f.Slots())
}

func TestCounterMatchesFullDecode(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for _, width := range []uint32{1, 3, 4, 7, 10} {
		counters := make([]uint32, 33)
		for i := range counters {
			counters[i] = rng.Uint32() & (1<<width - 1)
		}
		f := filterFromCounters(t, counters, width, 2)

		full, err := Decode(f.Encoded())
		require.NoError(t, err)

		for i := uint32(0); i < f.Slots(); i++ {
			got, err := f.Counter(i)
			require.NoError(t, err)

			slice := full[i*width : (i+1)*width]
			want, err := strconv.ParseUint(slice, 2, 32)
			require.NoError(t, err)

			assert.Equal(t, uint32(want), got, "width %d slot %d", width, i)
			assert.Equal(t, counters[i], got, "width %d slot %d", width, i)
		}
	}
}

func TestCounterOutOfRange(t *testing.T) {
	f := filterFromCounters(t, []uint32{0, 3, 0, 0}, 4, 1)
	_, err := f.Counter(4)
	assert.ErrorIs(t, err, apperrors.ErrSlotOutOfRange)
}

func TestFrequencySingleProbe(t *testing.T) {
	// One probe, four slots: place 3 in the slot that "a" hashes to and
	// leave the rest empty.
	counters := make([]uint32, 4)
	counters[Sum32("a", 0)%4] = 3
	f := filterFromCounters(t, counters, 4, 1)

	freq, err := f.Frequency("a")
	require.NoError(t, err)
	assert.Equal(t, uint32(3), freq)

	// A word hashing to any other slot reads 0.
	for _, w := range []string{"b", "c", "x", "zz"} {
		if Sum32(w, 0)%4 == Sum32("a", 0)%4 {
			continue
		}
		freq, err := f.Frequency(w)
		require.NoError(t, err)
		assert.Equal(t, uint32(0), freq, "word %q", w)
	}
}

func TestFrequencyTakesMinimumAcrossProbes(t *testing.T) {
	// Fill every slot to capacity except one probe target of "w": the
	// estimate must collapse to that minimum.
	const slots = 64
	counters := make([]uint32, slots)
	for i := range counters {
		counters[i] = 15
	}
	low := Sum32("w", 1) % slots
	counters[low] = 2
	f := filterFromCounters(t, counters, 4, 3)

	freq, err := f.Frequency("w")
	require.NoError(t, err)
	assert.Equal(t, uint32(2), freq)
}

func TestFrequencyBounds(t *testing.T) {
	const width = 4
	counters := make([]uint32, 16)
	for i := range counters {
		counters[i] = uint32(i)
	}
	f := filterFromCounters(t, counters, width, 3)
	for i := 0; i < 50; i++ {
		freq, err := f.Frequency(fmt.Sprintf("word-%d", i))
		require.NoError(t, err)
		assert.LessOrEqual(t, freq, uint32(1<<width-1))
	}
}
