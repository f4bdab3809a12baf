package sbf

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/decimalpack/Static-Website-Search/pkg/errors"
)

func randomBitString(rng *rand.Rand, n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte('0' + byte(rng.Intn(2)))
	}
	return b.String()
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, n := range []int{0, 1, 7, 14, 15, 16, 29, 30, 31, 45, 120, 997} {
		bits := randomBitString(rng, n)
		decoded, err := Decode(Encode(bits))
		require.NoError(t, err, "length %d", n)
		assert.Equal(t, bits, decoded, "length %d", n)
	}
}

func TestEncodePadding(t *testing.T) {
	// 3 payload bits leave 12 padding bits, recorded as hex 'c'.
	enc := Encode("101")
	assert.Equal(t, 'c', []rune(enc)[0])

	n, err := BitLen(enc)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// Multiples of 15 need no padding.
	assert.Equal(t, '0', []rune(Encode(strings.Repeat("1", 30)))[0])
}

func TestDecodeRangeMatchesFullDecode(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	bits := randomBitString(rng, 64)
	enc := Encode(bits)

	full, err := Decode(enc)
	require.NoError(t, err)
	require.Equal(t, bits, full)

	for start := 0; start <= len(bits); start++ {
		for end := start; end <= len(bits); end++ {
			got, err := DecodeRange(enc, start, end)
			require.NoError(t, err, "range [%d,%d)", start, end)
			assert.Equal(t, full[start:end], got, "range [%d,%d)", start, end)
		}
	}
}

func TestDecodeRangeOutOfSpan(t *testing.T) {
	enc := Encode(strings.Repeat("1", 20))

	_, err := DecodeRange(enc, 0, 21)
	assert.ErrorIs(t, err, apperrors.ErrSlotOutOfRange)

	_, err = DecodeRange(enc, -1, 4)
	assert.ErrorIs(t, err, apperrors.ErrSlotOutOfRange)

	_, err = DecodeRange(enc, 10, 4)
	assert.ErrorIs(t, err, apperrors.ErrSlotOutOfRange)
}

func TestValidateScansWholePayload(t *testing.T) {
	assert.NoError(t, Validate(Encode(strings.Repeat("1", 40))))

	// 'b' parses as a padding digit, but none of "ogus" is a payload rune.
	assert.ErrorIs(t, Validate("bogus"), apperrors.ErrInvalidEncoding)

	// A bad rune anywhere in the payload is caught, not just the first.
	runes := []rune(Encode(strings.Repeat("1", 30)))
	runes[len(runes)-1] = 'A'
	assert.ErrorIs(t, Validate(string(runes)), apperrors.ErrInvalidEncoding)

	assert.ErrorIs(t, Validate(""), apperrors.ErrInvalidEncoding)
}

func TestDecodeInvalidEncoding(t *testing.T) {
	_, err := Decode("")
	assert.ErrorIs(t, err, apperrors.ErrInvalidEncoding)

	// 'z' is not a hex padding digit.
	_, err = Decode("z" + string(rune(payloadOffset)))
	assert.ErrorIs(t, err, apperrors.ErrInvalidEncoding)

	// Payload character below the offset constant.
	_, err = Decode("0A")
	assert.ErrorIs(t, err, apperrors.ErrInvalidEncoding)

	// Padding claimed but no payload character to drop it from.
	_, err = Decode("4")
	assert.ErrorIs(t, err, apperrors.ErrInvalidEncoding)
}
