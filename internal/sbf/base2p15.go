// Package sbf implements the read side of the spectral (counting) Bloom
// filter index: the MurmurHash3 probe, the base-2^15 counter codec, and
// the per-document frequency estimator. The wire conventions mirror the
// offline index builder exactly; the build side (Build, Encode) exists so
// the indexer service can emit records the estimator can read back.
package sbf

import (
	"fmt"
	"strings"

	apperrors "github.com/decimalpack/Static-Website-Search/pkg/errors"
)

const (
	// payloadBits is the number of bits carried by each payload character.
	payloadBits = 15

	// payloadOffset is added to a 15-bit payload value to form its
	// character code, keeping every payload character printable.
	payloadOffset = 0xa1
)

// BitLen reports the number of payload bits carried by an encoded string,
// validating the leading padding digit.
func BitLen(encoded string) (int, error) {
	runes := []rune(encoded)
	if len(runes) == 0 {
		return 0, fmt.Errorf("%w: empty string", apperrors.ErrInvalidEncoding)
	}
	padding, err := paddingDigit(runes[0])
	if err != nil {
		return 0, err
	}
	n := len(runes) - 1
	if n == 0 && padding != 0 {
		return 0, fmt.Errorf("%w: padding %d with no payload", apperrors.ErrInvalidEncoding, padding)
	}
	return n*payloadBits - padding, nil
}

// Validate checks every character of an encoding: the padding digit and
// each payload rune. Decode and DecodeRange stay lazy and only look at the
// characters they touch, so this is the admission check to run once when a
// record enters the system.
func Validate(encoded string) error {
	if _, err := BitLen(encoded); err != nil {
		return err
	}
	for _, r := range []rune(encoded)[1:] {
		if _, err := payloadValue(r); err != nil {
			return err
		}
	}
	return nil
}

// Decode expands an encoded string into its full bit string of '0'/'1'
// characters. The first character is a hex digit giving the number of
// padding bits to drop from the last payload character.
func Decode(encoded string) (string, error) {
	total, err := BitLen(encoded)
	if err != nil {
		return "", err
	}
	payload := []rune(encoded)[1:]
	var b strings.Builder
	b.Grow(len(payload) * payloadBits)
	for _, r := range payload {
		v, err := payloadValue(r)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "%015b", v)
	}
	return b.String()[:total], nil
}

// DecodeRange extracts bits [start, end) of the decoded bit string while
// touching only the payload characters that cover the range. This keeps a
// counter lookup proportional to the counter width instead of the whole
// filter.
func DecodeRange(encoded string, start, end int) (string, error) {
	total, err := BitLen(encoded)
	if err != nil {
		return "", err
	}
	if start < 0 || end < start || end > total {
		return "", fmt.Errorf("%w: bit range [%d,%d) outside encoded span of %d bits",
			apperrors.ErrSlotOutOfRange, start, end, total)
	}
	if start == end {
		return "", nil
	}
	payload := []rune(encoded)[1:]
	first := start / payloadBits
	last := (end - 1) / payloadBits
	var b strings.Builder
	b.Grow((last - first + 1) * payloadBits)
	for _, r := range payload[first : last+1] {
		v, err := payloadValue(r)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "%015b", v)
	}
	off := start - first*payloadBits
	return b.String()[off : off+(end-start)], nil
}

// Encode packs a bit string of '0'/'1' characters into the base-2^15
// printable encoding understood by Decode. This is the builder-side
// inverse of Decode.
func Encode(bitString string) string {
	padding := (payloadBits - len(bitString)%payloadBits) % payloadBits
	padded := bitString + strings.Repeat("0", padding)
	var b strings.Builder
	b.Grow(1 + len(padded)/payloadBits)
	fmt.Fprintf(&b, "%x", padding)
	for i := 0; i < len(padded); i += payloadBits {
		var v uint32
		for _, c := range padded[i : i+payloadBits] {
			v = v<<1 | uint32(c-'0')
		}
		b.WriteRune(rune(v + payloadOffset))
	}
	return b.String()
}

func paddingDigit(r rune) (int, error) {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0'), nil
	case r >= 'a' && r <= 'f':
		return int(r-'a') + 10, nil
	}
	return 0, fmt.Errorf("%w: padding digit %q", apperrors.ErrInvalidEncoding, r)
}

func payloadValue(r rune) (uint32, error) {
	if r < payloadOffset || r >= payloadOffset+(1<<payloadBits) {
		return 0, fmt.Errorf("%w: payload character %U outside encodable range", apperrors.ErrInvalidEncoding, r)
	}
	return uint32(r - payloadOffset), nil
}
