package sbf

import (
	"fmt"
	"strconv"

	apperrors "github.com/decimalpack/Static-Website-Search/pkg/errors"
)

// Filter is the spectral Bloom filter for one indexed document. It is
// read-only after construction: counters stay in their packed string
// encoding and individual values are range-decoded on demand.
type Filter struct {
	encoded   string
	hashCount uint32
	width     uint32
	size      uint32
	title     string
	url       string
}

// New validates the record fields and wraps them in a Filter. The encoded
// counters must cover at least size*width bits.
func New(encoded string, hashCount, width, size uint32, title, url string) (*Filter, error) {
	if hashCount == 0 || width == 0 || size == 0 {
		return nil, fmt.Errorf("%w: hashCount=%d width=%d size=%d must all be positive",
			apperrors.ErrFilterCorrupt, hashCount, width, size)
	}
	if err := Validate(encoded); err != nil {
		return nil, err
	}
	bitLen, err := BitLen(encoded)
	if err != nil {
		return nil, err
	}
	if need := int(size) * int(width); bitLen < need {
		return nil, fmt.Errorf("%w: encoded counters cover %d bits, need %d",
			apperrors.ErrFilterCorrupt, bitLen, need)
	}
	return &Filter{
		encoded:   encoded,
		hashCount: hashCount,
		width:     width,
		size:      size,
		title:     title,
		url:       url,
	}, nil
}

// Counter returns the value of counter slot i.
func (f *Filter) Counter(i uint32) (uint32, error) {
	if i >= f.size {
		return 0, fmt.Errorf("%w: slot %d, filter has %d slots", apperrors.ErrSlotOutOfRange, i, f.size)
	}
	start := int(i) * int(f.width)
	bitStr, err := DecodeRange(f.encoded, start, start+int(f.width))
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(bitStr, 2, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: parsing counter %d: %v", apperrors.ErrFilterCorrupt, i, err)
	}
	return uint32(v), nil
}

// Frequency returns the count-min estimate for word: the minimum counter
// across all hash probes. The estimate never undershoots the inserted
// count; collisions may make it overshoot. A word that was never indexed
// (probably) yields 0.
func (f *Filter) Frequency(word string) (uint32, error) {
	var min uint32
	for probe := uint32(0); probe < f.hashCount; probe++ {
		slot := Sum32(word, probe) % f.size
		c, err := f.Counter(slot)
		if err != nil {
			return 0, err
		}
		if probe == 0 || c < min {
			min = c
		}
	}
	return min, nil
}

// Encoded returns the packed counter string as shipped in the index record.
func (f *Filter) Encoded() string { return f.encoded }

// HashCount returns the number of probes per word.
func (f *Filter) HashCount() uint32 { return f.hashCount }

// Width returns the number of bits per counter.
func (f *Filter) Width() uint32 { return f.width }

// Slots returns the number of counter slots.
func (f *Filter) Slots() uint32 { return f.size }

// Title returns the document's display title.
func (f *Filter) Title() string { return f.title }

// URL returns the document's link.
func (f *Filter) URL() string { return f.url }
