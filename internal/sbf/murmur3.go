package sbf

import "math/bits"

const (
	murmurC1 = 0xcc9e2d51
	murmurC2 = 0x1b873593
)

// Sum32 computes the 32-bit x86 variant of MurmurHash3 for key under the
// given seed. The offline index builder placed every counter with this
// exact function, so the implementation must match it bit for bit: keys
// hash by the low 8 bits of each character, 4-byte blocks are read
// little-endian, and all arithmetic wraps at 32 bits.
func Sum32(key string, seed uint32) uint32 {
	data := lowBytes(key)
	h1 := seed

	nblocks := len(data) / 4
	for i := 0; i < nblocks; i++ {
		b := data[i*4:]
		k1 := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
		k1 *= murmurC1
		k1 = bits.RotateLeft32(k1, 15)
		k1 *= murmurC2
		h1 ^= k1
		h1 = bits.RotateLeft32(h1, 13)
		h1 = h1*5 + 0xe6546b64
	}

	tail := data[nblocks*4:]
	var k1 uint32
	if len(tail) == 3 {
		k1 ^= uint32(tail[2]) << 16
	}
	if len(tail) >= 2 {
		k1 ^= uint32(tail[1]) << 8
	}
	if len(tail) >= 1 {
		k1 ^= uint32(tail[0])
		k1 *= murmurC1
		k1 = bits.RotateLeft32(k1, 15)
		k1 *= murmurC2
		h1 ^= k1
	}

	h1 ^= uint32(len(data))
	return fmix32(h1)
}

// fmix32 is the final avalanche mix.
func fmix32(h uint32) uint32 {
	h ^= h >> 16
	h *= 0x85ebca6b
	h ^= h >> 13
	h *= 0xc2b2ae35
	h ^= h >> 16
	return h
}

// lowBytes maps key to the byte string the builder hashed: one byte per
// character, keeping only the low 8 bits. For ASCII keys this equals the
// raw string bytes.
func lowBytes(key string) []byte {
	out := make([]byte, 0, len(key))
	for _, r := range key {
		out = append(out, byte(r))
	}
	return out
}
