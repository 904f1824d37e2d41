// Package hashes is the hash oracle shared by the filter engines.
// It is deterministic and endian-independent, not cryptographic.
package hashes

import (
	"github.com/aviddiviner/go-murmur"
)

// pairSeed seeds the first word of the 128-bit pair. The second word is
// seeded by the first, so the two words stay independent per key.
const pairSeed = 0xc6a4a7935bd1e995

// Sum128 returns the 128-bit hash of data as two 64-bit words.
func Sum128(data []byte) (a, b uint64) {
	a = murmur.MurmurHash64A(data, pairSeed)
	b = murmur.MurmurHash64A(data, a)
	return a, b
}

// Sum64 returns the 64-bit hash of data.
func Sum64(data []byte) uint64 {
	return murmur.MurmurHash64A(data, 0)
}

// Sum64Seed returns the 64-bit hash of data under a caller-chosen seed.
func Sum64Seed(data []byte, seed uint64) uint64 {
	return murmur.MurmurHash64A(data, seed)
}
