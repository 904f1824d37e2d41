// Package bloom implements a scalable bloom filter: an ordered chain of
// bit-array sub-filters where only the newest accepts inserts and membership
// is the union of all of them. Growth tightens the per-level error rate so
// the compounded false-positive probability stays bounded.
//
// Filters are not safe for concurrent use; callers synchronize externally.
package bloom

import (
	"errors"
	"math"
	"math/bits"

	"github.com/bits-and-blooms/bitset"

	"github.com/fukua95/filters/internal/hashes"
)

// Version of the bloom engine.
const Version = "1.0.0"

var (
	ErrInvalidParameters = errors.New("bloom: invalid parameters")
	ErrNotInitialized    = errors.New("bloom: filter not initialized")
	ErrOverCapacity      = errors.New("bloom: filter over capacity")
	ErrTooLarge          = errors.New("bloom: filter size overflow")
)

// minEntries is the smallest usable capacity. Sizing math degenerates below
// it and real deployments are far larger.
const minEntries = 1000

// ln2Sq is ln(2)^2, the denominator of the bits-per-entry formula.
const ln2Sq = 0.480453013918201

// HashValue is the 128-bit hash of a key as two 64-bit words. A picks the
// base bit position, B is folded in once per hash probe.
type HashValue struct {
	A uint64
	B uint64
}

// CalcHash hashes a key for use with AddHash and ExistsHash.
func CalcHash(data []byte) HashValue {
	a, b := hashes.Sum128(data)
	return HashValue{A: a, B: b}
}

// subFilter is one level of the chain: a flat bit array plus the sizing
// parameters it was created with.
type subFilter struct {
	entries   uint64 // insert target this level was sized for
	errorRate float64
	bpe       float64
	bits      uint64
	hashes    uint64
	n2        uint8 // log2(bits) when bits was rounded to a power of two
	force64   bool
	size      uint64 // inserts so far
	bs        *bitset.BitSet
}

func newSubFilter(entries uint64, errorRate float64, opts Options) (*subFilter, error) {
	if entries < minEntries {
		return nil, ErrInvalidParameters
	}
	if errorRate <= 0 || errorRate >= 1 {
		return nil, ErrInvalidParameters
	}

	sf := &subFilter{
		entries:   entries,
		errorRate: errorRate,
		bpe:       -math.Log(errorRate) / ln2Sq,
	}

	if opts.EntriesIsBits {
		sf.bits = entries
	} else {
		fbits := math.Ceil(float64(entries) * sf.bpe)
		if fbits >= math.MaxUint64 {
			return nil, ErrTooLarge
		}
		sf.bits = uint64(fbits)
	}
	if !opts.NoRound {
		// Rounding up to a power of two turns the per-probe modulo into a
		// mask. Skipped when the next power of two would overflow.
		if p2 := nextPow2(sf.bits); p2 != 0 {
			sf.bits = p2
			sf.n2 = uint8(bits.TrailingZeros64(p2))
		}
	}
	if sf.bits == 0 {
		return nil, ErrInvalidParameters
	}

	sf.hashes = uint64(math.Round(sf.bpe * math.Ln2))
	if sf.hashes < 1 {
		sf.hashes = 1
	}
	sf.force64 = opts.Force64 || sf.bits > math.MaxUint32
	sf.bs = bitset.New(uint(sf.bits))
	return sf, nil
}

// nextPow2 returns the smallest power of two >= n, or 0 on overflow.
func nextPow2(n uint64) uint64 {
	if n == 0 {
		return 1
	}
	if n > 1<<63 {
		return 0
	}
	return 1 << (64 - bits.LeadingZeros64(n-1))
}

// index returns the bit position of probe i using double hashing a + i*b.
// Small filters combine only the low 32 bits of each word, wrapping in
// 32-bit arithmetic.
func (sf *subFilter) index(h HashValue, i uint64) uint64 {
	var x uint64
	if sf.force64 {
		x = h.A + i*h.B
	} else {
		x = uint64(uint32(h.A) + uint32(i)*uint32(h.B))
	}
	if sf.n2 > 0 {
		return x & (sf.bits - 1)
	}
	return x % sf.bits
}

// test reports whether every probe bit for h is set.
func (sf *subFilter) test(h HashValue) bool {
	for i := uint64(0); i < sf.hashes; i++ {
		if !sf.bs.Test(uint(sf.index(h, i))) {
			return false
		}
	}
	return true
}

// add sets every probe bit for h and reports whether all of them were
// already set.
func (sf *subFilter) add(h HashValue) bool {
	present := true
	for i := uint64(0); i < sf.hashes; i++ {
		pos := uint(sf.index(h, i))
		if !sf.bs.Test(pos) {
			present = false
			sf.bs.Set(pos)
		}
	}
	return present
}

// bytes is the storage footprint of the bit array.
func (sf *subFilter) bytes() uint64 {
	return (sf.bits + 7) / 8
}
