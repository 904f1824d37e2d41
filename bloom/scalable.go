package bloom

// tighteningRatio halves the error budget of each appended sub-filter, so
// the chain's compounded error stays within 2x the requested rate.
const tighteningRatio = 0.5

// growthFactor doubles the insert target of each appended sub-filter.
const growthFactor = 2

// Filter is a scalable bloom filter. The zero value is not usable; create
// one with New.
type Filter struct {
	subs      []*subFilter
	entries   uint64
	errorRate float64
	opts      Options
	items     uint64
}

// New creates a filter sized for the given insert count and false-positive
// rate. With Options.EntriesIsBits set, entries is the bit count of the
// first sub-filter instead.
func New(entries uint64, errorRate float64, opts Options) (*Filter, error) {
	sf, err := newSubFilter(entries, errorRate, opts)
	if err != nil {
		return nil, err
	}
	return &Filter{
		subs:      []*subFilter{sf},
		entries:   entries,
		errorRate: errorRate,
		opts:      opts,
	}, nil
}

// Exists reports whether the key may have been added. False positives occur
// at the configured rate; false negatives never.
func (f *Filter) Exists(data []byte) bool {
	return f.ExistsHash(CalcHash(data))
}

// ExistsHash is Exists for a precomputed hash.
func (f *Filter) ExistsHash(h HashValue) bool {
	for _, sf := range f.subs {
		if sf.test(h) {
			return true
		}
	}
	return false
}

// Add inserts a key. It returns true when the key was newly added and false
// when the key (or a colliding bit pattern) was already present.
//
// When the filter is full and scaling is disabled the bits are still
// written, and the add is reported with ErrOverCapacity: membership holds
// but the configured error rate no longer does.
func (f *Filter) Add(data []byte) (bool, error) {
	return f.AddHash(CalcHash(data))
}

// AddHash is Add for a precomputed hash.
func (f *Filter) AddHash(h HashValue) (bool, error) {
	if len(f.subs) == 0 {
		return false, ErrNotInitialized
	}
	// A key present in any frozen level must not be re-added to the active
	// one; the chain's error bound assumes each key lives in one level.
	if f.ExistsHash(h) {
		return false, nil
	}
	cur := f.subs[len(f.subs)-1]
	if cur.size >= cur.entries {
		if f.opts.NoScaling {
			cur.add(h)
			cur.size++
			f.items++
			return true, ErrOverCapacity
		}
		next, err := newSubFilter(cur.entries*growthFactor, cur.errorRate*tighteningRatio, f.opts)
		if err != nil {
			return false, err
		}
		f.subs = append(f.subs, next)
		cur = next
	}
	cur.add(h)
	cur.size++
	f.items++
	return true, nil
}

// NumFilters is the number of sub-filters in the chain.
func (f *Filter) NumFilters() int {
	return len(f.subs)
}

// Items is the number of keys added (collisions excluded).
func (f *Filter) Items() uint64 {
	return f.items
}

// Cap is the summed insert target of all sub-filters.
func (f *Filter) Cap() uint64 {
	var n uint64
	for _, sf := range f.subs {
		n += sf.entries
	}
	return n
}

// TotalBits is the summed bit-array length of all sub-filters.
func (f *Filter) TotalBits() uint64 {
	var n uint64
	for _, sf := range f.subs {
		n += sf.bits
	}
	return n
}

// TotalBytes is the summed storage footprint of all sub-filters.
func (f *Filter) TotalBytes() uint64 {
	var n uint64
	for _, sf := range f.subs {
		n += sf.bytes()
	}
	return n
}

// Options returns the configuration the filter was created with.
func (f *Filter) Options() Options {
	return f.opts
}
