package bloom

// Flag values of the options bitmask used at serialization boundaries.
const (
	// FlagNoRound keeps the exact computed bit count instead of rounding
	// it up to a power of two.
	FlagNoRound uint32 = 1
	// FlagEntriesIsBits makes the entries argument the bit count itself.
	FlagEntriesIsBits uint32 = 2
	// FlagForce64 always indexes with the full 64-bit hash words, even
	// for filters small enough for 32-bit indexing.
	FlagForce64 uint32 = 4
	// FlagNoScaling disables the sub-filter chain; a full filter keeps
	// accepting writes past its error budget.
	FlagNoScaling uint32 = 8
)

// Options configures a filter at creation time.
type Options struct {
	NoRound       bool
	EntriesIsBits bool
	Force64       bool
	NoScaling     bool
}

// OptionsFromFlags unpacks an options bitmask.
func OptionsFromFlags(flags uint32) Options {
	return Options{
		NoRound:       flags&FlagNoRound != 0,
		EntriesIsBits: flags&FlagEntriesIsBits != 0,
		Force64:       flags&FlagForce64 != 0,
		NoScaling:     flags&FlagNoScaling != 0,
	}
}

// Flags packs the options back into the bitmask form.
func (o Options) Flags() uint32 {
	var flags uint32
	if o.NoRound {
		flags |= FlagNoRound
	}
	if o.EntriesIsBits {
		flags |= FlagEntriesIsBits
	}
	if o.Force64 {
		flags |= FlagForce64
	}
	if o.NoScaling {
		flags |= FlagNoScaling
	}
	return flags
}
