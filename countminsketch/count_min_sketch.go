// Package countminsketch implements a Count-Min sketch: approximate
// per-item counters over a fixed grid of cells. Estimates never undercount;
// they overcount by at most the configured error fraction of the total
// weight, with the configured probability.
package countminsketch

import (
	"errors"
	"math"

	"github.com/fukua95/filters/internal/hashes"
)

var (
	ErrInvalidParameters = errors.New("countminsketch: invalid parameters")
	ErrDimensionMismatch = errors.New("countminsketch: dimension mismatch")
)

// Sketch is a Count-Min sketch of depth rows by width cells. The zero value
// is not usable; create one with New or NewWithDim.
type Sketch struct {
	width uint64
	depth uint64
	total uint64
	rows  [][]uint64
}

// New sizes a sketch so that estimates exceed the true count by more than
// overEstimate * total-weight with probability at most errorRate.
// width = ceil(2/overEstimate), depth = ceil(log_0.5(errorRate)).
func New(overEstimate, errorRate float64) (*Sketch, error) {
	if overEstimate <= 0 || overEstimate >= 1 || errorRate <= 0 || errorRate >= 1 {
		return nil, ErrInvalidParameters
	}
	width := uint64(math.Ceil(2.0 / overEstimate))
	depth := uint64(math.Ceil(math.Log10(errorRate) / math.Log10(0.5)))
	return NewWithDim(width, depth)
}

// NewWithDim creates a sketch with explicit dimensions.
func NewWithDim(width, depth uint64) (*Sketch, error) {
	if width == 0 || depth == 0 {
		return nil, ErrInvalidParameters
	}
	if width > math.MaxUint64/depth {
		return nil, ErrInvalidParameters
	}
	s := &Sketch{
		width: width,
		depth: depth,
		rows:  make([][]uint64, depth),
	}
	for i := range s.rows {
		s.rows[i] = make([]uint64, width)
	}
	return s, nil
}

// cell picks the column of data in row i; each row hashes under its own seed.
func (s *Sketch) cell(data []byte, row uint64) uint64 {
	return hashes.Sum64Seed(data, row) % s.width
}

// IncrBy adds val to the item's counters and returns the updated estimate.
// Cells saturate instead of wrapping.
func (s *Sketch) IncrBy(data []byte, val uint64) uint64 {
	est := uint64(math.MaxUint64)
	for i := uint64(0); i < s.depth; i++ {
		c := &s.rows[i][s.cell(data, i)]
		if *c > math.MaxUint64-val {
			*c = math.MaxUint64
		} else {
			*c += val
		}
		est = min(est, *c)
	}
	if s.total > math.MaxUint64-val {
		s.total = math.MaxUint64
	} else {
		s.total += val
	}
	return est
}

// Query returns the estimated count for the item. Never an undercount.
func (s *Sketch) Query(data []byte) uint64 {
	est := uint64(math.MaxUint64)
	for i := uint64(0); i < s.depth; i++ {
		est = min(est, s.rows[i][s.cell(data, i)])
	}
	return est
}

// Total is the summed weight of all increments.
func (s *Sketch) Total() uint64 {
	return s.total
}

// Width returns the cell count per row.
func (s *Sketch) Width() uint64 {
	return s.width
}

// Depth returns the row count.
func (s *Sketch) Depth() uint64 {
	return s.depth
}

// Merge folds other into s cell by cell. Both sketches must share the same
// dimensions; cells saturate instead of wrapping.
func (s *Sketch) Merge(other *Sketch) error {
	if s.width != other.width || s.depth != other.depth {
		return ErrDimensionMismatch
	}
	for i := range s.rows {
		for j := range s.rows[i] {
			v := other.rows[i][j]
			if s.rows[i][j] > math.MaxUint64-v {
				s.rows[i][j] = math.MaxUint64
			} else {
				s.rows[i][j] += v
			}
		}
	}
	if s.total > math.MaxUint64-other.total {
		s.total = math.MaxUint64
	} else {
		s.total += other.total
	}
	return nil
}
