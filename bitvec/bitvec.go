package bitvec

import (
	"errors"
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// ErrInvalidBit is returned by Parse for characters other than '0' and '1'.
var ErrInvalidBit = errors.New("bitvec: invalid bit character")

// DimensionMismatchError indicates that two points (or a point and an index)
// disagree on the number of dimensions.
type DimensionMismatchError struct {
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// BitVector is an ordered sequence of bits with a fixed dimension.
//
// The zero value is an empty vector of dimension 0.
type BitVector struct {
	bits *bitset.BitSet
	dim  int
}

// New returns an all-zero vector with d dimensions.
func New(d int) BitVector {
	if d < 0 {
		d = 0
	}
	return BitVector{bits: bitset.New(uint(d)), dim: d}
}

// FromBools builds a vector from a bool slice; bits[i] becomes dimension i.
func FromBools(bits []bool) BitVector {
	v := New(len(bits))
	for i, b := range bits {
		if b {
			v.bits.Set(uint(i))
		}
	}
	return v
}

// Len returns the dimension of the vector.
func (v BitVector) Len() int {
	return v.dim
}

// Test reports whether bit i is set. Out-of-range indices report false.
func (v BitVector) Test(i int) bool {
	if i < 0 || i >= v.dim {
		return false
	}
	return v.bits.Test(uint(i))
}

// Set sets bit i to value. Out-of-range indices are ignored.
func (v BitVector) Set(i int, value bool) {
	if i < 0 || i >= v.dim {
		return
	}
	v.bits.SetTo(uint(i), value)
}

// OnesCount returns the number of set bits.
func (v BitVector) OnesCount() int {
	if v.bits == nil {
		return 0
	}
	return int(v.bits.Count())
}

// Clone returns a deep copy.
func (v BitVector) Clone() BitVector {
	if v.bits == nil {
		return BitVector{}
	}
	return BitVector{bits: v.bits.Clone(), dim: v.dim}
}

// Equal reports whether both vectors have the same dimension and bits.
func (v BitVector) Equal(o BitVector) bool {
	if v.dim != o.dim {
		return false
	}
	if v.dim == 0 {
		return true
	}
	return v.bits.Equal(o.bits)
}

// Distance returns the Hamming distance between a and b.
func Distance(a, b BitVector) (int, error) {
	if a.dim != b.dim {
		return 0, &DimensionMismatchError{Expected: a.dim, Actual: b.dim}
	}
	if a.dim == 0 {
		return 0, nil
	}
	return int(a.bits.SymmetricDifferenceCardinality(b.bits)), nil
}

// Within reports whether the Hamming distance between a and b is at most
// threshold. Both vectors must have the same dimension.
func Within(a, b BitVector, threshold int) bool {
	d, err := Distance(a, b)
	return err == nil && d <= threshold
}

// CheckDimension verifies that every point has dimension d.
// The returned error identifies the first offending point.
func CheckDimension(points []BitVector, d int) error {
	for i, p := range points {
		if p.dim != d {
			return fmt.Errorf("point %d: %w", i, &DimensionMismatchError{Expected: d, Actual: p.dim})
		}
	}
	return nil
}
