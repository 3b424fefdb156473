package family

import (
	"fmt"
	"slices"

	"github.com/hupe1980/hamlsh/bitvec"
)

// HashFunction is a projection: the ordered list of dimensions whose bits,
// read in order, form the base-2 bucket key of a point.
type HashFunction struct {
	projection []int
}

// NewHashFunction returns a function reading the given dimensions in order.
func NewHashFunction(projection []int) HashFunction {
	return HashFunction{projection: slices.Clone(projection)}
}

// Projection returns a copy of the dimensions read by the function.
func (h HashFunction) Projection() []int {
	return slices.Clone(h.projection)
}

// Bits returns the width of the key in bits.
func (h HashFunction) Bits() int {
	return len(h.projection)
}

// Validate checks that every projected dimension lies in [0, d).
func (h HashFunction) Validate(d int) error {
	for _, i := range h.projection {
		if i < 0 || i >= d {
			return configError("projection", i, fmt.Sprintf("dimension index out of range [0, %d)", d))
		}
	}
	return nil
}

// KeyBytes returns the number of bytes of a key produced by AppendKey.
func (h HashFunction) KeyBytes() int {
	return (len(h.projection) + 7) / 8
}

// AppendKey appends the bucket key of p to dst and returns the extended slice.
//
// The key is the big-endian encoding of the base-2 integer formed by the
// projected bits, left-padded to a whole number of bytes. Its width is only
// bounded by the projection length, so it never overflows.
func (h HashFunction) AppendKey(dst []byte, p bitvec.BitVector) []byte {
	n := len(h.projection)
	nbytes := (n + 7) / 8
	start := len(dst)
	dst = slices.Grow(dst, nbytes)[:start+nbytes]
	clear(dst[start:])

	pad := nbytes*8 - n
	for j, dim := range h.projection {
		if p.Test(dim) {
			pos := pad + j
			dst[start+pos/8] |= 0x80 >> (pos % 8)
		}
	}
	return dst
}

// Key returns the bucket key of p as a string suitable for map lookups.
func (h HashFunction) Key(p bitvec.BitVector) string {
	return string(h.AppendKey(nil, p))
}

// Uint64Key returns the bucket key of p as an integer. ok is false when the
// projection is wider than 64 bits.
func (h HashFunction) Uint64Key(p bitvec.BitVector) (key uint64, ok bool) {
	if len(h.projection) > 64 {
		return 0, false
	}
	for _, dim := range h.projection {
		key <<= 1
		if p.Test(dim) {
			key |= 1
		}
	}
	return key, true
}
