package bitvec

import (
	"fmt"
	"strings"
)

// Parse converts a bit string ("0110...") into a BitVector.
// Character i becomes dimension i.
func Parse(s string) (BitVector, error) {
	v := New(len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0':
		case '1':
			v.bits.Set(uint(i))
		default:
			return BitVector{}, fmt.Errorf("%w %q at position %d", ErrInvalidBit, s[i], i)
		}
	}
	return v, nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(s string) BitVector {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String renders the vector as a bit string.
func (v BitVector) String() string {
	var sb strings.Builder
	sb.Grow(v.dim)
	for i := 0; i < v.dim; i++ {
		if v.bits.Test(uint(i)) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// MarshalText implements encoding.TextMarshaler.
func (v BitVector) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *BitVector) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
