package family

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
)

const (
	// MaxPatternBits bounds r+1 and the covering pattern width t·r'+1.
	// A covering family has 2^(t·r'+1)-1 functions per partition.
	MaxPatternBits = 30

	// MaxKeyBits bounds k for the randomized family so every key fits a uint64.
	MaxKeyBits = 64

	// MaxFunctions bounds the total number of hash functions (and tables).
	MaxFunctions = 1 << 24
)

// Kind identifies a hash family construction.
type Kind int

const (
	// Auto selects A1 or A2 from n, r and c.
	Auto Kind = iota
	// A1 is the covering construction with one partition and t masks per dimension.
	A1
	// A2 is the covering construction with r partitions and one mask per dimension.
	A2
	// RandomizedK samples k bits per function.
	RandomizedK
)

func (k Kind) String() string {
	switch k {
	case Auto:
		return "auto"
	case A1:
		return "a1"
	case A2:
		return "a2"
	case RandomizedK:
		return "randomized"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// ParseKind parses the text form of a Kind. The numeric codes 0 (auto),
// 1 (a1) and 2 (a2) are accepted as well.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto", "0":
		return Auto, nil
	case "a1", "1":
		return A1, nil
	case "a2", "2":
		return A2, nil
	case "randomized", "random", "k":
		return RandomizedK, nil
	default:
		return Auto, configError("family", s, "expected auto, a1, a2 or randomized")
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Inputs are the values parameters are derived from.
type Inputs struct {
	D     int     // dimension
	R     int     // near radius
	C     float64 // approximation factor
	N     int     // dataset size
	Delta float64 // failure probability; 0 means absent
}

func (in Inputs) validate() error {
	if in.D <= 0 {
		return configError("d", in.D, "dimension must be positive")
	}
	if in.R <= 0 {
		return configError("r", in.R, "radius must be positive")
	}
	if !(in.C > 0) || math.IsInf(in.C, 0) {
		return configError("c", in.C, "approximation factor must be a positive number")
	}
	if in.N <= 0 {
		return configError("n", in.N, "dataset must contain at least one point")
	}
	return nil
}

// Params are the derived structural parameters of a family.
type Params struct {
	Family Kind `json:"family"`

	// Covering families.
	B           int `json:"b,omitempty"`
	Q           int `json:"q,omitempty"`
	T           int `json:"t,omitempty"`
	RPrime      int `json:"r_prime,omitempty"`
	PatternBits int `json:"pattern_bits,omitempty"`

	// Randomized family.
	K int `json:"k,omitempty"`

	// L is the number of functions per partition (covering) or the number of
	// tables (randomized).
	L            int `json:"l"`
	NumFunctions int `json:"num_functions"`
}

// Strategy derives parameters and builds the hash functions of one family.
type Strategy interface {
	// Kind returns the concrete family (never Auto).
	Kind() Kind

	// Derive computes the family parameters for the given inputs.
	Derive(in Inputs) (Params, error)

	// Build creates the hash functions for dimension d. All random draws come
	// from rng, so a fixed seed reproduces the same functions.
	Build(ctx context.Context, d int, p Params, rng *rand.Rand) ([]HashFunction, error)
}

// Resolve maps Auto to A1 or A2 by comparing c·r against log2(n).
// Other kinds are returned unchanged.
func Resolve(kind Kind, n, r int, c float64) Kind {
	if kind != Auto {
		return kind
	}
	if c*float64(r) < math.Log2(float64(n)) {
		return A1
	}
	return A2
}

// Select returns the strategy for kind, resolving Auto from the inputs.
func Select(kind Kind, in Inputs) (Strategy, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	switch Resolve(kind, in.N, in.R, in.C) {
	case A1:
		return Covering{variant: A1}, nil
	case A2:
		return Covering{variant: A2}, nil
	case RandomizedK:
		return Randomized{}, nil
	default:
		return nil, configError("family", kind, "unknown hash family")
	}
}

// Derive is a shortcut for Select followed by Strategy.Derive.
func Derive(kind Kind, in Inputs) (Strategy, Params, error) {
	s, err := Select(kind, in)
	if err != nil {
		return nil, Params{}, err
	}
	p, err := s.Derive(in)
	if err != nil {
		return nil, Params{}, err
	}
	return s, p, nil
}

// ceilInt converts math.Ceil(x) to int, rejecting values outside [lo, hi].
func ceilInt(field string, x float64, lo, hi int) (int, error) {
	c := math.Ceil(x)
	if math.IsNaN(c) || c < float64(lo) || c > float64(hi) {
		return 0, configError(field, x, fmt.Sprintf("derived value must be in [%d, %d]", lo, hi))
	}
	return int(c), nil
}
