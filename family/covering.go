package family

import (
	"context"
	"errors"
	"math"
	"math/bits"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Covering implements the A1 and A2 covering constructions.
type Covering struct {
	variant Kind
}

// NewCovering returns the covering strategy for A1 or A2.
func NewCovering(variant Kind) (Covering, error) {
	if variant != A1 && variant != A2 {
		return Covering{}, configError("family", variant, "covering family must be a1 or a2")
	}
	return Covering{variant: variant}, nil
}

// Kind implements Strategy.
func (s Covering) Kind() Kind {
	return s.variant
}

// Derive implements Strategy.
//
//	A1: b = 1, q = 1, t = ceil(log2(n) / (c·r))
//	A2: b = r, q = 2·ceil(ln(n) / c), t = 1
//	r' = floor(r·q / b), L = 2^(t·r'+1) - 1, b·L functions.
func (s Covering) Derive(in Inputs) (Params, error) {
	if err := in.validate(); err != nil {
		return Params{}, err
	}
	if in.R+1 >= MaxPatternBits {
		return Params{}, configError("r", in.R, "r+1 must stay below the covering bit-width ceiling")
	}

	n := float64(in.N)
	var (
		b, q, t int
		err     error
	)
	switch s.variant {
	case A1:
		b, q = 1, 1
		t, err = ceilInt("t", math.Log2(n)/(in.C*float64(in.R)), 0, MaxPatternBits)
	case A2:
		b, t = in.R, 1
		var half int
		half, err = ceilInt("q", math.Log(n)/in.C, 0, MaxPatternBits)
		q = 2 * half
	default:
		return Params{}, configError("family", s.variant, "covering family must be a1 or a2")
	}
	if err != nil {
		return Params{}, err
	}

	rPrime := in.R * q / b
	patternBits := t*rPrime + 1
	if patternBits >= MaxPatternBits {
		return Params{}, configError("pattern_bits", patternBits, "t·r'+1 must stay below the covering bit-width ceiling")
	}
	l := 1<<patternBits - 1
	if b*l > MaxFunctions {
		return Params{}, configError("num_functions", b*l, "too many hash functions")
	}

	return Params{
		Family:       s.variant,
		B:            b,
		Q:            q,
		T:            t,
		RPrime:       rPrime,
		PatternBits:  patternBits,
		L:            l,
		NumFunctions: b * l,
	}, nil
}

// Build implements Strategy.
//
// Every dimension draws its partition start from [1, b] and t masks from
// [0, 2^(t·r'+1)-1]. Function (k, v) keeps dimension i when i belongs to
// partition k and some mask of i has odd parity with v. The functions are
// ordered by (k-1)·L + (v-1).
func (s Covering) Build(ctx context.Context, d int, p Params, rng *rand.Rand) ([]HashFunction, error) {
	if err := checkBuildArgs(s.variant, d, p, rng); err != nil {
		return nil, err
	}
	if p.B <= 0 || p.L <= 0 || p.L != 1<<p.PatternBits-1 {
		return nil, configError("params", p, "inconsistent covering parameters")
	}

	pStart := make([]int, d)
	for i := range pStart {
		pStart[i] = 1 + rng.Intn(p.B)
	}
	masks := make([]uint32, d*p.T)
	for i := range masks {
		masks[i] = uint32(rng.Int63n(int64(p.L) + 1))
	}

	funcs := make([]HashFunction, p.B*p.L)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for k := 1; k <= p.B; k++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var members []int
			for i := 0; i < d; i++ {
				if inPartition(pStart[i], k, p.B, p.Q) {
					members = append(members, i)
				}
			}

			base := (k - 1) * p.L
			for v := 1; v <= p.L; v++ {
				if v%1024 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				var proj []int
				for _, i := range members {
					if oddParity(masks[i*p.T:(i+1)*p.T], uint32(v)) {
						proj = append(proj, i)
					}
				}
				funcs[base+v-1] = HashFunction{projection: proj}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return funcs, nil
}

// inPartition reports whether partition k lies in the cyclic interval of
// length q starting at start, over partitions 1..b.
func inPartition(start, k, b, q int) bool {
	return (start <= k && k < start+q) || (start > k && k+b < start+q)
}

// oddParity reports whether popcount(m & v) is odd for at least one mask m.
func oddParity(masks []uint32, v uint32) bool {
	for _, m := range masks {
		if bits.OnesCount32(m&v)&1 == 1 {
			return true
		}
	}
	return false
}

var errNilRand = errors.New("family: nil random source")

func checkBuildArgs(kind Kind, d int, p Params, rng *rand.Rand) error {
	if rng == nil {
		return errNilRand
	}
	if d <= 0 {
		return configError("d", d, "dimension must be positive")
	}
	if p.Family != kind {
		return configError("family", p.Family, "parameters were derived for a different family")
	}
	return nil
}
