package family

import (
	"context"
	"math"
	"math/rand"
)

// Randomized implements the k-bit sampling family.
type Randomized struct{}

// Kind implements Strategy.
func (Randomized) Kind() Kind {
	return RandomizedK
}

// Derive implements Strategy.
//
// A point outside radius c·r collides with the query in one table with
// probability P2^k ≈ 1/n, where P2 = 1 - c·r/d:
//
//	k = ceil(-ln(n) / ln(1 - c·r/d))
//
// With a failure probability δ, L tables make an r-near point collide in at
// least one of them with probability 1-δ, where P1 = 1 - r/d:
//
//	L = ceil(ln(δ) / ln(1 - P1^k))
//
// Without δ, L = ceil(n^(1/c)).
func (Randomized) Derive(in Inputs) (Params, error) {
	if err := in.validate(); err != nil {
		return Params{}, err
	}
	d, r, n := float64(in.D), float64(in.R), float64(in.N)

	if in.C*r >= d {
		return Params{}, configError("c", in.C, "c·r must be below the dimension")
	}
	// A single point needs no amplification; one sampled bit keeps k in range.
	k, err := ceilInt("k", -math.Log(n)/math.Log(1-in.C*r/d), 0, MaxKeyBits-1)
	if err != nil {
		return Params{}, err
	}
	k = max(k, 1)

	var l int
	if in.Delta != 0 {
		if !(in.Delta > 0 && in.Delta < 1) {
			return Params{}, configError("delta", in.Delta, "failure probability must be in (0, 1)")
		}
		p1 := 1 - r/d
		if p1 <= 0 {
			return Params{}, configError("r", in.R, "radius must be below the dimension")
		}
		l, err = ceilInt("L", math.Log(in.Delta)/math.Log(1-math.Pow(p1, float64(k))), 1, MaxFunctions)
	} else {
		l, err = ceilInt("L", math.Pow(n, 1/in.C), 1, MaxFunctions)
	}
	if err != nil {
		return Params{}, err
	}

	return Params{
		Family:       RandomizedK,
		K:            k,
		L:            l,
		NumFunctions: l,
	}, nil
}

// Build implements Strategy. Each function samples K dimensions uniformly
// with replacement; the key reads them in sampled order.
func (s Randomized) Build(ctx context.Context, d int, p Params, rng *rand.Rand) ([]HashFunction, error) {
	if err := checkBuildArgs(RandomizedK, d, p, rng); err != nil {
		return nil, err
	}
	if p.K <= 0 || p.K >= MaxKeyBits || p.L <= 0 {
		return nil, configError("params", p, "inconsistent randomized parameters")
	}

	funcs := make([]HashFunction, p.L)
	for i := range funcs {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		proj := make([]int, p.K)
		for j := range proj {
			proj[j] = rng.Intn(d)
		}
		funcs[i] = HashFunction{projection: proj}
	}
	return funcs, nil
}
