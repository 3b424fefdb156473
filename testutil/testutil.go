package testutil

import (
	"math"
	"math/rand"
	"sync"

	"github.com/hupe1980/hamlsh/bitvec"
	"gonum.org/v1/gonum/stat/distuv"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Fork returns an independent *rand.Rand seeded from this RNG, for APIs
// that take a random source directly.
func (r *RNG) Fork() *rand.Rand {
	r.mu.Lock()
	defer r.mu.Unlock()
	return rand.New(rand.NewSource(r.rand.Int63()))
}

// RandomPoint returns a point with d uniformly random bits.
func (r *RNG) RandomPoint(d int) bitvec.BitVector {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.randomPointLocked(d)
}

func (r *RNG) randomPointLocked(d int) bitvec.BitVector {
	p := bitvec.New(d)
	for i := 0; i < d; i++ {
		if r.rand.Intn(2) == 1 {
			p.Set(i, true)
		}
	}
	return p
}

// RandomPoints returns num uniformly random points of dimension d.
// Locks only once per call.
func (r *RNG) RandomPoints(num, d int) []bitvec.BitVector {
	r.mu.Lock()
	defer r.mu.Unlock()

	points := make([]bitvec.BitVector, num)
	for i := range points {
		points[i] = r.randomPointLocked(d)
	}
	return points
}

// PlantNear returns a copy of center with exactly dist distinct bits flipped.
// dist is clamped to [0, center.Len()].
func (r *RNG) PlantNear(center bitvec.BitVector, dist int) bitvec.BitVector {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.plantNearLocked(center, dist)
}

func (r *RNG) plantNearLocked(center bitvec.BitVector, dist int) bitvec.BitVector {
	d := center.Len()
	dist = max(0, min(dist, d))

	p := center.Clone()
	for _, i := range r.rand.Perm(d)[:dist] {
		p.Set(i, !p.Test(i))
	}
	return p
}

// ClusteredPoints generates num points around the given number of random
// centers. Each point differs from its center in at most spread bits.
func (r *RNG) ClusteredPoints(num, d, clusters, spread int) []bitvec.BitVector {
	r.mu.Lock()
	defer r.mu.Unlock()

	if clusters <= 0 {
		clusters = 1
	}
	centers := make([]bitvec.BitVector, clusters)
	for i := range centers {
		centers[i] = r.randomPointLocked(d)
	}

	points := make([]bitvec.BitVector, num)
	for i := range points {
		c := centers[r.rand.Intn(clusters)]
		points[i] = r.plantNearLocked(c, r.rand.Intn(spread+1))
	}
	return points
}

// LinearScan returns, in ascending order, the indices of all points within
// Hamming distance threshold of query. Points whose dimension differs from
// the query are skipped.
func LinearScan(data []bitvec.BitVector, query bitvec.BitVector, threshold int) []int {
	var out []int
	for i, p := range data {
		if bitvec.Within(p, query, threshold) {
			out = append(out, i)
		}
	}
	return out
}

// ComputeRecall returns the fraction of groundTruth indices that appear in
// approximate. An empty ground truth has recall 1.
func ComputeRecall(groundTruth, approximate []int) float64 {
	if len(groundTruth) == 0 {
		return 1
	}

	found := make(map[int]struct{}, len(approximate))
	for _, i := range approximate {
		found[i] = struct{}{}
	}

	hits := 0
	for _, i := range groundTruth {
		if _, ok := found[i]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(groundTruth))
}

// RecallLowerBound returns the smallest observed success rate over trials
// independent Bernoulli(p) outcomes that is still consistent with p at the
// given one-sided confidence, using the normal approximation.
func RecallLowerBound(p float64, trials int, confidence float64) float64 {
	if trials <= 0 {
		return 0
	}
	z := distuv.UnitNormal.Quantile(confidence)
	bound := p - z*math.Sqrt(p*(1-p)/float64(trials))
	return max(0, bound)
}

// MustParsePoints parses bit strings, panicking on invalid input.
func MustParsePoints(s ...string) []bitvec.BitVector {
	points := make([]bitvec.BitVector, len(s))
	for i, str := range s {
		points[i] = bitvec.MustParse(str)
	}
	return points
}
