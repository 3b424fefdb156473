package lsh

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"github.com/hupe1980/hamlsh/bitvec"
	"github.com/hupe1980/hamlsh/family"
	"github.com/hupe1980/hamlsh/internal/resource"
	"github.com/hupe1980/hamlsh/internal/workerpool"
	"github.com/hupe1980/hamlsh/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hashFunctions(t testing.TB, kind family.Kind, d, n, r int, c, delta float64, seed int64) []family.HashFunction {
	t.Helper()

	s, p, err := family.Derive(kind, family.Inputs{D: d, R: r, C: c, N: n, Delta: delta})
	require.NoError(t, err)
	funcs, err := s.Build(context.Background(), d, p, rand.New(rand.NewSource(seed)))
	require.NoError(t, err)
	return funcs
}

func buildIndex(t testing.TB, kind family.Kind, data []bitvec.BitVector, r int, c, delta float64, seed int64, optFns ...func(*Options)) *Index {
	t.Helper()

	funcs := hashFunctions(t, kind, data[0].Len(), len(data), r, c, delta, seed)
	ix := New(optFns...)
	require.NoError(t, ix.Build(context.Background(), funcs, data))
	return ix
}

func TestIndex_Scenario(t *testing.T) {
	data := testutil.MustParsePoints("000", "011", "110", "111")
	q := bitvec.MustParse("010")

	tests := []struct {
		name  string
		kind  family.Kind
		delta float64
	}{
		{"A1", family.A1, 0},
		{"A2", family.A2, 0},
		{"Auto", family.Auto, 0},
		{"Randomized", family.RandomizedK, 1e-9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ix := buildIndex(t, tt.kind, data, 1, 2, tt.delta, 1)

			got, err := ix.Query(context.Background(), q, 1)
			require.NoError(t, err)
			assert.Equal(t, []int{0, 1, 2}, got)

			assert.True(t, ix.Built())
			assert.Equal(t, 3, ix.Dimension())
			assert.Equal(t, 4, ix.Len())
		})
	}
}

func TestIndex_CoveringExactRecall(t *testing.T) {
	rng := testutil.NewRNG(42)
	const d, r = 24, 2

	data := rng.ClusteredPoints(200, d, 10, 4)
	queries := make([]bitvec.BitVector, 0, 60)
	for i := 0; i < 40; i++ {
		queries = append(queries, rng.PlantNear(data[rng.Intn(len(data))], rng.Intn(r+1)))
	}
	queries = append(queries, rng.RandomPoints(20, d)...)

	for _, kind := range []family.Kind{family.A1, family.A2} {
		t.Run(kind.String(), func(t *testing.T) {
			ix := buildIndex(t, kind, data, r, 2, 0, 7)

			for qi, q := range queries {
				got, err := ix.Query(context.Background(), q, r)
				require.NoError(t, err)
				assert.Equal(t, testutil.LinearScan(data, q, r), nilIfEmpty(got), "query %d", qi)
			}
		})
	}
}

func TestIndex_WideKeys(t *testing.T) {
	rng := testutil.NewRNG(9)
	const d, r = 130, 2

	data := rng.RandomPoints(50, d)
	ix := buildIndex(t, family.A1, data, r, 2, 0, 3)

	for i := 0; i < 10; i++ {
		q := rng.PlantNear(data[i], r)
		got, err := ix.Query(context.Background(), q, r)
		require.NoError(t, err)
		assert.Contains(t, got, i)
		assert.Equal(t, testutil.LinearScan(data, q, r), nilIfEmpty(got))
	}
}

func TestIndex_NoFalsePositivesAndMonotonicity(t *testing.T) {
	rng := testutil.NewRNG(5)
	const d = 32

	data := rng.ClusteredPoints(300, d, 5, 6)
	ix := buildIndex(t, family.RandomizedK, data, 3, 2, 0.1, 11)

	for i := 0; i < 30; i++ {
		q := rng.PlantNear(data[rng.Intn(len(data))], rng.Intn(4))

		var prev []int
		for threshold := 0; threshold <= 8; threshold++ {
			got, err := ix.Query(context.Background(), q, threshold)
			require.NoError(t, err)

			for _, idx := range got {
				dist, err := bitvec.Distance(data[idx], q)
				require.NoError(t, err)
				assert.LessOrEqual(t, dist, threshold)
			}
			assert.Subset(t, got, prev)
			assert.IsIncreasing(t, got, "results are sorted")
			prev = got
		}
	}
}

func TestIndex_SelfMembership(t *testing.T) {
	rng := testutil.NewRNG(8)
	data := rng.RandomPoints(100, 40)

	for _, kind := range []family.Kind{family.A1, family.A2, family.RandomizedK} {
		t.Run(kind.String(), func(t *testing.T) {
			ix := buildIndex(t, kind, data, 2, 4, 0.1, 2)
			for i, p := range data {
				got, err := ix.Query(context.Background(), p, 0)
				require.NoError(t, err)
				assert.Contains(t, got, i)
			}
		})
	}
}

func TestIndex_RandomizedRecallBound(t *testing.T) {
	const (
		d, n, r = 64, 500, 4
		delta   = 0.1
		seeds   = 20
		queries = 20
	)

	rng := testutil.NewRNG(2024)
	data := rng.RandomPoints(n, d)

	hits, trials := 0, 0
	for seed := int64(0); seed < seeds; seed++ {
		ix := buildIndex(t, family.RandomizedK, data, r, 2, delta, seed)
		for i := 0; i < queries; i++ {
			target := rng.Intn(n)
			q := rng.PlantNear(data[target], r)

			got, err := ix.Query(context.Background(), q, r)
			require.NoError(t, err)
			if contains(got, target) {
				hits++
			}
			trials++
		}
	}

	recall := float64(hits) / float64(trials)
	assert.GreaterOrEqual(t, recall, testutil.RecallLowerBound(1-delta, trials, 0.9999))
}

func TestIndex_QueryErrors(t *testing.T) {
	data := testutil.MustParsePoints("000", "011", "110", "111")

	t.Run("NotBuilt", func(t *testing.T) {
		ix := New()
		_, err := ix.Query(context.Background(), bitvec.MustParse("010"), 1)
		assert.ErrorIs(t, err, ErrNotBuilt)
		_, err = ix.QueryBatch(context.Background(), data, 1)
		assert.ErrorIs(t, err, ErrNotBuilt)
		assert.Zero(t, ix.Len())
		assert.Zero(t, ix.Dimension())
		assert.Zero(t, ix.Tables())
		assert.Equal(t, Stats{}, ix.Stats())
	})

	ix := buildIndex(t, family.A1, data, 1, 2, 0, 1)

	t.Run("DimensionMismatch", func(t *testing.T) {
		_, err := ix.Query(context.Background(), bitvec.MustParse("0101"), 1)
		var dm *bitvec.DimensionMismatchError
		require.ErrorAs(t, err, &dm)
		assert.Equal(t, 3, dm.Expected)
		assert.Equal(t, 4, dm.Actual)
	})

	t.Run("NegativeThreshold", func(t *testing.T) {
		_, err := ix.Query(context.Background(), bitvec.MustParse("010"), -1)
		assert.ErrorIs(t, err, ErrInvalidThreshold)
		_, err = ix.QueryBatch(context.Background(), data, -1)
		assert.ErrorIs(t, err, ErrInvalidThreshold)
	})

	t.Run("Cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := ix.Query(ctx, bitvec.MustParse("010"), 1)
		assert.ErrorIs(t, err, context.Canceled)

		// The index is unaffected.
		got, err := ix.Query(context.Background(), bitvec.MustParse("010"), 1)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1, 2}, got)
	})
}

func TestIndex_BuildErrors(t *testing.T) {
	ctx := context.Background()
	data := testutil.MustParsePoints("000", "011", "110", "111")
	funcs := hashFunctions(t, family.A1, 3, 4, 1, 2, 0, 1)

	t.Run("EmptyDataset", func(t *testing.T) {
		assert.ErrorIs(t, New().Build(ctx, funcs, nil), ErrEmptyDataset)
	})

	t.Run("NoFunctions", func(t *testing.T) {
		assert.ErrorIs(t, New().Build(ctx, nil, data), ErrNoHashFunctions)
	})

	t.Run("MixedDimensions", func(t *testing.T) {
		ix := New()
		err := ix.Build(ctx, funcs, testutil.MustParsePoints("000", "01"))
		var dm *bitvec.DimensionMismatchError
		require.ErrorAs(t, err, &dm)
		assert.Equal(t, 2, dm.Actual)
		assert.False(t, ix.Built())
	})

	t.Run("ProjectionOutOfRange", func(t *testing.T) {
		bad := []family.HashFunction{family.NewHashFunction([]int{0, 3})}
		assert.ErrorIs(t, New().Build(ctx, bad, data), family.ErrConfiguration)
	})

	t.Run("AlreadyBuilt", func(t *testing.T) {
		ix := New()
		require.NoError(t, ix.Build(ctx, funcs, data))
		assert.ErrorIs(t, ix.Build(ctx, funcs, data), ErrAlreadyBuilt)
	})

	t.Run("Cancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		ix := New()
		assert.ErrorIs(t, ix.Build(cctx, funcs, data), context.Canceled)
		assert.False(t, ix.Built())

		// A failed build can be retried.
		require.NoError(t, ix.Build(ctx, funcs, data))
		assert.True(t, ix.Built())
	})
}

func TestIndex_MemoryBudget(t *testing.T) {
	ctx := context.Background()
	data := testutil.MustParsePoints("000", "011", "110", "111")
	funcs := hashFunctions(t, family.A2, 3, 4, 1, 2, 0, 1)

	t.Run("Exceeded", func(t *testing.T) {
		rc := resource.NewController(resource.Config{MemoryLimitBytes: 16})
		ix := New(func(o *Options) { o.Resource = rc })

		err := ix.Build(ctx, funcs, data)
		assert.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
		assert.False(t, ix.Built())
		assert.Zero(t, rc.Usage().MemoryReserved)
	})

	t.Run("ReservedUntilClose", func(t *testing.T) {
		rc := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 30})
		ix := New(func(o *Options) { o.Resource = rc })

		require.NoError(t, ix.Build(ctx, funcs, data))
		assert.Equal(t, ix.Stats().EstimatedBytes, rc.Usage().MemoryReserved)
		assert.Positive(t, rc.Usage().MemoryReserved)

		require.NoError(t, ix.Close())
		assert.Zero(t, rc.Usage().MemoryReserved)
		require.NoError(t, ix.Close())
		assert.Zero(t, rc.Usage().MemoryReserved)
	})
}

func TestIndex_Stats(t *testing.T) {
	data := testutil.MustParsePoints("000", "011", "110", "111")
	funcs := []family.HashFunction{
		family.NewHashFunction([]int{0}),    // buckets {0: [0,1], 1: [2,3]}
		family.NewHashFunction(nil),         // one bucket with everything
		family.NewHashFunction([]int{1, 2}), // 00:[0] 11:[1,3] 10:[2]
	}

	ix := New()
	require.NoError(t, ix.Build(context.Background(), funcs, data))

	s := ix.Stats()
	assert.Equal(t, 4, s.Points)
	assert.Equal(t, 3, s.Dimension)
	assert.Equal(t, 3, s.Tables)
	assert.Equal(t, 6, s.Buckets)
	assert.Equal(t, 4, s.MaxBucket)
	assert.InDelta(t, 2.0, s.MeanBucket, 1e-9)
	assert.Positive(t, s.EstimatedBytes)
	assert.Equal(t, 3, ix.Tables())

	p, ok := ix.Point(1)
	require.True(t, ok)
	assert.Equal(t, "011", p.String())
	_, ok = ix.Point(4)
	assert.False(t, ok)
}

func TestIndex_QueryWithStats(t *testing.T) {
	data := testutil.MustParsePoints("000", "011", "110", "111")
	funcs := []family.HashFunction{family.NewHashFunction(nil)}

	ix := New()
	require.NoError(t, ix.Build(context.Background(), funcs, data))

	got, stats, err := ix.QueryWithStats(context.Background(), bitvec.MustParse("010"), 1)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, got)
	assert.Equal(t, QueryStats{Candidates: 4, Matches: 3}, stats)
}

func TestIndex_ConcurrentQueries(t *testing.T) {
	rng := testutil.NewRNG(77)
	data := rng.ClusteredPoints(400, 48, 8, 5)
	ix := buildIndex(t, family.A1, data, 3, 2, 0, 4)

	queries := make([]bitvec.BitVector, 64)
	for i := range queries {
		queries[i] = rng.PlantNear(data[rng.Intn(len(data))], rng.Intn(4))
	}

	want := make([][]int, len(queries))
	for i, q := range queries {
		res, err := ix.Query(context.Background(), q, 3)
		require.NoError(t, err)
		want[i] = res
	}

	var wg sync.WaitGroup
	got := make([][]int, len(queries))
	errs := make([]error, len(queries))
	for i, q := range queries {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i], errs[i] = ix.Query(context.Background(), q, 3)
		}()
	}
	wg.Wait()

	for i := range queries {
		require.NoError(t, errs[i])
		assert.Equal(t, want[i], got[i])
	}
}

func TestIndex_QueryBatch(t *testing.T) {
	rng := testutil.NewRNG(31)
	data := rng.ClusteredPoints(200, 32, 4, 4)
	queries := make([]bitvec.BitVector, 50)
	for i := range queries {
		queries[i] = rng.PlantNear(data[rng.Intn(len(data))], 2)
	}

	pool := workerpool.New(3)
	defer pool.Close()

	for name, optFn := range map[string]func(*Options){
		"TransientPool": func(o *Options) { o.Workers = 4 },
		"SharedPool":    func(o *Options) { o.Pool = pool },
	} {
		t.Run(name, func(t *testing.T) {
			ix := buildIndex(t, family.A2, data, 2, 2, 0, 6, optFn)

			got, err := ix.QueryBatch(context.Background(), queries, 2)
			require.NoError(t, err)
			require.Len(t, got, len(queries))

			for i, q := range queries {
				want, err := ix.Query(context.Background(), q, 2)
				require.NoError(t, err)
				assert.Equal(t, want, got[i], "query %d", i)
			}

			empty, err := ix.QueryBatch(context.Background(), nil, 2)
			require.NoError(t, err)
			assert.Empty(t, empty)
		})
	}
}

func TestIndex_QueryBatchError(t *testing.T) {
	data := testutil.MustParsePoints("000", "011", "110", "111")
	ix := buildIndex(t, family.A1, data, 1, 2, 0, 1)

	qs := testutil.MustParsePoints("010", "01", "111")
	_, err := ix.QueryBatch(context.Background(), qs, 1)
	var dm *bitvec.DimensionMismatchError
	assert.ErrorAs(t, err, &dm)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ix.QueryBatch(ctx, data, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func contains(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func nilIfEmpty(s []int) []int {
	if len(s) == 0 {
		return nil
	}
	return s
}
