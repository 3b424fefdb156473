package hamlsh

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/hamlsh/bitvec"
	"github.com/hupe1980/hamlsh/family"
	"github.com/hupe1980/hamlsh/lsh"
	"github.com/hupe1980/hamlsh/testutil"
)

func scenarioData() []bitvec.BitVector {
	return testutil.MustParsePoints("000", "011", "110", "111")
}

func TestBuildAndQuery(t *testing.T) {
	ctx := context.Background()

	for _, kind := range []family.Kind{FamilyAuto, FamilyA1, FamilyA2, FamilyRandomized} {
		t.Run(kind.String(), func(t *testing.T) {
			cfg := Config{R: 1, C: 2, Family: kind}.WithSeed(7)
			if kind == FamilyRandomized {
				cfg.Delta = 1e-9
			}

			idx, err := Build(ctx, cfg, scenarioData())
			require.NoError(t, err)
			defer idx.Close()

			got, err := idx.Query(ctx, bitvec.MustParse("010"), 1)
			require.NoError(t, err)
			assert.Equal(t, []int{0, 1, 2}, got)

			assert.Equal(t, 3, idx.Dimension())
			assert.Equal(t, 4, idx.Len())
			assert.Equal(t, int64(7), idx.Seed())
			assert.NotEmpty(t, idx.ID())
			assert.Equal(t, idx.Params().NumFunctions, idx.Stats().Tables)
			if kind == FamilyAuto {
				assert.Equal(t, family.A2, idx.Params().Family)
			} else {
				assert.Equal(t, kind, idx.Params().Family)
			}
		})
	}
}

func TestBuild_ExactRecall(t *testing.T) {
	ctx := context.Background()
	rng := testutil.NewRNG(11)

	data := rng.ClusteredPoints(300, 40, 10, 3)
	idx, err := Build(ctx, Config{R: 3, C: 2, Family: FamilyA1}.WithSeed(3), data)
	require.NoError(t, err)
	defer idx.Close()

	queries := rng.RandomPoints(5, 40)
	for i := 0; i < 20; i++ {
		queries = append(queries, rng.PlantNear(data[rng.Intn(len(data))], rng.Intn(4)))
	}

	batch, err := idx.QueryBatch(ctx, queries, 3)
	require.NoError(t, err)
	require.Len(t, batch, len(queries))

	for i, q := range queries {
		want := testutil.LinearScan(data, q, 3)
		got, err := idx.Query(ctx, q, 3)
		require.NoError(t, err)
		assert.Equal(t, 1.0, testutil.ComputeRecall(want, got), "query %d", i)
		assert.Equal(t, len(want), len(got), "query %d", i)
		assert.Equal(t, got, batch[i], "query %d", i)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	ctx := context.Background()
	data := testutil.NewRNG(5).RandomPoints(200, 32)
	cfg := Config{R: 4, C: 2, Family: FamilyRandomized, Delta: 0.2}.WithSeed(99)

	a, err := Build(ctx, cfg, data)
	require.NoError(t, err)
	defer a.Close()
	b, err := Build(ctx, cfg, data)
	require.NoError(t, err)
	defer b.Close()

	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, a.Stats(), b.Stats())

	rng := testutil.NewRNG(6)
	for i := 0; i < 10; i++ {
		q := rng.RandomPoint(32)
		ra, err := a.Query(ctx, q, 10)
		require.NoError(t, err)
		rb, err := b.Query(ctx, q, 10)
		require.NoError(t, err)
		assert.Equal(t, ra, rb)
	}
}

func TestBuild_ClockSeed(t *testing.T) {
	var logs bytes.Buffer
	logger := NewLogger(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelInfo}))

	idx, err := Build(context.Background(), Config{R: 1, C: 2}, scenarioData(), WithLogger(logger))
	require.NoError(t, err)
	defer idx.Close()

	assert.NotZero(t, idx.Seed())
	out := logs.String()
	assert.Contains(t, out, "no seed configured")
	assert.Contains(t, out, "parameters derived")
	assert.Contains(t, out, "build completed")
	assert.Contains(t, out, "index="+idx.ID())
}

func TestBuild_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid radius", func(t *testing.T) {
		_, err := Build(ctx, Config{R: 0, C: 2}, scenarioData())
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("invalid delta", func(t *testing.T) {
		_, err := Build(ctx, Config{R: 1, C: 2, Delta: 1.5}, scenarioData())
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("derived ceiling", func(t *testing.T) {
		// r+1 >= 30 exceeds the covering pattern space.
		data := testutil.NewRNG(1).RandomPoints(4, 64)
		_, err := Build(ctx, Config{R: 40, C: 1, Family: FamilyA2}, data)
		assert.ErrorIs(t, err, ErrInvalidConfig)

		var ce *family.ConfigurationError
		assert.ErrorAs(t, err, &ce)
	})

	t.Run("empty dataset", func(t *testing.T) {
		_, err := Build(ctx, Config{R: 1, C: 2}, nil)
		assert.ErrorIs(t, err, ErrEmptyDataset)
	})

	t.Run("mixed dimensions", func(t *testing.T) {
		data := testutil.MustParsePoints("000", "0110")
		_, err := Build(ctx, Config{R: 1, C: 2}, data)

		var dm *ErrDimensionMismatch
		require.ErrorAs(t, err, &dm)
		assert.Equal(t, 3, dm.Expected)
		assert.Equal(t, 4, dm.Actual)
	})

	t.Run("memory limit", func(t *testing.T) {
		metrics := &BasicMetricsCollector{}
		_, err := Build(ctx, Config{R: 1, C: 2}.WithSeed(1), scenarioData(),
			WithMemoryLimit(16),
			WithMetricsCollector(metrics),
		)
		assert.ErrorIs(t, err, ErrMemoryLimit)
		assert.Equal(t, int64(1), metrics.GetStats().BuildErrors)
	})

	t.Run("canceled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := Build(cctx, Config{R: 1, C: 2}.WithSeed(1), scenarioData())
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestQuery_Errors(t *testing.T) {
	ctx := context.Background()
	metrics := &BasicMetricsCollector{}

	idx, err := Build(ctx, Config{R: 1, C: 2}.WithSeed(1), scenarioData(), WithMetricsCollector(metrics))
	require.NoError(t, err)

	_, err = idx.Query(ctx, bitvec.MustParse("01"), 1)
	var dm *ErrDimensionMismatch
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, 3, dm.Expected)
	assert.Equal(t, 2, dm.Actual)

	var inner *bitvec.DimensionMismatchError
	assert.ErrorAs(t, err, &inner)

	_, err = idx.Query(ctx, bitvec.MustParse("010"), -1)
	assert.ErrorIs(t, err, ErrInvalidThreshold)
	assert.ErrorIs(t, err, lsh.ErrInvalidThreshold)

	_, err = idx.QueryBatch(ctx, []bitvec.BitVector{bitvec.MustParse("010"), bitvec.MustParse("0")}, 1)
	assert.ErrorAs(t, err, &dm)

	stats := metrics.GetStats()
	assert.Equal(t, int64(2), stats.QueryCount)
	assert.Equal(t, int64(2), stats.QueryErrors)
	assert.Equal(t, int64(1), stats.BatchErrors)

	require.NoError(t, idx.Close())
	require.NoError(t, idx.Close())

	_, err = idx.Query(ctx, bitvec.MustParse("010"), 1)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = idx.QueryBatch(ctx, []bitvec.BitVector{bitvec.MustParse("010")}, 1)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestMetrics(t *testing.T) {
	ctx := context.Background()
	metrics := &BasicMetricsCollector{}

	idx, err := Build(ctx, Config{R: 1, C: 2}.WithSeed(1), scenarioData(), WithMetricsCollector(metrics))
	require.NoError(t, err)
	defer idx.Close()

	_, err = idx.Query(ctx, bitvec.MustParse("010"), 1)
	require.NoError(t, err)
	_, err = idx.QueryBatch(ctx, scenarioData(), 0)
	require.NoError(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.BuildCount)
	assert.Equal(t, int64(1), stats.QueryCount)
	assert.Equal(t, int64(3), stats.QueryTotalResults)
	assert.GreaterOrEqual(t, stats.QueryAvgCandidates, int64(3))
	assert.Equal(t, int64(1), stats.BatchCount)
	assert.Equal(t, int64(4), stats.BatchQueries)
}

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))

	other := errors.New("boom")
	assert.Same(t, other, translateError(other))

	err := translateError(lsh.ErrNotBuilt)
	assert.ErrorIs(t, err, ErrNotBuilt)
	assert.ErrorIs(t, err, lsh.ErrNotBuilt)

	err = translateError(&family.ConfigurationError{Field: "k", Reason: "too large"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.True(t, strings.Contains(err.Error(), "too large"))
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx := context.Background()
	logger.LogQuery(ctx, 2, lsh.QueryStats{Candidates: 5, Matches: 2}, 0, nil)
	assert.Contains(t, buf.String(), `"candidates":5`)

	buf.Reset()
	logger.LogBatchQuery(ctx, 3, 2, 0, errors.New("boom"))
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
	assert.Contains(t, buf.String(), "boom")

	buf.Reset()
	in := family.Inputs{D: 400, R: 100, C: 2, N: 1_000_000}
	logger.LogDerive(ctx, in, family.Params{Family: family.RandomizedK, K: 20, L: 1000, NumFunctions: 1000}, nil)
	assert.Contains(t, buf.String(), `"k":20`)
	assert.Contains(t, buf.String(), `"family":"randomized"`)

	NoopLogger().LogBatchQuery(ctx, 1, 1, 0, nil)
	assert.NotNil(t, NewTextLogger(slog.LevelWarn))
	assert.NotNil(t, NewJSONLogger(slog.LevelWarn))
	assert.NotNil(t, NewLogger(nil))
}
