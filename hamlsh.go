package hamlsh

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/hamlsh/bitvec"
	"github.com/hupe1980/hamlsh/family"
	"github.com/hupe1980/hamlsh/internal/cpu"
	"github.com/hupe1980/hamlsh/internal/resource"
	"github.com/hupe1980/hamlsh/internal/workerpool"
	"github.com/hupe1980/hamlsh/lsh"
)

// Stats summarizes a built index.
type Stats = lsh.Stats

// Params are the derived family parameters of an index.
type Params = family.Params

// Index is an immutable r-near-neighbor index over a fixed dataset.
// It is safe for concurrent use.
type Index struct {
	id     string
	cfg    Config
	seed   int64
	params Params

	ix   *lsh.Index
	pool *workerpool.Pool

	logger  *Logger
	metrics MetricsCollector

	closed    atomic.Bool
	closeOnce sync.Once
}

// Build derives the family parameters for data, constructs the hash
// functions and hashes every point into its tables.
//
// data is kept by reference and must not be modified while the index is in
// use. Query results are positions in data.
func Build(ctx context.Context, cfg Config, data []bitvec.BitVector, optFns ...Option) (*Index, error) {
	o := applyOptions(optFns)

	id := uuid.NewString()
	logger := o.logger.WithIndex(id)

	start := time.Now()
	idx, err := build(ctx, id, cfg, data, o, logger)
	elapsed := time.Since(start)

	if err != nil {
		var seed int64
		if cfg.Seed != nil {
			seed = *cfg.Seed
		}
		o.metricsCollector.RecordBuild(len(data), 0, elapsed, err)
		logger.LogBuild(ctx, seed, Stats{}, elapsed, err)
		return nil, err
	}

	stats := idx.ix.Stats()
	o.metricsCollector.RecordBuild(stats.Points, stats.Tables, elapsed, nil)
	logger.LogBuild(ctx, idx.seed, stats, elapsed, nil)

	return idx, nil
}

func build(ctx context.Context, id string, cfg Config, data []bitvec.BitVector, o options, logger *Logger) (*Index, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, translateError(lsh.ErrEmptyDataset)
	}

	dim := data[0].Len()
	if err := bitvec.CheckDimension(data, dim); err != nil {
		return nil, translateError(err)
	}

	in := family.Inputs{D: dim, R: cfg.R, C: cfg.C, N: len(data), Delta: cfg.Delta}
	strategy, params, err := family.Derive(cfg.Family, in)
	logger.LogDerive(ctx, in, params, err)
	if err != nil {
		return nil, translateError(err)
	}

	seed := time.Now().UnixNano()
	if cfg.Seed != nil {
		seed = *cfg.Seed
	} else {
		logger.InfoContext(ctx, "no seed configured, using clock seed", "seed", seed)
	}

	logger.DebugContext(ctx, "cpu capabilities",
		"popcount", cpu.Active(),
		"overridden", cpu.IsOverridden(),
	)

	funcs, err := strategy.Build(ctx, dim, params, rand.New(rand.NewSource(seed))) //nolint:gosec // reproducible hashing, not security
	if err != nil {
		return nil, translateError(err)
	}

	rc := resource.NewController(resource.Config{
		MemoryLimitBytes: o.memoryLimit,
	})

	pool := workerpool.New(o.workers)

	ix := lsh.New(func(lo *lsh.Options) {
		lo.Workers = o.workers
		lo.Resource = rc
		lo.Pool = pool
	})
	if err := ix.Build(ctx, funcs, data); err != nil {
		pool.Close()
		return nil, translateError(err)
	}

	return &Index{
		id:      id,
		cfg:     cfg,
		seed:    seed,
		params:  params,
		ix:      ix,
		pool:    pool,
		logger:  logger,
		metrics: o.metricsCollector,
	}, nil
}

// ID returns the random identifier attached to the index's log lines.
func (x *Index) ID() string { return x.id }

// Config returns the configuration the index was built with.
func (x *Index) Config() Config { return x.cfg }

// Seed returns the seed the hash functions were drawn from.
func (x *Index) Seed() int64 { return x.seed }

// Params returns the derived family parameters.
func (x *Index) Params() Params { return x.params }

// Stats returns bucket statistics.
func (x *Index) Stats() Stats { return x.ix.Stats() }

// Dimension returns the dimension of the indexed points.
func (x *Index) Dimension() int { return x.ix.Dimension() }

// Len returns the number of indexed points.
func (x *Index) Len() int { return x.ix.Len() }

// Point returns the i-th indexed point.
func (x *Index) Point(i int) (bitvec.BitVector, bool) { return x.ix.Point(i) }

// Query returns, in ascending order, the indices of the points within
// Hamming distance threshold of q that share a bucket with q.
//
// For the covering families every point within the configured radius R is
// returned when threshold >= R.
func (x *Index) Query(ctx context.Context, q bitvec.BitVector, threshold int) ([]int, error) {
	if x.closed.Load() {
		return nil, ErrClosed
	}

	start := time.Now()
	out, qs, err := x.ix.QueryWithStats(ctx, q, threshold)
	elapsed := time.Since(start)

	err = translateError(err)
	x.metrics.RecordQuery(qs.Candidates, qs.Matches, elapsed, err)
	x.logger.LogQuery(ctx, threshold, qs, elapsed, err)

	return out, err
}

// QueryBatch runs Query for every point of qs in parallel and returns the
// results in input order. The first error cancels the remaining queries.
func (x *Index) QueryBatch(ctx context.Context, qs []bitvec.BitVector, threshold int) ([][]int, error) {
	if x.closed.Load() {
		return nil, ErrClosed
	}

	start := time.Now()
	out, err := x.ix.QueryBatch(ctx, qs, threshold)
	elapsed := time.Since(start)

	err = translateError(err)
	x.metrics.RecordBatchQuery(len(qs), elapsed, err)
	x.logger.LogBatchQuery(ctx, len(qs), threshold, elapsed, err)

	return out, err
}

// Close releases the index's worker pool and memory reservation.
// Queries after Close fail with ErrClosed.
func (x *Index) Close() error {
	var err error
	x.closeOnce.Do(func() {
		x.closed.Store(true)
		x.pool.Close()
		err = x.ix.Close()
	})
	return err
}
