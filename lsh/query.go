package lsh

import (
	"context"
	"fmt"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/hamlsh/bitvec"
	"github.com/hupe1980/hamlsh/internal/workerpool"
)

const (
	// gatherCheckInterval is the number of tables probed between context checks.
	gatherCheckInterval = 256
	// verifyCheckInterval is the number of candidates verified between context checks.
	verifyCheckInterval = 1024
)

// QueryStats describes the work done by a single query.
type QueryStats struct {
	// Candidates is the number of distinct points gathered from all buckets.
	Candidates int
	// Matches is the number of candidates within the threshold.
	Matches int
}

// Query returns, in ascending order, the indices of all indexed points that
// share a bucket with q in at least one table and lie within Hamming distance
// threshold of q. No returned point is farther than threshold.
func (ix *Index) Query(ctx context.Context, q bitvec.BitVector, threshold int) ([]int, error) {
	out, _, err := ix.QueryWithStats(ctx, q, threshold)
	return out, err
}

// QueryWithStats is Query that also reports candidate counts.
func (ix *Index) QueryWithStats(ctx context.Context, q bitvec.BitVector, threshold int) ([]int, QueryStats, error) {
	if !ix.built.Load() {
		return nil, QueryStats{}, ErrNotBuilt
	}
	if q.Len() != ix.dim {
		return nil, QueryStats{}, &bitvec.DimensionMismatchError{Expected: ix.dim, Actual: q.Len()}
	}
	if threshold < 0 {
		return nil, QueryStats{}, ErrInvalidThreshold
	}

	candidates, err := ix.gather(ctx, q)
	if err != nil {
		return nil, QueryStats{}, err
	}

	stats := QueryStats{Candidates: int(candidates.GetCardinality())}
	out := make([]int, 0, min(stats.Candidates, 64))

	it := candidates.Iterator()
	for n := 0; it.HasNext(); n++ {
		if n%verifyCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, QueryStats{}, err
			}
		}
		i := int(it.Next())
		if bitvec.Within(ix.data[i], q, threshold) {
			out = append(out, i)
		}
	}

	stats.Matches = len(out)
	return out, stats, nil
}

// gather collects the union of q's buckets over all tables.
func (ix *Index) gather(ctx context.Context, q bitvec.BitVector) (*roaring.Bitmap, error) {
	candidates := roaring.New()
	var key []byte

	for t, f := range ix.funcs {
		if t%gatherCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		key = f.AppendKey(key[:0], q)
		if bucket, ok := ix.tables[t][string(key)]; ok {
			candidates.AddMany(bucket)
		}
	}
	return candidates, nil
}

// QueryBatch runs Query for every point of qs in parallel and returns the
// results in input order. The first failing query aborts the batch.
func (ix *Index) QueryBatch(ctx context.Context, qs []bitvec.BitVector, threshold int) ([][]int, error) {
	if !ix.built.Load() {
		return nil, ErrNotBuilt
	}
	if threshold < 0 {
		return nil, ErrInvalidThreshold
	}
	if len(qs) == 0 {
		return [][]int{}, nil
	}

	pool := ix.opts.Pool
	if pool == nil {
		pool = workerpool.New(min(ix.opts.Workers, len(qs)))
		defer pool.Close()
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	results := make([][]int, len(qs))

	var wg sync.WaitGroup
	for i, q := range qs {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			res, err := ix.Query(ctx, q, threshold)
			if err != nil {
				cancel(fmt.Errorf("query %d: %w", i, err))
				return
			}
			results[i] = res
		}
		if err := pool.Submit(ctx, task); err != nil {
			wg.Done()
			cancel(err)
			break
		}
	}
	wg.Wait()

	if err := context.Cause(ctx); err != nil {
		return nil, err
	}
	return results, nil
}
