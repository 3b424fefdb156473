package lsh

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/hamlsh/bitvec"
	"github.com/hupe1980/hamlsh/family"
	"github.com/hupe1980/hamlsh/internal/resource"
	"github.com/hupe1980/hamlsh/internal/workerpool"
	"golang.org/x/sync/errgroup"
)

// Options configures an Index.
type Options struct {
	// Workers bounds the goroutines used by Build and by QueryBatch when no
	// Pool is given. 0 means runtime.GOMAXPROCS(0).
	Workers int

	// Resource, when set, provides the memory budget for the tables and a
	// build slot. A nil controller imposes no limits.
	Resource *resource.Controller

	// Pool, when set, runs QueryBatch tasks. The index does not close it.
	Pool *workerpool.Pool
}

// DefaultOptions contains the default options for an Index.
var DefaultOptions = Options{}

// table maps a bucket key to the dataset indices hashed into it, in
// insertion order.
type table map[string][]uint32

// Index is a multi-table LSH index.
type Index struct {
	opts Options

	buildMu sync.Mutex
	built   atomic.Bool

	// Immutable once built is set.
	funcs    []family.HashFunction
	tables   []table
	data     []bitvec.BitVector
	dim      int
	stats    Stats
	reserved *resource.Reservation
}

// New creates an unbuilt index.
func New(optFns ...func(o *Options)) *Index {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}

	return &Index{opts: opts}
}

// Build hashes every point of data into one table per function.
//
// data is kept by reference; indices returned by queries are positions in it.
// On any error, including cancellation, the index stays unbuilt.
func (ix *Index) Build(ctx context.Context, funcs []family.HashFunction, data []bitvec.BitVector) error {
	ix.buildMu.Lock()
	defer ix.buildMu.Unlock()

	if ix.built.Load() {
		return ErrAlreadyBuilt
	}
	if len(data) == 0 {
		return ErrEmptyDataset
	}
	if uint64(len(data)) > math.MaxUint32 {
		return ErrDatasetTooLarge
	}
	if len(funcs) == 0 {
		return ErrNoHashFunctions
	}

	dim := data[0].Len()
	if err := bitvec.CheckDimension(data, dim); err != nil {
		return err
	}
	for i, f := range funcs {
		if err := f.Validate(dim); err != nil {
			return fmt.Errorf("hash function %d: %w", i, err)
		}
	}

	rc := ix.opts.Resource
	done, err := rc.StartBuild(ctx)
	if err != nil {
		return err
	}
	defer done()

	estimate := estimateMemory(funcs, len(data))
	reservation, err := rc.Reserve(estimate)
	if err != nil {
		return fmt.Errorf("reserve %d bytes for %d tables: %w", estimate, len(funcs), err)
	}

	tables := make([]table, len(funcs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.opts.Workers)

	for t := range funcs {
		g.Go(func() error {
			tab, err := buildTable(gctx, funcs[t], data)
			if err != nil {
				return err
			}
			tables[t] = tab
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		reservation.Release()
		return err
	}

	ix.funcs = funcs
	ix.tables = tables
	ix.data = data
	ix.dim = dim
	ix.reserved = reservation
	ix.stats = computeStats(tables, len(data), dim, estimate)
	ix.built.Store(true)

	return nil
}

// buildCheckInterval is the number of points hashed between context checks.
const buildCheckInterval = 4096

func buildTable(ctx context.Context, f family.HashFunction, data []bitvec.BitVector) (table, error) {
	tab := make(table)
	key := make([]byte, 0, f.KeyBytes())

	for i, p := range data {
		if i%buildCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		key = f.AppendKey(key[:0], p)
		tab[string(key)] = append(tab[string(key)], uint32(i))
	}
	return tab, nil
}

// estimateMemory approximates the bytes held by the tables: one uint32 entry
// per point and table plus, in the worst case, one bucket per point.
func estimateMemory(funcs []family.HashFunction, n int) int64 {
	const bucketOverhead = 48 // map slot, string and slice headers

	var total int64
	for _, f := range funcs {
		total += int64(n) * int64(4+f.KeyBytes()+bucketOverhead)
	}
	return total
}

// Close releases the memory reserved from the resource controller.
// The index remains queryable.
func (ix *Index) Close() error {
	ix.buildMu.Lock()
	defer ix.buildMu.Unlock()

	ix.reserved.Release()
	return nil
}

// Built reports whether Build has completed successfully.
func (ix *Index) Built() bool {
	return ix.built.Load()
}

// Dimension returns the dimension of the indexed points, or 0 before Build.
func (ix *Index) Dimension() int {
	if !ix.built.Load() {
		return 0
	}
	return ix.dim
}

// Len returns the number of indexed points, or 0 before Build.
func (ix *Index) Len() int {
	if !ix.built.Load() {
		return 0
	}
	return len(ix.data)
}

// Tables returns the number of hash tables, or 0 before Build.
func (ix *Index) Tables() int {
	if !ix.built.Load() {
		return 0
	}
	return len(ix.tables)
}

// Point returns the dataset point at index i.
func (ix *Index) Point(i int) (bitvec.BitVector, bool) {
	if !ix.built.Load() || i < 0 || i >= len(ix.data) {
		return bitvec.BitVector{}, false
	}
	return ix.data[i], true
}
