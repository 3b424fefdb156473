// Package lsh implements a multi-table locality-sensitive hashing index for
// r-near-neighbor queries in Hamming space.
//
// An Index holds exactly one hash table per hash function. Build places every
// dataset point into the bucket named by its key in each table. Query gathers
// the query's bucket from every table into a deduplicated candidate set and
// returns the candidates whose exact Hamming distance is within the threshold,
// in ascending index order.
//
// # Lifecycle
//
// An Index starts Unbuilt and becomes Built after one successful Build. It is
// immutable afterwards, so any number of goroutines may query it concurrently.
// A failed or cancelled Build leaves it Unbuilt.
//
//	ix := lsh.New(func(o *lsh.Options) {
//	    o.Workers = 8
//	})
//	if err := ix.Build(ctx, funcs, data); err != nil {
//	    return err
//	}
//	neighbors, err := ix.Query(ctx, q, r)
//
// The index keeps a reference to the dataset slice; callers must not modify
// the points while the index is in use.
package lsh
