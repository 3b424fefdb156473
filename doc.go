// Package hamlsh provides locality-sensitive hashing indexes for
// r-near-neighbor search in Hamming space.
//
// An index is built once over a fixed dataset of equal-length bit vectors and
// answers queries of the form "return every point within Hamming distance r
// of q". Points are bucketed by several composite hash functions; a query
// gathers the candidates sharing a bucket with it and verifies their exact
// distance, so results never contain false positives.
//
// # Hash families
//
// Two deterministic covering families guarantee that every point within
// distance r is found:
//
//   - A1 uses one partition and a pattern space of t·r+1 bits,
//     where t = ⌈log2(n)/(c·r)⌉.
//   - A2 splits the dimensions into r overlapping partitions.
//
// The randomized family samples k bits per function. It trades exact recall
// for fewer tables; the probability of missing a near point is bounded by
// delta.
//
// FamilyAuto picks A1 when c·r < log2(n) and A2 otherwise.
//
// # Quick Start
//
//	data, _ := pointio.Read(f)
//	idx, _ := hamlsh.Build(ctx, hamlsh.Config{R: 2, C: 2}, data)
//	defer idx.Close()
//
//	neighbors, _ := idx.Query(ctx, q, 2)
//
// # Configuration
//
// Config can be loaded from YAML:
//
//	r: 4
//	c: 2
//	family: randomized
//	delta: 0.1
//	seed: 42
//
// Operational concerns such as logging, metrics, worker counts and memory
// limits are set with functional options:
//
//	idx, _ := hamlsh.Build(ctx, cfg, data,
//	    hamlsh.WithLogger(hamlsh.NewJSONLogger(slog.LevelInfo)),
//	    hamlsh.WithMemoryLimit(1<<30),
//	)
package hamlsh
