// Package family derives locality-sensitive hash family parameters for
// Hamming space and builds the composite hash functions of an index.
//
// Three constructions are available:
//
//   - A1 and A2 are covering constructions. Every dimension is assigned to
//     one or more partitions, and inside a partition each nonzero pattern v
//     selects the dimensions whose random masks have odd parity with v. For
//     any set of at most r differing positions some function ignores all of
//     them, so a point within distance r always shares a bucket with the
//     query in at least one table.
//   - RandomizedK samples k dimensions per function. A point within distance r
//     is found with probability at least 1-δ.
//
// Auto picks A1 when c·r < log2(n) and A2 otherwise.
//
//	s, _ := family.Select(family.Auto, in)
//	params, _ := s.Derive(in)
//	funcs, _ := s.Build(ctx, in.D, params, rand.New(rand.NewSource(seed)))
package family
