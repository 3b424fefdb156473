// Package testutil provides testing utilities for hamlsh.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random binary points, computing exact
// r-near neighbors with a linear scan, and verifying query recall.
//
// # Random Point Generation
//
//	rng := testutil.NewRNG(seed)
//	data := rng.RandomPoints(1000, 64)
//	near := rng.PlantNear(data[0], 3) // exactly 3 bits flipped
//
// # Exact Search (Ground Truth)
//
//	want := testutil.LinearScan(data, query, r)
//
// # Recall Verification
//
//	recall := testutil.ComputeRecall(want, got)
//	floor := testutil.RecallLowerBound(0.9, trials, 0.999)
package testutil
