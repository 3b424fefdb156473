package lsh

import "errors"

var (
	// ErrNotBuilt is returned by queries on an index that has not been built.
	ErrNotBuilt = errors.New("lsh: index not built")

	// ErrAlreadyBuilt is returned by a second Build.
	ErrAlreadyBuilt = errors.New("lsh: index already built")

	// ErrInvalidThreshold is returned for negative query thresholds.
	ErrInvalidThreshold = errors.New("lsh: threshold must be non-negative")

	// ErrEmptyDataset is returned when Build receives no points.
	ErrEmptyDataset = errors.New("lsh: empty dataset")

	// ErrNoHashFunctions is returned when Build receives no hash functions.
	ErrNoHashFunctions = errors.New("lsh: no hash functions")

	// ErrDatasetTooLarge is returned when point indices do not fit in uint32.
	ErrDatasetTooLarge = errors.New("lsh: dataset exceeds 2^32-1 points")
)
