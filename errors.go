package hamlsh

import (
	"errors"
	"fmt"

	"github.com/hupe1980/hamlsh/bitvec"
	"github.com/hupe1980/hamlsh/family"
	"github.com/hupe1980/hamlsh/internal/resource"
	"github.com/hupe1980/hamlsh/internal/workerpool"
	"github.com/hupe1980/hamlsh/lsh"
)

var (
	// ErrInvalidConfig is returned when the configuration or a derived
	// parameter is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNotBuilt is returned when querying an index that was never built.
	ErrNotBuilt = errors.New("index not built")

	// ErrInvalidThreshold is returned for negative query thresholds.
	ErrInvalidThreshold = errors.New("threshold must be non-negative")

	// ErrEmptyDataset is returned when building over no points.
	ErrEmptyDataset = errors.New("empty dataset")

	// ErrMemoryLimit is returned when the index tables would exceed the
	// configured memory limit.
	ErrMemoryLimit = errors.New("memory limit exceeded")

	// ErrClosed is returned by operations on a closed index.
	ErrClosed = errors.New("index closed")
)

// ErrDimensionMismatch indicates that a point does not have the dimension of
// the index.
//
// The underlying error, if any, is available through errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var dm *bitvec.DimensionMismatchError
	if errors.As(err, &dm) {
		return &ErrDimensionMismatch{Expected: dm.Expected, Actual: dm.Actual, cause: err}
	}

	switch {
	case errors.Is(err, family.ErrConfiguration):
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	case errors.Is(err, lsh.ErrNotBuilt):
		return fmt.Errorf("%w: %w", ErrNotBuilt, err)
	case errors.Is(err, lsh.ErrInvalidThreshold):
		return fmt.Errorf("%w: %w", ErrInvalidThreshold, err)
	case errors.Is(err, lsh.ErrEmptyDataset):
		return fmt.Errorf("%w: %w", ErrEmptyDataset, err)
	case errors.Is(err, resource.ErrMemoryLimitExceeded):
		return fmt.Errorf("%w: %w", ErrMemoryLimit, err)
	case errors.Is(err, workerpool.ErrClosed):
		return fmt.Errorf("%w: %w", ErrClosed, err)
	}

	return err
}
