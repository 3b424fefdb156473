package hamlsh

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    queryHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordQuery(candidates, results int, duration time.Duration, err error) {
//	    p.queryHistogram.Observe(duration.Seconds())
//	}
type MetricsCollector interface {
	// RecordBuild is called after each index build.
	// points is the dataset size, tables the number of hash tables.
	RecordBuild(points, tables int, duration time.Duration, err error)

	// RecordQuery is called after each query with the number of distinct
	// candidates gathered and the number of verified results.
	RecordQuery(candidates, results int, duration time.Duration, err error)

	// RecordBatchQuery is called after each batch of queries.
	RecordBatchQuery(count int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBuild(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordQuery(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordBatchQuery(int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	BuildCount      atomic.Int64
	BuildErrors     atomic.Int64
	BuildTotalNanos atomic.Int64
	QueryCount      atomic.Int64
	QueryErrors     atomic.Int64
	QueryTotalNanos atomic.Int64
	QueryCandidates atomic.Int64
	QueryResults    atomic.Int64
	BatchCount      atomic.Int64
	BatchQueries    atomic.Int64
	BatchErrors     atomic.Int64
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(points, tables int, duration time.Duration, err error) {
	b.BuildCount.Add(1)
	b.BuildTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.BuildErrors.Add(1)
	}
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(candidates, results int, duration time.Duration, err error) {
	b.QueryCount.Add(1)
	b.QueryTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.QueryErrors.Add(1)
		return
	}
	b.QueryCandidates.Add(int64(candidates))
	b.QueryResults.Add(int64(results))
}

// RecordBatchQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatchQuery(count int, duration time.Duration, err error) {
	b.BatchCount.Add(1)
	b.BatchQueries.Add(int64(count))
	if err != nil {
		b.BatchErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		BuildCount:         b.BuildCount.Load(),
		BuildErrors:        b.BuildErrors.Load(),
		QueryCount:         b.QueryCount.Load(),
		QueryErrors:        b.QueryErrors.Load(),
		QueryAvgNanos:      avg(b.QueryTotalNanos.Load(), b.QueryCount.Load()),
		QueryAvgCandidates: avg(b.QueryCandidates.Load(), b.QueryCount.Load()-b.QueryErrors.Load()),
		QueryTotalResults:  b.QueryResults.Load(),
		BatchCount:         b.BatchCount.Load(),
		BatchQueries:       b.BatchQueries.Load(),
		BatchErrors:        b.BatchErrors.Load(),
	}
}

func avg(total, count int64) int64 {
	if count <= 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	BuildCount         int64
	BuildErrors        int64
	QueryCount         int64
	QueryErrors        int64
	QueryAvgNanos      int64
	QueryAvgCandidates int64
	QueryTotalResults  int64
	BatchCount         int64
	BatchQueries       int64
	BatchErrors        int64
}
