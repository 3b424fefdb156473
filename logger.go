package hamlsh

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/hupe1980/hamlsh/family"
	"github.com/hupe1980/hamlsh/lsh"
)

// Logger wraps slog.Logger with hamlsh-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithIndex adds the index id to the logger.
func (l *Logger) WithIndex(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("index", id),
	}
}

// LogDerive logs the inputs and the derived family parameters.
func (l *Logger) LogDerive(ctx context.Context, in family.Inputs, p family.Params, err error) {
	if err != nil {
		l.ErrorContext(ctx, "parameter derivation failed",
			"d", in.D,
			"n", in.N,
			"r", in.R,
			"c", in.C,
			"delta", in.Delta,
			"error", err,
		)
		return
	}

	attrs := []any{
		"family", p.Family,
		"d", in.D,
		"n", in.N,
		"r", in.R,
		"c", in.C,
		"l", p.L,
		"functions", p.NumFunctions,
	}
	switch p.Family {
	case family.RandomizedK:
		attrs = append(attrs, "k", p.K, "delta", in.Delta)
	default:
		attrs = append(attrs, "b", p.B, "q", p.Q, "t", p.T, "r_prime", p.RPrime)
	}
	l.InfoContext(ctx, "parameters derived", attrs...)
}

// LogBuild logs an index build.
func (l *Logger) LogBuild(ctx context.Context, seed int64, s lsh.Stats, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "build failed",
			"seed", seed,
			"elapsed", elapsed,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "build completed",
		"seed", seed,
		"points", s.Points,
		"dimension", s.Dimension,
		"tables", s.Tables,
		"buckets", s.Buckets,
		"max_bucket", s.MaxBucket,
		"estimated_bytes", s.EstimatedBytes,
		"elapsed", elapsed,
	)
}

// LogQuery logs a single query.
func (l *Logger) LogQuery(ctx context.Context, threshold int, qs lsh.QueryStats, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "query failed",
			"threshold", threshold,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "query completed",
		"threshold", threshold,
		"candidates", qs.Candidates,
		"results", qs.Matches,
		"elapsed", elapsed,
	)
}

// LogBatchQuery logs a batch of queries.
func (l *Logger) LogBatchQuery(ctx context.Context, count, threshold int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "batch query failed",
			"count", count,
			"threshold", threshold,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "batch query completed",
		"count", count,
		"threshold", threshold,
		"elapsed", elapsed,
	)
}
