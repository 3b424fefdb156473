package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"

	"github.com/hupe1980/hamlsh"
	"github.com/hupe1980/hamlsh/bitvec"
)

// queryChunk is the number of queries submitted per batch when progress is
// reported.
const queryChunk = 256

type queryFlags struct {
	index       indexFlags
	threshold   int
	format      string
	out         string
	workers     int
	memoryLimit int64
	progress    bool
}

func newQueryCmd(g *globalFlags) *cobra.Command {
	f := &queryFlags{}

	cmd := &cobra.Command{
		Use:   "query <data> <queries>",
		Short: "Build an index over data and answer r-near-neighbor queries",
		Long: `Build an LSH index over the data points and report, for every query point,
the data points within Hamming distance R that share a bucket with it.

Examples:
  hamlsh query -r 2 -c 2 data.txt queries.txt
  hamlsh query -r 4 --family randomized --delta 0.05 data.txt.zst queries.txt
  hamlsh query --config index.yaml --format json --out s3://bucket/out.json s3://bucket/data.txt queries.txt`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, g, f, args[0], args[1])
		},
	}

	f.index.register(cmd)
	fs := cmd.Flags()
	fs.IntVarP(&f.threshold, "threshold", "t", -1, "Query threshold (default: R)")
	fs.StringVar(&f.format, "format", "text", "Output format (text, json, go-json, yaml)")
	fs.StringVarP(&f.out, "out", "o", "", "Write results to a path or s3://, minio:// URI instead of stdout")
	fs.IntVarP(&f.workers, "workers", "w", 0, "Worker goroutines (default: GOMAXPROCS)")
	fs.Int64Var(&f.memoryLimit, "memory-limit", 0, "Memory limit for hash tables in bytes (0 = unlimited)")
	fs.BoolVar(&f.progress, "progress", false, "Show a progress bar on stderr")

	return cmd
}

func runQuery(cmd *cobra.Command, g *globalFlags, f *queryFlags, dataURI, queryURI string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger, err := g.logger(cmd)
	if err != nil {
		return err
	}
	if err := validateFormat(f.format); err != nil {
		return err
	}
	cfg, err := f.index.resolve(cmd)
	if err != nil {
		return err
	}

	rc := g.resource()
	data, err := g.loadPoints(ctx, dataURI, rc)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("%s: no data points", dataURI)
	}
	queries, err := g.loadPoints(ctx, queryURI, rc)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "input",
		"r", cfg.R,
		"c", cfg.C,
		"d", data[0].Len(),
		"n", len(data),
		"queries", len(queries),
	)

	idx, err := hamlsh.Build(ctx, cfg, data,
		hamlsh.WithLogger(logger),
		hamlsh.WithWorkers(f.workers),
		hamlsh.WithMemoryLimit(f.memoryLimit),
	)
	if err != nil {
		return err
	}
	defer idx.Close()

	threshold := f.threshold
	if threshold < 0 {
		threshold = cfg.R
	}

	start := time.Now()
	results, err := runQueries(ctx, idx, queries, threshold, f.progress, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "querying completed", "elapsed", time.Since(start))

	rep := newReport(data, results)
	if f.format != "text" {
		params := idx.Params()
		stats := idx.Stats()
		seed := idx.Seed()
		rep.Params, rep.Stats, rep.Seed = &params, &stats, &seed
	}

	return g.emit(ctx, cmd.OutOrStdout(), f.format, f.out, rep)
}

// runQueries answers all queries, in chunks when a progress bar is shown.
func runQueries(ctx context.Context, idx *hamlsh.Index, queries []bitvec.BitVector, threshold int, progress bool, stderr io.Writer) ([][]int, error) {
	if !progress {
		return idx.QueryBatch(ctx, queries, threshold)
	}

	bar := pb.New(len(queries)).SetWriter(stderr)
	bar.Start()
	defer bar.Finish()

	results := make([][]int, 0, len(queries))
	for start := 0; start < len(queries); start += queryChunk {
		end := min(start+queryChunk, len(queries))

		chunk, err := idx.QueryBatch(ctx, queries[start:end], threshold)
		if err != nil {
			return nil, fmt.Errorf("queries %d-%d: %w", start, end-1, err)
		}
		results = append(results, chunk...)
		bar.Add(end - start)
	}
	return results, nil
}
