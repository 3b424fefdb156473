package main

import (
	"context"
	"fmt"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"

	"github.com/hupe1980/hamlsh/testutil"
)

type scanFlags struct {
	radius   int
	format   string
	out      string
	progress bool
}

func newScanCmd(g *globalFlags) *cobra.Command {
	f := &scanFlags{}

	cmd := &cobra.Command{
		Use:   "scan <data> <queries>",
		Short: "Answer r-near-neighbor queries by exhaustive linear scan",
		Long: `Compare every query against every data point. The output matches the
query command and serves as the exact baseline for its recall.

Examples:
  hamlsh scan -r 2 data.txt queries.txt > exact.txt
  hamlsh query -r 2 data.txt queries.txt | diff exact.txt -`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, g, f, args[0], args[1])
		},
	}

	fs := cmd.Flags()
	fs.IntVarP(&f.radius, "radius", "r", 0, "Near radius R")
	fs.StringVar(&f.format, "format", "text", "Output format (text, json, go-json, yaml)")
	fs.StringVarP(&f.out, "out", "o", "", "Write results to a path or s3://, minio:// URI instead of stdout")
	fs.BoolVar(&f.progress, "progress", false, "Show a progress bar on stderr")

	return cmd
}

func runScan(cmd *cobra.Command, g *globalFlags, f *scanFlags, dataURI, queryURI string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger, err := g.logger(cmd)
	if err != nil {
		return err
	}
	if f.radius < 0 {
		return fmt.Errorf("radius must be non-negative, got %d", f.radius)
	}
	if err := validateFormat(f.format); err != nil {
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
		"r", f.radius,
		"d", data[0].Len(),
		"n", len(data),
		"queries", len(queries),
	)

	var bar *pb.ProgressBar
	if f.progress {
		bar = pb.New(len(queries)).SetWriter(cmd.ErrOrStderr())
		bar.Start()
	}

	start := time.Now()
	results := make([][]int, len(queries))
	for i, q := range queries {
		if q.Len() != data[0].Len() {
			return fmt.Errorf("query %d: dimension mismatch: expected %d, got %d", i, data[0].Len(), q.Len())
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		results[i] = testutil.LinearScan(data, q, f.radius)
		if bar != nil {
			bar.Increment()
		}
	}
	if bar != nil {
		bar.Finish()
	}
	logger.InfoContext(ctx, "querying completed", "elapsed", time.Since(start))

	return g.emit(ctx, cmd.OutOrStdout(), f.format, f.out, newReport(data, results))
}
