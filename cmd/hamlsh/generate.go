package main

import (
	"context"
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/hupe1980/hamlsh/bitvec"
	"github.com/hupe1980/hamlsh/testutil"
)

type generateFlags struct {
	dim      int
	numData  int
	numQuery int
	dataOut  string
	queryOut string
	seed     int64
}

func newGenerateCmd(g *globalFlags) *cobra.Command {
	f := &generateFlags{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate disjoint random data and query point files",
		Long: `Write uniformly random points of dimension d. No point appears twice,
neither within a file nor across the data and query files.

Examples:
  hamlsh generate -d 10 --data 1000 --data-out data.txt --queries 10 --query-out queries.txt
  hamlsh generate -d 256 --data 100000 --data-out data.txt.zst --queries 100 --query-out queries.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, g, f)
		},
	}

	fs := cmd.Flags()
	fs.IntVarP(&f.dim, "dim", "d", 0, "Dimension of the points")
	fs.IntVar(&f.numData, "data", 0, "Number of data points")
	fs.IntVar(&f.numQuery, "queries", 0, "Number of query points")
	fs.StringVar(&f.dataOut, "data-out", "", "Destination of the data points")
	fs.StringVar(&f.queryOut, "query-out", "", "Destination of the query points")
	fs.Int64Var(&f.seed, "seed", 1, "Random seed")
	_ = cmd.MarkFlagRequired("data-out")
	_ = cmd.MarkFlagRequired("query-out")

	return cmd
}

func runGenerate(cmd *cobra.Command, g *globalFlags, f *generateFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	data, queries, err := generateDisjoint(testutil.NewRNG(f.seed), f.dim, f.numData, f.numQuery)
	if err != nil {
		return err
	}

	if err := g.savePoints(ctx, f.dataOut, data); err != nil {
		return err
	}
	return g.savePoints(ctx, f.queryOut, queries)
}

// generateDisjoint draws numData+numQuery distinct points.
func generateDisjoint(rng *testutil.RNG, dim, numData, numQuery int) ([]bitvec.BitVector, []bitvec.BitVector, error) {
	if dim <= 0 {
		return nil, nil, fmt.Errorf("dimension must be positive, got %d", dim)
	}
	if numData < 0 || numQuery < 0 {
		return nil, nil, fmt.Errorf("point counts must be non-negative")
	}

	total := numData + numQuery
	if dim < 62 && uint64(total) > uint64(1)<<dim {
		return nil, nil, fmt.Errorf("cannot draw %d distinct points of dimension %d", total, dim)
	}
	if total > math.MaxInt32 {
		return nil, nil, fmt.Errorf("too many points: %d", total)
	}

	seen := make(map[string]struct{}, total)
	points := make([]bitvec.BitVector, 0, total)
	for len(points) < total {
		p := rng.RandomPoint(dim)
		key := p.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		points = append(points, p)
	}

	return points[:numData], points[numData:], nil
}
