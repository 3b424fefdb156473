package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/hamlsh/codec"
	"github.com/hupe1980/hamlsh/family"
)

type paramsFlags struct {
	index  indexFlags
	dim    int
	n      int
	format string
}

func newParamsCmd() *cobra.Command {
	f := &paramsFlags{}

	cmd := &cobra.Command{
		Use:   "params",
		Short: "Print the derived hash family parameters without building an index",
		Long: `Derive the hash family parameters for a dataset of n points in d dimensions.

Examples:
  hamlsh params -d 400 -n 1000000 -r 100 -c 2 --family randomized
  hamlsh params -d 64 -n 1000 -r 3 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runParams(cmd, f)
		},
	}

	f.index.register(cmd)
	fs := cmd.Flags()
	fs.IntVarP(&f.dim, "dim", "d", 0, "Dimension of the points")
	fs.IntVarP(&f.n, "points", "n", 0, "Number of data points")
	fs.StringVar(&f.format, "format", "yaml", "Output format (json, go-json, yaml)")

	return cmd
}

func runParams(cmd *cobra.Command, f *paramsFlags) error {
	c, ok := codec.ByName(f.format)
	if !ok {
		return fmt.Errorf("unknown format %q (want one of %v)", f.format, codec.Names())
	}

	cfg, err := f.index.resolve(cmd)
	if err != nil {
		return err
	}

	_, params, err := family.Derive(cfg.Family, family.Inputs{
		D:     f.dim,
		R:     cfg.R,
		C:     cfg.C,
		N:     f.n,
		Delta: cfg.Delta,
	})
	if err != nil {
		return err
	}

	return c.Encode(cmd.OutOrStdout(), params)
}
