package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/hamlsh"
	"github.com/hupe1980/hamlsh/family"
)

// defaultDelta is used by the randomized family when no failure
// probability is configured (success probability 0.9).
const defaultDelta = 0.1

// indexFlags hold the index parameters of a command.
type indexFlags struct {
	config string
	r      int
	c      float64
	family string
	delta  float64
	seed   int64
}

func (f *indexFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.config, "config", "", "YAML file with r, c, family, delta and seed")
	fs.IntVarP(&f.r, "radius", "r", 0, "Near radius R")
	fs.Float64VarP(&f.c, "approx", "c", 2, "Approximation factor C")
	fs.StringVarP(&f.family, "family", "f", "auto", "Hash family (auto, a1, a2, randomized)")
	fs.Float64Var(&f.delta, "delta", 0, fmt.Sprintf("Failure probability of the randomized family (default %g)", defaultDelta))
	fs.Int64Var(&f.seed, "seed", 0, "Seed for hash function construction (default: clock)")
}

// resolve merges the config file with the flags set on the command line.
// Flags take precedence.
func (f *indexFlags) resolve(cmd *cobra.Command) (hamlsh.Config, error) {
	var cfg hamlsh.Config
	if f.config != "" {
		loaded, err := hamlsh.LoadConfig(f.config)
		if err != nil {
			return hamlsh.Config{}, err
		}
		cfg = loaded
	}

	fs := cmd.Flags()
	if f.config == "" || fs.Changed("radius") {
		cfg.R = f.r
	}
	if f.config == "" || fs.Changed("approx") {
		cfg.C = f.c
	}
	if f.config == "" || fs.Changed("family") {
		kind, err := family.ParseKind(f.family)
		if err != nil {
			return hamlsh.Config{}, err
		}
		cfg.Family = kind
	}
	if fs.Changed("delta") {
		cfg.Delta = f.delta
	}
	if fs.Changed("seed") {
		cfg = cfg.WithSeed(f.seed)
	}

	if cfg.Family == hamlsh.FamilyRandomized && cfg.Delta == 0 {
		cfg.Delta = defaultDelta
	}

	return cfg, cfg.Validate()
}
