package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/hamlsh"
	"github.com/hupe1980/hamlsh/internal/resource"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	logLevel  string
	logFormat string
	ioLimit   int64

	s3Region    string
	s3Endpoint  string
	s3PathStyle bool
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "hamlsh",
		Short: "Locality-sensitive hashing for Hamming space",
		Long: `hamlsh answers r-near-neighbor queries over binary points.

Point files hold one bit string per line. Files ending in .zst or .lz4 are
compressed; sources may be local paths, s3://bucket/key or minio://bucket/key.`,
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&g.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	pf.StringVar(&g.logFormat, "log-format", "text", "Log format (text, json)")
	pf.Int64Var(&g.ioLimit, "io-limit", 0, "Maximum bytes per second read from point sources (0 = unlimited)")
	pf.StringVar(&g.s3Region, "s3-region", "", "AWS region for s3:// sources")
	pf.StringVar(&g.s3Endpoint, "s3-endpoint", "", "Custom endpoint for s3:// sources")
	pf.BoolVar(&g.s3PathStyle, "s3-path-style", false, "Use path-style addressing for s3:// sources")

	cmd.AddCommand(
		newQueryCmd(g),
		newScanCmd(g),
		newParamsCmd(),
		newGenerateCmd(g),
	)

	return cmd
}

func (g *globalFlags) logger(cmd *cobra.Command) (*hamlsh.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(g.logLevel)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q", g.logLevel)
	}

	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(g.logFormat) {
	case "text":
		return hamlsh.NewLogger(slog.NewTextHandler(cmd.ErrOrStderr(), opts)), nil
	case "json":
		return hamlsh.NewLogger(slog.NewJSONHandler(cmd.ErrOrStderr(), opts)), nil
	default:
		return nil, fmt.Errorf("invalid --log-format %q", g.logFormat)
	}
}

func (g *globalFlags) resource() *resource.Controller {
	return resource.NewController(resource.Config{IOLimitBytesPerSec: g.ioLimit})
}
