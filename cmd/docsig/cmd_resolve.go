package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dhamidi/docsig/analysis"
	"github.com/dhamidi/docsig/config"
	"github.com/dhamidi/docsig/format"
	"github.com/dhamidi/docsig/index"
	"github.com/dhamidi/docsig/metrics"
)

var errResolutionFailed = errors.New("resolution failed")

// outputFlags are shared by commands that print results.
type outputFlags struct {
	format         string
	color          string
	failFast       bool
	nativeFallback bool
}

func (f *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "output format: line, json, yaml or cbor (default: from configuration)")
	cmd.Flags().StringVar(&f.color, "color", "", "color line output: auto, always or never (default: from configuration)")
	cmd.Flags().BoolVar(&f.failFast, "fail-fast", false, "stop at the first method that cannot be resolved")
	cmd.Flags().BoolVar(&f.nativeFallback, "native-fallback", false, "fill undocumented parameter types from declarations")
}

func (f *outputFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("format") {
		cfg.Output.Format = f.format
	}
	if cmd.Flags().Changed("color") {
		cfg.Output.Color = f.color
	}
	if cmd.Flags().Changed("fail-fast") {
		cfg.FailFast = f.failFast
	}
	return cfg.Validate()
}

func newResolveCmd(a *app) *cobra.Command {
	var idx indexFlags
	var out outputFlags

	cmd := &cobra.Command{
		Use:   "resolve <path>...",
		Short: "Resolve the signatures of methods in class files, archives or sources",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := idx.apply(cmd, a.cfg); err != nil {
				return err
			}
			if err := out.apply(cmd, a.cfg); err != nil {
				return err
			}
			return runResolve(cmd.Context(), cmd.OutOrStdout(), a.cfg, out.nativeFallback, args)
		},
	}

	idx.register(cmd)
	out.register(cmd)
	return cmd
}

func runResolve(ctx context.Context, w io.Writer, cfg *config.Config, nativeFallback bool, paths []string) error {
	enc, err := format.New(cfg.Output.Format, w, cfg.Output.Color)
	if err != nil {
		return err
	}

	b, closeIndex, err := openIndex(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer closeIndex()

	results, err := newAnalyzer(cfg, b, nativeFallback, nil).Analyze(ctx, paths)
	if err != nil {
		if cfg.FailFast {
			return fmt.Errorf("%w: %w", errResolutionFailed, err)
		}
		return err
	}
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	return nil
}

func newAnalyzer(cfg *config.Config, b *index.Builder, nativeFallback bool, m *metrics.Metrics) *analysis.Analyzer {
	return &analysis.Analyzer{
		Index:          b.Index,
		Scanner:        b.Scanner,
		Policy:         cfg.Policy(),
		Concurrency:    cfg.Concurrency,
		FailFast:       cfg.FailFast,
		NativeFallback: nativeFallback,
		Metrics:        m,
	}
}
