package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dhamidi/docsig/config"
	"github.com/dhamidi/docsig/index"
	"github.com/dhamidi/docsig/metrics"
	"github.com/dhamidi/docsig/project"
)

// indexFlags are shared by every command that builds an index.
type indexFlags struct {
	sources     []string
	indexDir    string
	concurrency int
}

func (f *indexFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.sources, "sources", nil, "Java source roots (default: from configuration, else detected)")
	cmd.Flags().StringVar(&f.indexDir, "index", "", "index store directory (default: from configuration, else in memory)")
	cmd.Flags().IntVar(&f.concurrency, "concurrency", 0, "parallel workers (default: from configuration)")
}

// apply copies flags the user set over the configuration.
func (f *indexFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("sources") {
		cfg.Sources = cfg.Sources[:0]
		for _, src := range f.sources {
			abs, err := filepath.Abs(src)
			if err != nil {
				return err
			}
			cfg.Sources = append(cfg.Sources, abs)
		}
	}
	if cmd.Flags().Changed("index") {
		abs, err := filepath.Abs(f.indexDir)
		if err != nil {
			return err
		}
		cfg.Index.Path = abs
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency = f.concurrency
	}
	return cfg.Validate()
}

// sourceRoots returns the configured roots, or the detected project's roots
// when the configuration names none beyond its own directory.
func sourceRoots(cfg *config.Config) ([]string, error) {
	if cfg.File != "" || len(cfg.Sources) != 1 || cfg.Sources[0] != "." {
		return cfg.SourcePaths(), nil
	}
	proj, err := project.Detect(cfg.Dir)
	if err != nil {
		return nil, err
	}
	log.Debugf("detected %s layout", proj.Layout)
	return proj.SourceRoots(), nil
}

// openIndex builds the documentation index for cfg. The returned close
// function releases the store.
func openIndex(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*index.Builder, func(), error) {
	store, err := index.OpenStore(cfg.IndexPath())
	if err != nil {
		return nil, nil, err
	}
	closeStore := func() {
		if err := store.Close(); err != nil {
			log.Warningf("closing index store: %s", err)
		}
	}

	roots, err := sourceRoots(cfg)
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	b := index.NewBuilder(index.New(cfg.Policy()))
	b.Store = store
	b.Metrics = m
	b.Concurrency = cfg.Concurrency
	if err := b.Build(ctx, roots...); err != nil {
		closeStore()
		return nil, nil, fmt.Errorf("building index: %w", err)
	}
	return b, closeStore, nil
}

// serveMetrics exposes m on addr until ctx is done. An empty addr disables it.
func serveMetrics(ctx context.Context, m *metrics.Metrics, addr string) {
	if addr == "" {
		return
	}
	go func() {
		if err := m.Serve(ctx, addr); err != nil {
			fmt.Fprintf(os.Stderr, "metrics: %s\n", err)
		}
	}()
}
