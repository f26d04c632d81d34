package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dhamidi/docsig/config"
	"github.com/dhamidi/docsig/index"
	"github.com/dhamidi/docsig/lsp"
	"github.com/dhamidi/docsig/metrics"
)

func newLSPCmd(a *app) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if cmd.Flags().Changed("metrics-addr") {
				cfg.Metrics.Addr = metricsAddr
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			m := metrics.New()
			serveMetrics(ctx, m, cfg.Metrics.Addr)

			opts, closeStore, err := lspOptions(cfg, m)
			if err != nil {
				return err
			}
			defer closeStore()

			server := lsp.NewServer(version, opts)
			return server.RunStdio()
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	return cmd
}

// lspOptions configures the language server from cfg. Source roots are only
// fixed when a configuration file names them; otherwise the server detects
// them from the workspace root the client sends.
func lspOptions(cfg *config.Config, m *metrics.Metrics) (lsp.Options, func(), error) {
	opts := lsp.Options{
		Policy:      cfg.Policy(),
		Metrics:     m,
		Concurrency: cfg.Concurrency,
	}
	if cfg.File != "" {
		opts.Sources = cfg.SourcePaths()
	}
	path := cfg.IndexPath()
	if path == "" {
		return opts, func() {}, nil
	}
	store, err := index.OpenStore(path)
	if err != nil {
		return lsp.Options{}, nil, err
	}
	opts.Store = store
	return opts, func() {
		if err := store.Close(); err != nil {
			log.Warningf("closing index store: %s", err)
		}
	}, nil
}
