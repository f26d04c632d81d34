package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dhamidi/docsig/config"
	"github.com/dhamidi/docsig/format"
	"github.com/dhamidi/docsig/index"
	"github.com/dhamidi/docsig/metrics"
)

// settle is how long watch waits after a change before re-resolving, so an
// editor's burst of writes triggers one run.
const settle = 200 * time.Millisecond

func newWatchCmd(a *app) *cobra.Command {
	var idx indexFlags
	var out outputFlags
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "watch <path>...",
		Short: "Resolve, then re-resolve whenever the sources change",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := idx.apply(cmd, a.cfg); err != nil {
				return err
			}
			if err := out.apply(cmd, a.cfg); err != nil {
				return err
			}
			if cmd.Flags().Changed("metrics-addr") {
				a.cfg.Metrics.Addr = metricsAddr
			}
			return runWatch(cmd.Context(), cmd.OutOrStdout(), a.cfg, out.nativeFallback, args)
		},
	}

	idx.register(cmd)
	out.register(cmd)
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	return cmd
}

func runWatch(ctx context.Context, w io.Writer, cfg *config.Config, nativeFallback bool, paths []string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	enc, err := format.New(cfg.Output.Format, w, cfg.Output.Color)
	if err != nil {
		return err
	}

	m := metrics.New()
	serveMetrics(ctx, m, cfg.Metrics.Addr)

	b, closeIndex, err := openIndex(ctx, cfg, m)
	if err != nil {
		return err
	}
	defer closeIndex()

	analyzer := newAnalyzer(cfg, b, nativeFallback, m)
	var runMu sync.Mutex
	run := func() {
		runMu.Lock()
		defer runMu.Unlock()
		results, err := analyzer.Analyze(ctx, paths)
		if err != nil {
			log.Errorf("resolve: %s", err)
			return
		}
		if err := enc.Encode(results); err != nil {
			log.Errorf("writing results: %s", err)
		}
	}
	run()

	roots, err := sourceRoots(cfg)
	if err != nil {
		return err
	}
	watcher, err := index.NewWatcher(b, roots...)
	if err != nil {
		return err
	}

	var mu sync.Mutex
	var timer *time.Timer
	watcher.OnChange = func(path string, removed bool) {
		log.Infof("changed: %s", path)
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(settle, run)
	}

	watcher.Start(ctx)
	<-ctx.Done()

	mu.Lock()
	if timer != nil {
		timer.Stop()
	}
	mu.Unlock()
	return watcher.Close()
}
