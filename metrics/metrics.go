// Package metrics exposes resolution and indexing counters to Prometheus.
// Every method accepts a nil receiver, so callers that do not collect
// metrics pass a nil *Metrics.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("docsig.metrics")

// Resolution outcomes.
const (
	OutcomeResolved     = "resolved"
	OutcomeNativeOnly   = "native_only"
	OutcomeUnresolvable = "unresolvable"
	OutcomeError        = "error"
)

// File scan sources.
const (
	SourceScan  = "scan"
	SourceCache = "cache"
)

type Metrics struct {
	registry *prometheus.Registry

	resolutions          *prometheus.CounterVec
	documentedParameters prometheus.Counter
	filesScanned         *prometheus.CounterVec
	analysisDuration     prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docsig",
			Name:      "resolutions_total",
			Help:      "Method signature resolutions by outcome",
		}, []string{"outcome"}),
		documentedParameters: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "docsig",
			Name:      "documented_parameters_total",
			Help:      "Parameters whose type came from documentation",
		}),
		filesScanned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docsig",
			Name:      "files_scanned_total",
			Help:      "Java source files indexed, by whether they were parsed or loaded from the store",
		}, []string{"source"}),
		analysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "docsig",
			Name:      "analysis_duration_seconds",
			Help:      "Wall time of one analysis run",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		}),
	}
	m.registry.MustRegister(m.resolutions, m.documentedParameters, m.filesScanned, m.analysisDuration)
	return m
}

func (m *Metrics) Resolution(outcome string) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) DocumentedParameters(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.documentedParameters.Add(float64(n))
}

func (m *Metrics) FileScanned(source string) {
	if m == nil {
		return
	}
	m.filesScanned.WithLabelValues(source).Inc()
}

func (m *Metrics) AnalysisFinished(d time.Duration) {
	if m == nil {
		return
	}
	m.analysisDuration.Observe(d.Seconds())
}

// Registry returns the registry holding every docsig collector, or nil.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	if m == nil || addr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("serving metrics on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	}
}
