package ags

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/teranos/qntx-ags/errors"
)

const metricsNamespace = "qntx_ags"

// Ingestion outcomes recorded in the files_total counter.
const (
	OutcomeIngested = "ingested"
	OutcomeDryRun   = "dry_run"
	OutcomeFailed   = "failed"
)

// Metrics counts what a Processor ingests. A nil *Metrics records nothing.
type Metrics struct {
	files    *prometheus.CounterVec
	entities *prometheus.CounterVec
	issues   *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewMetrics registers the ingestion collectors with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "files_total",
			Help:      "AGS files processed, by outcome.",
		}, []string{"outcome"}),
		entities: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "entities_total",
			Help:      "Entities mapped from ingested files, by kind.",
		}, []string{"kind"}),
		issues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "issues_total",
			Help:      "Ingestion issues reported, by code and severity.",
		}, []string{"code", "severity"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "ingest_duration_seconds",
			Help:      "Time to tokenize, map and store one AGS file.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
	}
	for _, c := range []prometheus.Collector{m.files, m.entities, m.issues, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "register ingestion metrics")
		}
	}
	return m, nil
}

func (m *Metrics) observe(result *ProcessingResult, err error) {
	if m == nil {
		return
	}
	if err != nil || result == nil {
		m.files.WithLabelValues(OutcomeFailed).Inc()
		return
	}

	outcome := OutcomeIngested
	if result.DryRun {
		outcome = OutcomeDryRun
	}
	m.files.WithLabelValues(outcome).Inc()
	m.entities.WithLabelValues("borehole").Add(float64(result.Stats.Boreholes))
	m.entities.WithLabelValues("stratum").Add(float64(result.Stats.Strata))
	m.entities.WithLabelValues("contaminant_sample").Add(float64(result.Stats.ContaminantSamples))
	for _, issue := range result.Issues {
		m.issues.WithLabelValues(issue.Code, string(issue.Severity)).Inc()
	}
	m.duration.Observe(result.EndTime.Sub(result.StartTime).Seconds())
}

// ServeMetrics listens on addr and exposes reg at /metrics until ctx is cancelled. Listen
// errors are returned at once; the channel yields the server's exit error, nil after a clean
// shutdown.
func ServeMetrics(ctx context.Context, addr string, reg prometheus.Gatherer, log *zap.SugaredLogger) (<-chan error, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "listen on %s", addr)
	}
	done := make(chan error, 1)
	go func() { done <- serveMetrics(ctx, ln, reg, log) }()
	return done, nil
}

func serveMetrics(ctx context.Context, ln net.Listener, reg prometheus.Gatherer, log *zap.SugaredLogger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if log != nil {
		log.Infow("serving metrics", "addr", ln.Addr().String())
	}
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "metrics server")
	}
	return nil
}
