package telemetry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Metrics provides Prometheus metrics for bring-up runs.
type Metrics struct {
	config MetricsConfig

	// Run metrics
	runsStarted   prometheus.Counter
	runsCompleted *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
	upperBound    prometheus.Gauge

	// Cycle metrics
	cyclesCompleted prometheus.Counter
	cycleDuration   prometheus.Histogram
	primesFound     prometheus.Gauge
	largestPrime    prometheus.Gauge

	// Output metrics
	sinkErrors prometheus.Counter

	registry *prometheus.Registry
	server   *http.Server
}

// NewMetrics creates a new metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		// No-op instance; every recorder checks for nil collectors.
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	buckets := cfg.DefaultHistogramBuckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		runsStarted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_started_total",
				Help:      "Total number of runs started",
			},
		),
		runsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_completed_total",
				Help:      "Total number of runs completed",
			},
			[]string{"status"},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Wall-clock duration of a whole run in seconds",
				Buckets:   buckets,
			},
			[]string{"status"},
		),
		upperBound: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "upper_bound",
				Help:      "Highest candidate checked for primality",
			},
		),

		cyclesCompleted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cycles_total",
				Help:      "Total number of completed sieve cycles",
			},
		),
		cycleDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "cycle_duration_seconds",
				Help:      "Duration of one sieve cycle in seconds",
				Buckets:   buckets,
			},
		),
		primesFound: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "primes_found",
				Help:      "Number of primes found by the last cycle",
			},
		),
		largestPrime: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "largest_prime",
				Help:      "Largest prime found by the last cycle",
			},
		),

		sinkErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sink_errors_total",
				Help:      "Total number of failed writes to output sinks",
			},
		),
	}

	registry.MustRegister(
		m.runsStarted,
		m.runsCompleted,
		m.runDuration,
		m.upperBound,
		m.cyclesCompleted,
		m.cycleDuration,
		m.primesFound,
		m.largestPrime,
		m.sinkErrors,
	)

	return m, nil
}

// RecordRunStarted counts a started run and records its upper bound.
func (m *Metrics) RecordRunStarted(upperBound uint32) {
	if m.runsStarted == nil {
		return
	}
	m.runsStarted.Inc()
	m.upperBound.Set(float64(upperBound))
}

// RecordRunCompleted records a finished run with its status and duration.
func (m *Metrics) RecordRunCompleted(status string, duration time.Duration) {
	if m.runsCompleted == nil {
		return
	}
	m.runsCompleted.WithLabelValues(status).Inc()
	m.runDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordCycle records one completed sieve cycle.
func (m *Metrics) RecordCycle(primes int, largest uint32, duration time.Duration) {
	if m.cyclesCompleted == nil {
		return
	}
	m.cyclesCompleted.Inc()
	m.cycleDuration.Observe(duration.Seconds())
	m.primesFound.Set(float64(primes))
	m.largestPrime.Set(float64(largest))
}

// RecordSinkError counts a failed sink write.
func (m *Metrics) RecordSinkError() {
	if m.sinkErrors == nil {
		return
	}
	m.sinkErrors.Inc()
}

// Gatherer returns the registry backing these metrics, or nil when disabled.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	if m.registry == nil {
		return nil
	}
	return m.registry
}

// Timer provides a convenient way to time operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// StartMetricsServer serves metrics over HTTP when a listen address is set.
func (m *Metrics) StartMetricsServer() error {
	if !m.config.Enabled || m.config.ListenAddress == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle(m.config.Path, m.Handler())

	m.server = &http.Server{
		Addr:              m.config.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func(server *http.Server) {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			// Metrics are best effort; the run carries on without them.
			log.Error().Err(err).Str("addr", server.Addr).Msg("Metrics server failed")
		}
	}(m.server)

	return nil
}

// WriteTextfile dumps every metric to path in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if m.registry == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}

// Shutdown writes the textfile dump, if configured, and stops the HTTP server.
func (m *Metrics) Shutdown(ctx context.Context) error {
	if err := m.WriteTextfile(m.config.TextfilePath); err != nil {
		return err
	}
	if m.server == nil {
		return nil
	}
	return m.server.Shutdown(ctx)
}
