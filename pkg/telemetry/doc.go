// Package telemetry provides observability for bring-up runs.
//
// It combines structured logging (zerolog), tracing (OpenTelemetry) and
// metrics (Prometheus) behind a single Telemetry value that the cycle
// driver receives at construction time.
//
// # Usage
//
//	cfg := telemetry.DefaultConfig()
//	cfg.ServiceVersion = "1.1"
//
//	tel, err := telemetry.NewTelemetry(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tel.Shutdown(context.Background())
//
//	ctx = tel.WithContext(ctx)
//
// # Structured Logging
//
// Logs go to stderr by default so they never interleave with the report
// written to stdout:
//
//	logger := tel.Logger.NewComponentLogger("driver").WithRunID(runID)
//	logger.WithCycle(3).Debug("Cycle complete")
//
// # Tracing
//
// A run produces one run.execute span with a sieve.cycle child per cycle.
// Exporters: none (default), stdout (pretty JSON on stderr), otlp (gRPC).
//
// # Metrics
//
// Metrics live in a private registry. They can be scraped over HTTP when
// MetricsConfig.ListenAddress is set, and dumped to a node-exporter
// textfile at shutdown when MetricsConfig.TextfilePath is set:
//
//	bringup_cycles_total
//	bringup_cycle_duration_seconds
//	bringup_primes_found
//	bringup_largest_prime
//	bringup_run_duration_seconds{status}
//	bringup_sink_errors_total
package telemetry
