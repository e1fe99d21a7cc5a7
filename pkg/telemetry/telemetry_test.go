package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "default is valid", mutate: func(c *Config) {}},
		{name: "missing service name", mutate: func(c *Config) { c.ServiceName = "" }, wantErr: "service name"},
		{name: "bad level", mutate: func(c *Config) { c.Logging.Level = "loud" }, wantErr: "invalid log level"},
		{name: "bad format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: "invalid log format"},
		{name: "bad exporter", mutate: func(c *Config) {
			c.Tracing.Enabled = true
			c.Tracing.Exporter = "jaeger"
		}, wantErr: "invalid trace exporter"},
		{name: "otlp without endpoint", mutate: func(c *Config) {
			c.Tracing.Enabled = true
			c.Tracing.Exporter = "otlp"
		}, wantErr: "requires an endpoint"},
		{name: "sampling out of range", mutate: func(c *Config) { c.Tracing.SamplingRate = 2 }, wantErr: "sampling rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("expected valid config, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig().Logging
	cfg.Format = "json"
	cfg.Level = "debug"

	logger := NewLoggerWithWriter(cfg, &buf).
		NewComponentLogger("driver").
		WithRunID("run-1").
		WithCycle(4)
	logger.Debug("cycle complete")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to decode log line %q: %v", buf.String(), err)
	}

	if entry["component"] != "driver" {
		t.Errorf("expected component=driver, got %v", entry["component"])
	}
	if entry["run_id"] != "run-1" {
		t.Errorf("expected run_id=run-1, got %v", entry["run_id"])
	}
	if entry["cycle"] != float64(4) {
		t.Errorf("expected cycle=4, got %v", entry["cycle"])
	}
	if entry["message"] != "cycle complete" {
		t.Errorf("unexpected message %v", entry["message"])
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig().Logging
	cfg.Format = "json"
	cfg.Level = "warn"

	logger := NewLoggerWithWriter(cfg, &buf)
	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered at warn level, got %q", buf.String())
	}

	logger.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected warn message, got %q", buf.String())
	}
}

func TestLoggerContext(t *testing.T) {
	logger := NopLogger()
	ctx := logger.WithContext(context.Background())

	if got := FromContext(ctx); got != logger {
		t.Error("expected logger from context to be the stored logger")
	}
	if FromContext(context.Background()) == nil {
		t.Error("expected a fallback logger")
	}
}

func TestMetricsRecordCycle(t *testing.T) {
	m, err := NewMetrics(DefaultConfig().Metrics)
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}

	m.RecordRunStarted(1000)
	m.RecordCycle(168, 997, time.Millisecond)
	m.RecordCycle(168, 997, time.Millisecond)
	m.RecordRunCompleted("succeeded", 3*time.Millisecond)
	m.RecordSinkError()

	if got := testutil.ToFloat64(m.cyclesCompleted); got != 2 {
		t.Errorf("expected 2 cycles, got %v", got)
	}
	if got := testutil.ToFloat64(m.primesFound); got != 168 {
		t.Errorf("expected 168 primes, got %v", got)
	}
	if got := testutil.ToFloat64(m.largestPrime); got != 997 {
		t.Errorf("expected largest prime 997, got %v", got)
	}
	if got := testutil.ToFloat64(m.upperBound); got != 1000 {
		t.Errorf("expected upper bound 1000, got %v", got)
	}
	if got := testutil.ToFloat64(m.runsCompleted.WithLabelValues("succeeded")); got != 1 {
		t.Errorf("expected 1 succeeded run, got %v", got)
	}
	if got := testutil.ToFloat64(m.sinkErrors); got != 1 {
		t.Errorf("expected 1 sink error, got %v", got)
	}
}

func TestMetricsDisabledIsNoop(t *testing.T) {
	cfg := DefaultConfig().Metrics
	cfg.Enabled = false

	m, err := NewMetrics(cfg)
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}

	m.RecordRunStarted(10)
	m.RecordCycle(4, 7, time.Millisecond)
	m.RecordRunCompleted("succeeded", time.Millisecond)
	m.RecordSinkError()

	if m.Gatherer() != nil {
		t.Error("expected no gatherer when disabled")
	}
	if err := m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")); err != nil {
		t.Errorf("expected disabled textfile write to be a no-op, got %v", err)
	}
}

func TestMetricsTextfileOnShutdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bringup.prom")
	cfg := DefaultConfig().Metrics
	cfg.TextfilePath = path

	m, err := NewMetrics(cfg)
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}
	m.RecordCycle(25, 97, time.Millisecond)

	if err := m.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read textfile: %v", err)
	}
	for _, want := range []string{"bringup_cycles_total 1", "bringup_primes_found 25", "bringup_largest_prime 97"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("textfile missing %q:\n%s", want, data)
		}
	}
}

func TestTracerDisabledCreatesSpans(t *testing.T) {
	tracer, err := NewTracer(DefaultConfig().Tracing, "bringup", "test")
	if err != nil {
		t.Fatalf("NewTracer failed: %v", err)
	}
	defer tracer.Shutdown(context.Background())

	ctx, span := tracer.StartRunSpan(context.Background(), "run-1", 1000, 1)
	_, child := tracer.StartCycleSpan(ctx, 1)
	RecordSuccess(child)
	child.End()
	span.End()

	if id := TraceID(ctx); len(id) != 32 {
		t.Errorf("TraceID = %q, want 32 hex digits", id)
	}
	if id := TraceID(context.Background()); id != "" {
		t.Errorf("TraceID without a span = %q, want empty", id)
	}
	if err := tracer.ForceFlush(context.Background()); err != nil {
		t.Errorf("ForceFlush failed: %v", err)
	}
}

func TestNewTelemetryRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Level = "chatty"

	if _, err := NewTelemetry(cfg); err == nil {
		t.Fatal("expected invalid config to be rejected")
	}
}

func TestTelemetryContext(t *testing.T) {
	tel := Nop()
	ctx := tel.WithContext(context.Background())

	if FromTelemetryContext(ctx) != tel {
		t.Error("expected telemetry from context")
	}
	if FromTelemetryContext(context.Background()) != nil {
		t.Error("expected nil telemetry from empty context")
	}
	if err := tel.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
}
