package config

import (
	"fmt"
	"os"
	"strconv"
)

// Environment variables recognised by ApplyEnv.
const (
	EnvUpperBound    = "BRINGUP_UPPER_BOUND"
	EnvCycles        = "BRINGUP_CYCLES"
	EnvTiming        = "BRINGUP_TIMING"
	EnvConsole       = "BRINGUP_CONSOLE"
	EnvFile          = "BRINGUP_FILE"
	EnvHistory       = "BRINGUP_HISTORY"
	EnvMetricsFile   = "BRINGUP_METRICS_FILE"
	EnvMetricsListen = "BRINGUP_METRICS_LISTEN"
	EnvTraceExporter = "BRINGUP_TRACE_EXPORTER"
	EnvTraceEndpoint = "BRINGUP_TRACE_ENDPOINT"
	EnvLogLevel      = "LOG_LEVEL"
)

// LookupFunc looks up an environment variable.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides c with values from the process environment.
func (c *Config) ApplyEnv() error {
	return c.ApplyEnvFrom(os.LookupEnv)
}

// ApplyEnvFrom overrides c with values from lookup.
func (c *Config) ApplyEnvFrom(lookup LookupFunc) error {
	if v, ok := lookup(EnvUpperBound); ok {
		n, err := parseUint32(EnvUpperBound, v)
		if err != nil {
			return err
		}
		c.UpperBound = n
	}

	if v, ok := lookup(EnvCycles); ok {
		n, err := parseUint32(EnvCycles, v)
		if err != nil {
			return err
		}
		c.Cycles = n
	}

	if v, ok := lookup(EnvTiming); ok {
		b, err := parseBool(EnvTiming, v)
		if err != nil {
			return err
		}
		c.Timing = b
	}

	if v, ok := lookup(EnvConsole); ok {
		b, err := parseBool(EnvConsole, v)
		if err != nil {
			return err
		}
		c.Console = b
	}

	if v, ok := lookup(EnvFile); ok {
		c.File = v
	}
	if v, ok := lookup(EnvHistory); ok {
		c.History.Path = v
	}
	if v, ok := lookup(EnvMetricsFile); ok {
		c.Metrics.File = v
	}
	if v, ok := lookup(EnvMetricsListen); ok {
		c.Metrics.Listen = v
	}
	if v, ok := lookup(EnvTraceExporter); ok {
		c.Tracing.Exporter = v
	}
	if v, ok := lookup(EnvTraceEndpoint); ok {
		c.Tracing.Endpoint = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}

	return nil
}

func parseUint32(key, v string) (uint32, error) {
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return uint32(n), nil
}

func parseBool(key, v string) (bool, error) {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, nil
}
