package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bringup/bringup/pkg/config"
	"github.com/bringup/bringup/pkg/driver"
	"github.com/bringup/bringup/pkg/report"
	"github.com/bringup/bringup/pkg/stores"
	"github.com/bringup/bringup/pkg/telemetry"
)

// runFlags are the command-line overrides for a run. A flag only takes
// effect when it was set explicitly.
type runFlags struct {
	upperBound    uint32
	cycles        uint32
	timing        bool
	console       bool
	file          string
	history       string
	metricsFile   string
	metricsListen string
	traceExporter string
	traceEndpoint string
}

func newRunCommand(info BuildInfo) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the sieve workload",
		Long: `Run the Sieve of Eratosthenes over [2, N] for the configured number of
cycles and report the primes of every cycle to the enabled outputs.

Settings are resolved once before the run, in this order: built-in
defaults, the --config file, BRINGUP_* environment variables, then flags.

A cycle count of 0 repeats forever. Such a run is only stopped by
terminating the process.`,
		Example: `  # Print the primes up to 1000 once
  bringup run --console

  # Five timed cycles up to 17500, written to a file
  bringup run -n 17500 -c 5 -t -o primes.txt

  # Run forever with no output and record the run
  bringup run -c 0 --history bringup.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, &flags)
			if err != nil {
				return err
			}
			_, err = execute(cmd.Context(), cmd, cfg, info)
			return err
		},
	}

	cmd.Flags().Uint32VarP(&flags.upperBound, "upper-bound", "n", config.DefaultUpperBound, "highest number checked for primality (at least 2)")
	cmd.Flags().Uint32VarP(&flags.cycles, "cycles", "c", config.DefaultCycles, "number of sieve cycles, 0 repeats forever")
	cmd.Flags().BoolVarP(&flags.timing, "timing", "t", false, "report the elapsed time after all cycles")
	cmd.Flags().BoolVar(&flags.console, "console", false, "write results to standard output")
	cmd.Flags().StringVarP(&flags.file, "file", "o", "", "write results to this file")
	cmd.Flags().StringVar(&flags.history, "history", "", "record the run in this SQLite database")
	cmd.Flags().StringVar(&flags.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile at exit")
	cmd.Flags().StringVar(&flags.metricsListen, "metrics-listen", "", "serve Prometheus metrics on this address during the run")
	cmd.Flags().StringVar(&flags.traceExporter, "trace-exporter", "none", "trace exporter (none, stdout, otlp)")
	cmd.Flags().StringVar(&flags.traceEndpoint, "trace-endpoint", "", "OTLP collector endpoint (host:port)")

	return cmd
}

// resolveConfig layers defaults, the config file, the environment and the
// explicitly set flags, then validates the result.
func resolveConfig(cmd *cobra.Command, flags *runFlags) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, driver.NewConfigError("failed to load config", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, driver.NewConfigError("invalid environment", err)
	}

	f := cmd.Flags()
	if f.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if f.Changed("log-format") {
		cfg.Log.Format = logFormat
	}
	if flags != nil {
		if f.Changed("upper-bound") {
			cfg.UpperBound = flags.upperBound
		}
		if f.Changed("cycles") {
			cfg.Cycles = flags.cycles
		}
		if f.Changed("timing") {
			cfg.Timing = flags.timing
		}
		if f.Changed("console") {
			cfg.Console = flags.console
		}
		if f.Changed("file") {
			cfg.File = flags.file
		}
		if f.Changed("history") {
			cfg.History.Path = flags.history
		}
		if f.Changed("metrics-file") {
			cfg.Metrics.File = flags.metricsFile
		}
		if f.Changed("metrics-listen") {
			cfg.Metrics.Listen = flags.metricsListen
		}
		if f.Changed("trace-exporter") {
			cfg.Tracing.Exporter = flags.traceExporter
		}
		if f.Changed("trace-endpoint") {
			cfg.Tracing.Endpoint = flags.traceEndpoint
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, driver.NewConfigError("invalid configuration", err)
	}
	return cfg, nil
}

// execute performs one run with every resource acquired up front and
// released on return.
func execute(ctx context.Context, cmd *cobra.Command, cfg *config.Config, info BuildInfo) (result *driver.Result, err error) {
	zerolog.SetGlobalLevel(telemetry.ParseLevel(cfg.Log.Level))

	tel, err := telemetry.NewTelemetry(telemetryConfig(cfg, info.Version))
	if err != nil {
		return nil, driver.NewConfigError("failed to initialize telemetry", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if serr := tel.Shutdown(shutdownCtx); serr != nil {
			tel.Logger.WithError(serr).Warn("Telemetry shutdown failed")
		}
	}()
	if err := tel.StartMetricsServer(); err != nil {
		return nil, driver.NewConfigError("failed to start metrics server", err)
	}

	outputs, err := driver.OpenOutputs(cmd.OutOrStdout(), cfg.Console, cfg.File)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := outputs.Close(); cerr != nil && err == nil {
			err = driver.NewOutputError("failed to close outputs", cerr).WithCode(driver.ErrCodeFlushFailed)
		}
	}()

	var opts []driver.Option
	if cfg.History.Path != "" {
		store, err := stores.Open(ctx, cfg.History.Path)
		if err != nil {
			return nil, driver.NewHistoryError("failed to open history", err)
		}
		defer store.Close()
		opts = append(opts, driver.WithRecorder(store))
	}

	d, err := driver.New(driver.Options{
		UpperBound: cfg.UpperBound,
		Cycles:     cfg.Cycles,
		Timing:     cfg.Timing,
		Version:    info.Version,
		BuildDate:  bannerDate(info.BuildDate, time.Now()),
	}, outputs.Reporter, tel, opts...)
	if err != nil {
		return nil, err
	}

	tel.Logger.WithRunID(d.RunID()).Zerolog().Debug().
		Str("config", configPath).
		Bool("forever", cfg.Forever()).
		Str("file", cfg.File).
		Str("history", cfg.History.Path).
		Msg("Resolved configuration")

	result, err = d.Run(tel.WithContext(ctx))
	if err != nil {
		return result, err
	}

	if jsonOutput && !cfg.Console {
		return result, printJSON(cmd.OutOrStdout(), result)
	}
	return result, nil
}

// telemetryConfig maps the run configuration onto telemetry settings.
func telemetryConfig(cfg *config.Config, version string) *telemetry.Config {
	tc := telemetry.DefaultConfig()
	if version != "" {
		tc.ServiceVersion = version
	}
	tc.Logging.Level = cfg.Log.Level
	tc.Logging.Format = cfg.Log.Format
	tc.Metrics.TextfilePath = cfg.Metrics.File
	tc.Metrics.ListenAddress = cfg.Metrics.Listen
	tc.Tracing.Exporter = cfg.Tracing.Exporter
	tc.Tracing.Endpoint = cfg.Tracing.Endpoint
	tc.Tracing.Enabled = cfg.Tracing.Exporter != "none"
	return tc
}

// Banner dates accepted from ldflags, most specific first.
var buildDateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	report.BuildDateLayout,
}

// bannerDate renders the build date in the banner's "Jan _2 2006" form.
// An unknown build date falls back to now.
func bannerDate(buildDate string, now time.Time) string {
	if buildDate == "" || buildDate == "unknown" {
		return now.Format(report.BuildDateLayout)
	}
	for _, layout := range buildDateLayouts {
		if t, err := time.Parse(layout, buildDate); err == nil {
			return t.Format(report.BuildDateLayout)
		}
	}
	return buildDate
}

// errUsage marks argument errors that cobra reports as plain errors.
var errUsage = errors.New("usage")

func usageError(format string, args ...any) error {
	return driver.NewConfigError(fmt.Sprintf(format, args...), errUsage)
}
