package config

// Default values for the run configuration.
const (
	DefaultUpperBound uint32 = 1000
	DefaultCycles     uint32 = 1
)

// Config is the resolved configuration of a bring-up run.
type Config struct {
	// UpperBound is the highest candidate checked for primality.
	UpperBound uint32 `json:"upper_bound" yaml:"upper_bound" validate:"gte=2"`

	// Cycles is the number of sieve repetitions. Zero means forever.
	Cycles uint32 `json:"cycles" yaml:"cycles"`

	// Timing reports the elapsed wall-clock time after all cycles.
	Timing bool `json:"timing" yaml:"timing"`

	// Console writes results to standard output.
	Console bool `json:"console" yaml:"console"`

	// File, when set, additionally writes results to the named file. It is
	// checked by opening it, so an unusable path is an open failure.
	File string `json:"file" yaml:"file"`

	Log     LogConfig     `json:"log" yaml:"log"`
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`
	Tracing TracingConfig `json:"tracing" yaml:"tracing"`
	History HistoryConfig `json:"history" yaml:"history"`
}

// LogConfig configures diagnostic logging.
type LogConfig struct {
	Level  string `json:"level" yaml:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `json:"format" yaml:"format" validate:"oneof=console json"`
}

// MetricsConfig configures metrics export.
type MetricsConfig struct {
	// File receives a Prometheus textfile dump at shutdown.
	File string `json:"file" yaml:"file" validate:"omitempty,filepath"`

	// Listen serves /metrics on this address for the life of the run.
	Listen string `json:"listen" yaml:"listen" validate:"omitempty,hostname_port"`
}

// TracingConfig configures span export.
type TracingConfig struct {
	Exporter string `json:"exporter" yaml:"exporter" validate:"oneof=none stdout otlp"`
	Endpoint string `json:"endpoint" yaml:"endpoint" validate:"required_if=Exporter otlp"`
}

// HistoryConfig configures the run history database.
type HistoryConfig struct {
	// Path of the SQLite database. Empty disables history.
	Path string `json:"path" yaml:"path" validate:"omitempty,filepath"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		UpperBound: DefaultUpperBound,
		Cycles:     DefaultCycles,
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Tracing: TracingConfig{
			Exporter: "none",
		},
	}
}

// Forever reports whether the run has no cycle limit.
func (c *Config) Forever() bool {
	return c.Cycles == 0
}
