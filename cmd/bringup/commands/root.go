package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bringup/bringup/pkg/driver"
	"github.com/bringup/bringup/pkg/telemetry"
)

// BuildInfo is stamped into the binary via ldflags.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

var (
	// Global flags
	configPath string
	logLevel   string
	logFormat  string
	jsonOutput bool
)

// Execute runs the root command
func Execute(ctx context.Context, info BuildInfo) error {
	rootCmd := newRootCommand(info)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(info BuildInfo) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bringup",
		Short: "bringup - toolchain and board bring-up workload",
		Long: `bringup exercises a compiler, linker and CPU with a small deterministic
workload: the Sieve of Eratosthenes over [2, N], repeated for a number
of cycles.

With no output enabled the computation still runs, which is useful for
pure toolchain or performance checks. Enable --console and/or --file to
get output that can be compared against the known list of primes.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if cmd.Flags().Changed("log-level") {
				zerolog.SetGlobalLevel(telemetry.ParseLevel(logLevel))
			}
		},
	}

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return driver.NewConfigError("invalid flags", err)
	})

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (.yaml, .yml or .cue)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error, disabled)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	rootCmd.AddCommand(newRunCommand(info))
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newHistoryCommand())
	rootCmd.AddCommand(newPrimesCommand())

	return rootCmd
}
