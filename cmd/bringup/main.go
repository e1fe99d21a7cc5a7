package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/bringup/bringup/cmd/bringup/commands"
)

// Version information (set via ldflags during build)
var (
	Version   = "1.1"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func main() {
	setupLogging()

	// No signal handling: an unbounded run is stopped by terminating the
	// process.
	err := commands.Execute(context.Background(), commands.BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
	})
	if err != nil {
		log.Error().Err(err).Msg("Command execution failed")
	}
	os.Exit(commands.ExitCode(err))
}

// setupLogging configures zerolog for structured logging on stderr.
func setupLogging() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
