package commands

import (
	"github.com/bringup/bringup/pkg/driver"
)

// Process exit codes.
const (
	ExitOK = 0
	// ExitOpenFailed is returned when the output file cannot be opened.
	// Existing bring-up scripts check for 1.
	ExitOpenFailed = 1
	ExitConfig     = 2
	ExitFailed     = 3
)

// ExitCode maps a command error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch driver.ClassOf(err) {
	case driver.ErrorClassResource:
		return ExitOpenFailed
	case driver.ErrorClassConfig:
		return ExitConfig
	default:
		return ExitFailed
	}
}
