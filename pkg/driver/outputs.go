package driver

import (
	"io"

	"github.com/bringup/bringup/pkg/report"
)

// Outputs holds the sinks acquired at startup.
type Outputs struct {
	Reporter *report.Reporter
	file     *report.FileSink
}

// OpenOutputs attaches the console sink when enabled and opens the output
// file when a path is set. If the file cannot be opened the diagnostic is
// written to the console, when enabled, and a resource error is returned
// before any cycle runs.
func OpenOutputs(console io.Writer, consoleEnabled bool, filePath string) (*Outputs, error) {
	out := &Outputs{Reporter: report.NewReporter()}

	if consoleEnabled && console != nil {
		out.Reporter.Attach(report.Console(console))
	}

	if filePath == "" {
		return out, nil
	}

	file, err := report.OpenFile(filePath)
	if err != nil {
		// Only the console is attached at this point.
		_ = out.Reporter.OpenFailed(filePath)
		_ = out.Reporter.Flush()
		return nil, NewResourceError("unable to open output file", err)
	}

	out.file = file
	out.Reporter.Attach(file)
	return out, nil
}

// Close flushes every sink and closes the output file.
func (o *Outputs) Close() error {
	flushErr := o.Reporter.Flush()
	if o.file == nil {
		return flushErr
	}
	if err := o.file.Close(); err != nil {
		return err
	}
	return flushErr
}
