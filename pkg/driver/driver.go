package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bringup/bringup/pkg/report"
	"github.com/bringup/bringup/pkg/sieve"
	"github.com/bringup/bringup/pkg/stores"
	"github.com/bringup/bringup/pkg/telemetry"
)

// Options are the run parameters resolved from configuration.
type Options struct {
	// UpperBound is the highest candidate checked; must be at least 2.
	UpperBound uint32

	// Cycles is the number of repetitions; zero means forever.
	Cycles uint32

	// Timing reports the elapsed time of the whole run.
	Timing bool

	// Version and BuildDate appear in the banner.
	Version   string
	BuildDate string
}

// RunRecorder stores run history.
type RunRecorder interface {
	CreateRun(ctx context.Context, run *stores.Run) error
	CompleteRun(ctx context.Context, id string, outcome stores.RunOutcome) error
}

// Result summarises a finished run.
type Result struct {
	RunID           string
	CyclesCompleted uint64
	PrimeCount      int
	LargestPrime    uint32
	Elapsed         time.Duration
}

// Option configures a Driver.
type Option func(*Driver)

// WithRecorder records the run in a history store.
func WithRecorder(r RunRecorder) Option {
	return func(d *Driver) {
		d.recorder = r
	}
}

// WithRunID fixes the run ID instead of generating one.
func WithRunID(id string) Option {
	return func(d *Driver) {
		d.runID = id
	}
}

// Driver repeats the sieve and reports each cycle.
type Driver struct {
	opts     Options
	table    *sieve.Table
	reporter *report.Reporter
	tel      *telemetry.Telemetry
	recorder RunRecorder
	runID    string
}

// New validates opts and allocates the sieve table.
func New(opts Options, reporter *report.Reporter, tel *telemetry.Telemetry, options ...Option) (*Driver, error) {
	if opts.UpperBound < 2 {
		return nil, NewConfigError("invalid upper bound",
			fmt.Errorf("upper bound must be at least 2, got %d", opts.UpperBound))
	}
	if reporter == nil {
		reporter = report.NewReporter()
	}
	if tel == nil {
		tel = telemetry.Nop()
	}

	d := &Driver{
		opts:     opts,
		table:    sieve.New(opts.UpperBound),
		reporter: reporter,
		tel:      tel,
	}
	for _, o := range options {
		o(d)
	}
	if d.runID == "" {
		d.runID = uuid.New().String()
	}
	return d, nil
}

// RunID returns the ID of the run.
func (d *Driver) RunID() string {
	return d.runID
}

// Run executes every cycle. With a cycle limit of zero it does not return
// unless a sink or the history store fails. ctx carries telemetry only and
// is never checked for cancellation.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	timer := telemetry.NewTimer()
	logger := d.tel.Logger.NewComponentLogger("driver").WithRunID(d.runID)

	ctx, span := d.tel.Tracer.StartRunSpan(ctx, d.runID, d.opts.UpperBound, d.opts.Cycles)
	defer span.End()

	d.tel.Metrics.RecordRunStarted(d.opts.UpperBound)

	logger.Zerolog().Info().
		Uint32("upper_bound", d.opts.UpperBound).
		Uint32("cycles", d.opts.Cycles).
		Bool("forever", d.opts.Cycles == 0).
		Bool("timing", d.opts.Timing).
		Int("sinks", d.reporter.Len()).
		Str("trace_id", telemetry.TraceID(ctx)).
		Msg("Starting run")

	if d.recorder != nil {
		err := d.recorder.CreateRun(ctx, &stores.Run{
			ID:         d.runID,
			Version:    d.opts.Version,
			UpperBound: d.opts.UpperBound,
			CycleLimit: d.opts.Cycles,
			Timing:     d.opts.Timing,
			Status:     stores.RunStatusRunning,
			StartedAt:  time.Now(),
		})
		if err != nil {
			runErr := NewHistoryError("failed to record run start", err)
			telemetry.RecordError(span, runErr)
			d.tel.Metrics.RecordRunCompleted(string(stores.RunStatusFailed), timer.Duration())
			return nil, runErr
		}
	}

	result := &Result{RunID: d.runID}
	err := d.run(ctx, result, timer)
	result.Elapsed = timer.Duration()

	status := stores.RunStatusSucceeded
	if err != nil {
		status = stores.RunStatusFailed
		telemetry.RecordError(span, err)
		logger.WithError(err).Error("Run failed")
	} else {
		telemetry.RecordSuccess(span)
		logger.Zerolog().Info().
			Uint64("cycles_completed", result.CyclesCompleted).
			Int("primes", result.PrimeCount).
			Uint32("largest_prime", result.LargestPrime).
			Dur("elapsed", result.Elapsed).
			Msg("Run complete")
	}
	span.SetAttributes(telemetry.AttrPrimeCount.Int(result.PrimeCount))
	d.tel.Metrics.RecordRunCompleted(string(status), result.Elapsed)

	if d.recorder != nil {
		herr := d.recorder.CompleteRun(ctx, d.runID, stores.RunOutcome{
			Status:          status,
			CyclesCompleted: result.CyclesCompleted,
			PrimeCount:      result.PrimeCount,
			LargestPrime:    result.LargestPrime,
			Elapsed:         result.Elapsed,
			Error:           err,
		})
		if herr != nil && err == nil {
			err = NewHistoryError("failed to record run outcome", herr)
		}
	}

	return result, err
}

func (d *Driver) run(ctx context.Context, result *Result, timer *telemetry.Timer) error {
	if err := d.reporter.Banner(d.opts.Version, d.opts.BuildDate); err != nil {
		return d.outputError("failed to write banner", err, 0)
	}

	forever := d.opts.Cycles == 0
	for cycle := uint64(1); forever || cycle <= uint64(d.opts.Cycles); cycle++ {
		if err := d.runCycle(ctx, cycle, result); err != nil {
			return err
		}
	}

	if d.opts.Timing {
		if err := d.reporter.Elapsed(timer.Duration()); err != nil {
			return d.outputError("failed to write elapsed time", err, 0)
		}
	}

	if err := d.reporter.Flush(); err != nil {
		return d.outputError("failed to flush output", err, 0).WithCode(ErrCodeFlushFailed)
	}
	return nil
}

func (d *Driver) runCycle(ctx context.Context, cycle uint64, result *Result) error {
	_, span := d.tel.Tracer.StartCycleSpan(ctx, cycle)
	defer span.End()

	cycleTimer := telemetry.NewTimer()

	if err := d.reporter.Cycle(cycle); err != nil {
		runErr := d.outputError("failed to write cycle header", err, cycle)
		telemetry.RecordError(span, runErr)
		return runErr
	}

	t := &tally{Reporter: d.reporter}
	count, err := d.table.ComputeTo(t)
	if err != nil {
		runErr := d.outputError("failed to write primes", err, cycle)
		telemetry.RecordError(span, runErr)
		return runErr
	}

	// Unbounded runs would otherwise hold output in the buffer forever.
	if err := d.reporter.Flush(); err != nil {
		runErr := d.outputError("failed to flush output", err, cycle).WithCode(ErrCodeFlushFailed)
		telemetry.RecordError(span, runErr)
		return runErr
	}

	elapsed := cycleTimer.Duration()
	d.tel.Metrics.RecordCycle(count, t.largest, elapsed)
	span.SetAttributes(telemetry.AttrPrimeCount.Int(count))
	telemetry.RecordSuccess(span)

	result.CyclesCompleted = cycle
	result.PrimeCount = count
	result.LargestPrime = t.largest

	d.tel.Logger.WithRunID(d.runID).WithCycle(cycle).Zerolog().Debug().
		Int("primes", count).
		Dur("elapsed", elapsed).
		Msg("Cycle complete")

	return nil
}

func (d *Driver) outputError(message string, err error, cycle uint64) *RunError {
	d.tel.Metrics.RecordSinkError()
	return NewOutputError(message, err).WithCycle(cycle)
}

// tally forwards sieve output to the reporter and remembers the largest prime.
type tally struct {
	*report.Reporter
	largest uint32
}

func (t *tally) Prime(p uint32) error {
	t.largest = p
	return t.Reporter.Prime(p)
}
