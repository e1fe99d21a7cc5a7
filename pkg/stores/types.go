package stores

import (
	"context"
	"time"
)

// RunStatus represents the status of a bring-up run
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one invocation of the cycle driver
type Run struct {
	ID         string `json:"id"`
	Version    string `json:"version"`
	UpperBound uint32 `json:"upper_bound"`
	// CycleLimit is the configured number of cycles; zero means forever.
	CycleLimit uint32    `json:"cycle_limit"`
	Timing     bool      `json:"timing"`
	Status     RunStatus `json:"status"`
	StartedAt  time.Time `json:"started_at"`

	// Set when the run completes.
	CyclesCompleted uint64     `json:"cycles_completed"`
	PrimeCount      int        `json:"prime_count"`
	LargestPrime    uint32     `json:"largest_prime"`
	ElapsedMS       int64      `json:"elapsed_ms"`
	Error           *string    `json:"error,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// RunOutcome is what a finished run reports back
type RunOutcome struct {
	Status          RunStatus
	CyclesCompleted uint64
	PrimeCount      int
	LargestPrime    uint32
	Elapsed         time.Duration
	Error           error
}

// Store defines the run history operations
type Store interface {
	CreateRun(ctx context.Context, run *Run) error
	CompleteRun(ctx context.Context, id string, outcome RunOutcome) error
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context, limit, offset int) ([]*Run, error)
	HealthCheck(ctx context.Context) error
	Close() error
}
