package stores

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

// setupTestStore creates an in-memory SQLite store for testing
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func newRun(id string, startedAt time.Time) *Run {
	return &Run{
		ID:         id,
		Version:    "1.1",
		UpperBound: 1000,
		CycleLimit: 5,
		Timing:     true,
		Status:     RunStatusRunning,
		StartedAt:  startedAt,
	}
}

// TestStoreLifecycle tests database initialization and closure
func TestStoreLifecycle(t *testing.T) {
	store, err := NewSQLiteStore(Config{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	ctx := context.Background()
	if err := store.HealthCheck(ctx); err == nil {
		t.Fatal("expected health check to fail before Init")
	}

	if err := store.Init(ctx); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	if err := store.HealthCheck(ctx); err != nil {
		t.Fatalf("health check failed: %v", err)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}
}

func TestNewSQLiteStoreRequiresPath(t *testing.T) {
	if _, err := NewSQLiteStore(Config{}); err == nil {
		t.Fatal("expected error for empty path")
	}
}

// TestStoreMigrations tests database migrations
func TestStoreMigrations(t *testing.T) {
	store := setupTestStore(t)

	var count int
	if err := store.db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM runs").Scan(&count); err != nil {
		t.Fatalf("runs table is not accessible: %v", err)
	}

	// Running migrations again is a no-op.
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

// TestRunLifecycle creates a run and completes it
func TestRunLifecycle(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	started := time.Now().Truncate(time.Second)

	run := newRun("run-001", started)
	if err := store.CreateRun(ctx, run); err != nil {
		t.Fatalf("failed to create run: %v", err)
	}

	got, err := store.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("failed to get run: %v", err)
	}
	if got.Status != RunStatusRunning {
		t.Errorf("expected running, got %s", got.Status)
	}
	if got.UpperBound != 1000 || got.CycleLimit != 5 || !got.Timing {
		t.Errorf("unexpected parameters: %+v", got)
	}
	if !got.StartedAt.Equal(started) {
		t.Errorf("expected started_at %v, got %v", started, got.StartedAt)
	}
	if got.CompletedAt != nil {
		t.Errorf("expected no completion time, got %v", got.CompletedAt)
	}

	outcome := RunOutcome{
		Status:          RunStatusSucceeded,
		CyclesCompleted: 5,
		PrimeCount:      168,
		LargestPrime:    997,
		Elapsed:         1500 * time.Millisecond,
	}
	if err := store.CompleteRun(ctx, run.ID, outcome); err != nil {
		t.Fatalf("failed to complete run: %v", err)
	}

	done, err := store.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("failed to get run: %v", err)
	}
	if done.Status != RunStatusSucceeded {
		t.Errorf("expected succeeded, got %s", done.Status)
	}
	if done.CyclesCompleted != 5 || done.PrimeCount != 168 || done.LargestPrime != 997 {
		t.Errorf("unexpected outcome: %+v", done)
	}
	if done.ElapsedMS != 1500 {
		t.Errorf("expected 1500ms, got %d", done.ElapsedMS)
	}
	if done.Error != nil {
		t.Errorf("expected no error, got %q", *done.Error)
	}
	if done.CompletedAt == nil {
		t.Error("expected completion time")
	}
}

func TestCompleteRunWithError(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.CreateRun(ctx, newRun("run-err", time.Now())); err != nil {
		t.Fatalf("failed to create run: %v", err)
	}

	outcome := RunOutcome{
		Status: RunStatusFailed,
		Error:  errors.New("write my.log: no space left on device"),
	}
	if err := store.CompleteRun(ctx, "run-err", outcome); err != nil {
		t.Fatalf("failed to complete run: %v", err)
	}

	got, err := store.GetRun(ctx, "run-err")
	if err != nil {
		t.Fatalf("failed to get run: %v", err)
	}
	if got.Status != RunStatusFailed {
		t.Errorf("expected failed, got %s", got.Status)
	}
	if got.Error == nil || *got.Error != outcome.Error.Error() {
		t.Errorf("expected stored error, got %v", got.Error)
	}
}

func TestRunNotFound(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if _, err := store.GetRun(ctx, "missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound from GetRun, got %v", err)
	}
	if err := store.CompleteRun(ctx, "missing", RunOutcome{Status: RunStatusSucceeded}); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound from CompleteRun, got %v", err)
	}
}

func TestCreateRunRejectsDegenerateBound(t *testing.T) {
	store := setupTestStore(t)

	run := newRun("run-bad", time.Now())
	run.UpperBound = 1
	if err := store.CreateRun(context.Background(), run); err == nil {
		t.Fatal("expected check constraint to reject upper bound 1")
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	for i, id := range []string{"run-a", "run-b", "run-c"} {
		if err := store.CreateRun(ctx, newRun(id, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("failed to create %s: %v", id, err)
		}
	}

	runs, err := store.ListRuns(ctx, 2, 0)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "run-c" || runs[1].ID != "run-b" {
		t.Errorf("expected run-c, run-b; got %s, %s", runs[0].ID, runs[1].ID)
	}

	rest, err := store.ListRuns(ctx, 10, 2)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(rest) != 1 || rest[0].ID != "run-a" {
		t.Errorf("expected only run-a at offset 2, got %d runs", len(rest))
	}
}

func TestFileBackedStorePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if err := store.CreateRun(ctx, newRun("run-disk", time.Now())); err != nil {
		t.Fatalf("failed to create run: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}

	reopened, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer reopened.Close()

	if _, err := reopened.GetRun(ctx, "run-disk"); err != nil {
		t.Errorf("expected run to survive reopen: %v", err)
	}
}
