package sieve

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// isPrimeTrial is an independent trial-division check.
func isPrimeTrial(k uint32) bool {
	if k < 2 {
		return false
	}
	for d := uint32(2); uint64(d)*uint64(d) <= uint64(k); d++ {
		if k%d == 0 {
			return false
		}
	}
	return true
}

func TestComputeKnownRanges(t *testing.T) {
	tests := []struct {
		name       string
		upperBound uint32
		want       []uint32
	}{
		{name: "two", upperBound: 2, want: []uint32{2}},
		{name: "three", upperBound: 3, want: []uint32{2, 3}},
		{name: "prime bound is included", upperBound: 7, want: []uint32{2, 3, 5, 7}},
		{name: "ten", upperBound: 10, want: []uint32{2, 3, 5, 7}},
		{name: "twenty", upperBound: 20, want: []uint32{2, 3, 5, 7, 11, 13, 17, 19}},
		{name: "thirty", upperBound: 30, want: []uint32{2, 3, 5, 7, 11, 13, 17, 19, 23, 29}},
		{name: "one is empty", upperBound: 1, want: []uint32{}},
		{name: "zero is empty", upperBound: 0, want: []uint32{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.upperBound).Compute()
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Compute(%d) mismatch (-want +got):\n%s", tt.upperBound, diff)
			}
		})
	}
}

func TestComputeMatchesTrialDivision(t *testing.T) {
	for _, n := range []uint32{2, 4, 97, 100, 1000, 2015, 17500} {
		var want []uint32
		for k := uint32(2); k <= n; k++ {
			if isPrimeTrial(k) {
				want = append(want, k)
			}
		}

		got := Primes(n)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Primes(%d) mismatch (-want +got):\n%s", n, diff)
		}
	}
}

func TestComputeDefaultBoundCount(t *testing.T) {
	primes := Primes(1000)
	if len(primes) != 168 {
		t.Errorf("expected 168 primes up to 1000, got %d", len(primes))
	}
	if last := primes[len(primes)-1]; last != 997 {
		t.Errorf("expected largest prime 997, got %d", last)
	}
}

func TestComputeIsIdempotent(t *testing.T) {
	table := New(500)

	first := table.Compute()
	for cycle := 1; cycle <= 5; cycle++ {
		got := table.Compute()
		if diff := cmp.Diff(first, got); diff != "" {
			t.Fatalf("cycle %d differs from first (-first +got):\n%s", cycle, diff)
		}
	}
}

func TestComputeResetsCorruptedTable(t *testing.T) {
	table := New(50)
	want := table.Compute()

	// Simulate a dirty buffer between cycles.
	for i := range table.isPrime {
		table.isPrime[i] = i%2 == 0
	}

	if diff := cmp.Diff(want, table.Compute()); diff != "" {
		t.Errorf("state leaked across cycles (-want +got):\n%s", diff)
	}
}

func TestMonotonicContainment(t *testing.T) {
	small := Primes(100)
	large := Primes(1000)

	var prefix []uint32
	for _, p := range large {
		if p > 100 {
			break
		}
		prefix = append(prefix, p)
	}

	if diff := cmp.Diff(small, prefix); diff != "" {
		t.Errorf("primes up to 100 are not a prefix of primes up to 1000 (-small +prefix):\n%s", diff)
	}
}

func TestNoOverreach(t *testing.T) {
	for n := uint32(2); n <= 200; n++ {
		primes := Primes(n)
		last := primes[len(primes)-1]
		if last > n {
			t.Fatalf("Primes(%d) reported %d beyond the bound", n, last)
		}
		if isPrimeTrial(n) && last != n {
			t.Fatalf("Primes(%d) excluded the prime bound itself", n)
		}
	}
}

func TestIsPrime(t *testing.T) {
	table := New(30)
	table.Compute()

	for k := uint32(0); k <= 32; k++ {
		if got, want := table.IsPrime(k), isPrimeTrial(k) && k <= 30; got != want {
			t.Errorf("IsPrime(%d) = %v, want %v", k, got, want)
		}
	}
}

type recordingReporter struct {
	headers []uint32
	primes  []uint32
	failAt  uint32
}

var errSinkFull = errors.New("sink full")

func (r *recordingReporter) RangeHeader(upperBound uint32) error {
	r.headers = append(r.headers, upperBound)
	return nil
}

func (r *recordingReporter) Prime(p uint32) error {
	if r.failAt != 0 && p == r.failAt {
		return errSinkFull
	}
	r.primes = append(r.primes, p)
	return nil
}

func TestComputeToReportsInline(t *testing.T) {
	rec := &recordingReporter{}

	count, err := New(20).ComputeTo(rec)
	if err != nil {
		t.Fatalf("ComputeTo failed: %v", err)
	}
	if count != 8 {
		t.Errorf("expected 8 primes reported, got %d", count)
	}
	if diff := cmp.Diff([]uint32{20}, rec.headers); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Primes(20), rec.primes); diff != "" {
		t.Errorf("reported primes mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeToStopsOnReporterError(t *testing.T) {
	rec := &recordingReporter{failAt: 11}

	count, err := New(30).ComputeTo(rec)
	if !errors.Is(err, errSinkFull) {
		t.Fatalf("expected errSinkFull, got %v", err)
	}
	if count != 4 {
		t.Errorf("expected 4 primes before failure, got %d", count)
	}
}

func TestComputeToDegenerateBound(t *testing.T) {
	rec := &recordingReporter{}

	count, err := New(1).ComputeTo(rec)
	if err != nil {
		t.Fatalf("ComputeTo failed: %v", err)
	}
	if count != 0 || len(rec.primes) != 0 {
		t.Errorf("expected no primes for bound 1, got %v", rec.primes)
	}
}
