package sieve

// Reporter receives formatted output from ComputeTo.
type Reporter interface {
	RangeHeader(upperBound uint32) error
	Prime(p uint32) error
}

// Table is the primality table for the candidate range [2, upperBound].
type Table struct {
	upperBound uint32
	isPrime    []bool
}

// New allocates a table sized for upperBound.
func New(upperBound uint32) *Table {
	return &Table{
		upperBound: upperBound,
		isPrime:    make([]bool, uint64(upperBound)+1),
	}
}

// UpperBound returns the highest candidate checked.
func (t *Table) UpperBound() uint32 {
	return t.upperBound
}

// sweep initialises the table and strikes out composites.
func (t *Table) sweep() {
	n := uint64(t.upperBound)

	for i := uint64(2); i <= n; i++ {
		t.isPrime[i] = true
	}

	// i*i is computed in 64 bits so it cannot wrap for any uint32 bound.
	for i := uint64(2); i*i <= n; i++ {
		if !t.isPrime[i] {
			continue
		}
		for j := i + i; j <= n; j += i {
			t.isPrime[j] = false
		}
	}
}

// Compute runs one full sieve and returns the primes in ascending order.
func (t *Table) Compute() []uint32 {
	if t.upperBound < 2 {
		return []uint32{}
	}
	t.sweep()

	primes := make([]uint32, 0, estimateCount(t.upperBound))
	for k := uint64(2); k <= uint64(t.upperBound); k++ {
		if t.isPrime[k] {
			primes = append(primes, uint32(k))
		}
	}
	return primes
}

// ComputeTo runs one full sieve and reports the range header followed by
// each prime as it is found. It returns the number of primes reported.
func (t *Table) ComputeTo(r Reporter) (int, error) {
	if err := r.RangeHeader(t.upperBound); err != nil {
		return 0, err
	}
	if t.upperBound < 2 {
		return 0, nil
	}
	t.sweep()

	count := 0
	for k := uint64(2); k <= uint64(t.upperBound); k++ {
		if !t.isPrime[k] {
			continue
		}
		if err := r.Prime(uint32(k)); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// IsPrime reports whether k was left marked by the last sweep.
func (t *Table) IsPrime(k uint32) bool {
	if k < 2 || k > t.upperBound {
		return false
	}
	return t.isPrime[k]
}

// Primes returns the primes in [2, upperBound].
func Primes(upperBound uint32) []uint32 {
	return New(upperBound).Compute()
}

// estimateCount is a capacity hint for the result slice.
func estimateCount(n uint32) int {
	switch {
	case n < 100:
		return 25
	case n < 100000:
		return int(n/6) + 1
	default:
		return int(n / 10)
	}
}
