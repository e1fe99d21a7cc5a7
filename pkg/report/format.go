package report

import "time"

// Output formats. Existing log scrapers depend on these exact bytes.
const (
	bannerFormat      = "bringup %s  (%s)\n"
	cycleFormat       = "\nCycle: %d"
	rangeHeaderFormat = "\nThe primes from 2 to %d are:\n"
	primeFormat       = "%d\n"
	elapsedFormat     = "\nTest time: %dms\n\n"
	openFailedFormat  = "Unable to open output file: %s"
)

// BuildDateLayout is the layout of the date shown in the banner.
const BuildDateLayout = "Jan _2 2006"

// Banner writes the version line shown once at startup.
func (r *Reporter) Banner(version, buildDate string) error {
	return r.Printf(bannerFormat, version, buildDate)
}

// Cycle writes the per-cycle header.
func (r *Reporter) Cycle(n uint64) error {
	return r.Printf(cycleFormat, n)
}

// RangeHeader writes the header naming the swept range.
func (r *Reporter) RangeHeader(upperBound uint32) error {
	return r.Printf(rangeHeaderFormat, upperBound)
}

// Prime writes one discovered prime.
func (r *Reporter) Prime(p uint32) error {
	return r.Printf(primeFormat, p)
}

// Elapsed writes the trailing run time in whole milliseconds.
func (r *Reporter) Elapsed(d time.Duration) error {
	return r.Printf(elapsedFormat, d.Milliseconds())
}

// OpenFailed writes the diagnostic for an output file that could not be opened.
func (r *Reporter) OpenFailed(path string) error {
	return r.Printf(openFailedFormat, path)
}
