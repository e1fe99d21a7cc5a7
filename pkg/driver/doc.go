// Package driver runs the sieve for a configured number of cycles and
// reports the results.
//
// A run writes a banner, then for each cycle a cycle header followed by
// the range header and one line per prime, and finally, when timing is
// enabled, the elapsed wall-clock time of the whole run. A cycle limit of
// zero repeats forever; nothing inside the loop stops an unbounded run, so
// it ends only when the process is terminated.
//
// The sieve table is allocated once per Driver and reused by every cycle.
package driver
