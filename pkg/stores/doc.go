// Package stores persists bring-up run history in SQLite. Each run gets a
// row when it starts and is completed with its outcome (cycles finished,
// primes found, elapsed time) when it ends, so results from different
// toolchains or boards can be compared later.
package stores
