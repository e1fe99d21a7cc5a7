// Package sieve implements the Sieve of Eratosthenes used as the bring-up
// workload. It finds every prime in [2, N] using a negative list: all
// candidates start out marked prime, then multiples of each surviving
// number up to the square root of N are struck out.
//
// A Table owns its buffer and is meant to be reused across cycles; each
// call to Compute re-initialises it completely.
package sieve
