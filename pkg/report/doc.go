// Package report routes the bring-up tool's textual output to zero or more
// sinks. A sink is anything that can write a string: the console, a log
// file, or an in-memory buffer in tests. The Reporter fans every write out
// to all attached sinks, so the sieve and the cycle driver never need to
// know how many outputs exist.
//
// The line formats are fixed byte for byte so existing expected-output
// comparisons keep working.
package report
