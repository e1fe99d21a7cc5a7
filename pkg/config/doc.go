// Package config resolves the bring-up run configuration.
//
// A Config is built once before any cycle runs, in this order:
//
//  1. built-in defaults (upper bound 1000, one cycle, no output)
//  2. an optional config file, YAML (.yaml, .yml) or CUE (.cue)
//  3. BRINGUP_* environment variables
//  4. command-line flags, applied by the caller
//
// CUE files are unified with the built-in #Bringup schema, which closes
// the set of recognised options and supplies defaults. The resolved
// Config is checked with struct-tag validation before use.
package config
