// Package cli wires together the Cobra command tree for the glint binary.
//
// It defines the root command and subcommands (review pr, review local,
// index, cache, config, version), binds flags, loads configuration, invokes
// the review engine, and returns deterministic exit codes for CI gating.
package cli
