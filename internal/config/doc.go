// Package config builds the immutable effective configuration for a run.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Review labels (glint:skip, glint:rules-only, glint:no-rag, ...)
//  3. Environment variables (GLINT_PROVIDER, GLINT_MODEL, ...)
//  4. Project file (.glint.yml in the repository root)
//  5. Global file ($XDG_CONFIG_HOME/glint/config.json)
//  6. Built-in defaults
//
// The merged Config is constructed once at the start of a run and passed by
// value to every component; nothing below this package reads ambient
// environment state.
package config
