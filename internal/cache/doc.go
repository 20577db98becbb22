// Package cache provides content-addressed memoization of model outputs.
//
// Entries are keyed by a SHA-256 hash of the model identifier and the ordered
// chat messages, and stored as one flat JSON mapping in the project-local
// .glint directory. Each entry keeps the response text, token counts, and a
// creation timestamp; entries past the configured TTL are skipped on read and
// dropped on the next save.
//
// The cache file is a disposable artifact. Concurrent runs racing on it can
// at worst lose a write, never corrupt an existing entry, because each save
// rewrites the whole file via a temp-file rename.
package cache
