// Package gitctx shells out to git for local review runs: repository
// metadata, unstaged/staged/range diffs parsed into per-file hunk ranges,
// and committing applied auto-fixes.
package gitctx
