// Package output renders review results as terminal text, markdown, JSON,
// or SARIF, and builds the markdown bodies for inline review comments.
package output
