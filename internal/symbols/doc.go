// Package symbols provides tree-sitter based symbol boundary detection.
//
// Two consumers share the same boundary logic: the context extractor, which
// locates the function, method, or class enclosing a changed line range and
// produces a padded snippet window for prompting; and the repository chunker,
// which splits whole files into symbol-level chunks for embedding.
//
// Supported languages: Go, JavaScript, TypeScript, TSX, and Python. Files
// with other extensions degrade to an unstructured line window — parse
// failures never propagate to callers.
package symbols
