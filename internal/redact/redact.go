// Package redact strips secrets from code snippets before they reach a
// model prompt or an indexed embedding. Detection is heuristic: the cost of
// a false positive is one mangled snippet, the cost of a miss is a leaked
// credential, so the patterns lean aggressive.
package redact

import (
	"path/filepath"
	"regexp"

	"github.com/bmatcuk/doublestar/v4"
)

const placeholder = "[REDACTED]"

var secretPatterns = []*regexp.Regexp{
	// Assignments of keys, secrets, tokens, and passwords
	regexp.MustCompile(`(?i)(api[_-]?key|apikey|api[_-]?secret)\s*[:=]\s*["']?([A-Za-z0-9/+=_-]{20,})["']?`),
	regexp.MustCompile(`(?i)(secret|token|password|passwd|credential)\s*[:=]\s*["']([^"']{8,})["']`),
	regexp.MustCompile(`(?i)(key|secret|token)\s*[:=]\s*["']?[0-9a-f]{32,}["']?`),
	// Well-known token shapes
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	regexp.MustCompile(`(?i)(aws[_-]?secret[_-]?access[_-]?key)\s*[:=]\s*["']?([A-Za-z0-9/+=]{40})["']?`),
	regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`),
	regexp.MustCompile(`github_pat_[A-Za-z0-9_]{22,}`),
	regexp.MustCompile(`xox[bporas]-[A-Za-z0-9-]{10,}`),
	regexp.MustCompile(`sk-ant-[A-Za-z0-9_-]{20,}`),
	regexp.MustCompile(`sk-[A-Za-z0-9]{20,}`),
	// Bearer headers and JWTs
	regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._-]{20,}`),
	regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`),
	// Private key blocks
	regexp.MustCompile(`-----BEGIN\s+(RSA\s+|EC\s+|OPENSSH\s+)?PRIVATE KEY-----`),
}

// Secrets replaces detected secrets in text with [REDACTED].
func Secrets(text string) string {
	for _, pat := range secretPatterns {
		text = pat.ReplaceAllString(text, placeholder)
	}
	return text
}

// sensitivePaths are files whose entire content is secret-bearing by
// convention, regardless of what a pattern scan finds.
var sensitivePaths = []string{
	"**/.env",
	"**/.env.*",
	"**/*.pem",
	"**/*.key",
	"**/id_rsa",
	"**/id_ed25519",
	"**/credentials",
	"**/.netrc",
}

// SensitivePath reports whether a file's content should never reach a
// prompt or index at all.
func SensitivePath(path string) bool {
	path = filepath.ToSlash(path)
	for _, pat := range sensitivePaths {
		if ok, _ := doublestar.Match(pat, path); ok {
			return true
		}
	}
	return false
}

// Snippet redacts a snippet taken from path: sensitive files are replaced
// wholesale, everything else gets a pattern scan.
func Snippet(path, text string) string {
	if SensitivePath(path) {
		return placeholder + " (file content withheld by path policy)\n"
	}
	return Secrets(text)
}
