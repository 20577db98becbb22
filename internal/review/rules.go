package review

import (
	"regexp"
	"strings"

	"github.com/glintbot/glint/internal/symbols"
)

// rule is one deterministic single-line check. Lookahead lets a rule clear
// itself by scanning a few following lines (e.g. a timeout configured right
// after a network call).
type rule struct {
	pattern   *regexp.Regexp
	lookahead int                  // lines after the match the clear pattern may appear in
	clear     *regexp.Regexp       // match within lookahead suppresses the finding
	when      func(ruleEnv) bool   // nil = always
	category  Category
	severity  Severity
	title     string
	rationale string
	suggest   string
}

type ruleEnv struct {
	allowConsole bool
}

var credentialRules = []rule{
	{
		pattern:   regexp.MustCompile(`(?i)(?:api[_-]?key|secret|token|passwd|password)\s*[:=]\s*["'][A-Za-z0-9_\-]{16,}["']`),
		category:  CategorySecurity,
		severity:  SeverityHigh,
		title:     "Hardcoded credential",
		rationale: "Secrets committed to source control leak through history, forks, and CI logs.",
		suggest:   "Load the secret from the environment or a secret manager instead of the source.",
	},
	{
		pattern:   regexp.MustCompile(`(?:ghp_[A-Za-z0-9]{36}|github_pat_[A-Za-z0-9_]{22,}|sk-[A-Za-z0-9]{20,}|AKIA[0-9A-Z]{16}|xox[baprs]-[A-Za-z0-9-]{10,})`),
		category:  CategorySecurity,
		severity:  SeverityHigh,
		title:     "Provider token committed to source",
		rationale: "The value matches a well-known token format and grants live access if valid.",
		suggest:   "Revoke the token and load it from the environment.",
	},
}

var cfamilyRules = []rule{
	{
		pattern:   regexp.MustCompile(`\beval\s*\(`),
		category:  CategorySecurity,
		severity:  SeverityHigh,
		title:     "Arbitrary code execution via eval",
		rationale: "eval executes attacker-influenced strings as code.",
		suggest:   "Parse the input explicitly instead of evaluating it.",
	},
	{
		pattern:   regexp.MustCompile(`\bchild_process\b.*\bexec\s*\(|\bexecSync\s*\(`),
		category:  CategorySecurity,
		severity:  SeverityHigh,
		title:     "Shell execution with interpretation enabled",
		rationale: "exec runs through a shell, so metacharacters in arguments become injection vectors.",
		suggest:   "Use execFile/spawn with an argument array.",
	},
	{
		pattern:   regexp.MustCompile(`\b(?:md5|sha1)\b|createHash\s*\(\s*["'](?:md5|sha1)["']\s*\)`),
		category:  CategorySecurity,
		severity:  SeverityMedium,
		title:     "Weak hash algorithm",
		rationale: "MD5 and SHA-1 are broken for collision resistance.",
		suggest:   "Use SHA-256 or a purpose-built password hash (bcrypt, argon2).",
	},
	{
		pattern:   regexp.MustCompile(`["']http://[^"'\s]+["']`),
		category:  CategorySecurity,
		severity:  SeverityMedium,
		title:     "Insecure HTTP URL",
		rationale: "Plain HTTP traffic can be read and modified in transit.",
		suggest:   "Use https:// unless the endpoint is loopback-only.",
	},
	{
		pattern:   regexp.MustCompile(`\bfetch\s*\(|\baxios\.(?:get|post|put|delete|patch)\s*\(|http\.(?:Get|Post|PostForm)\s*\(`),
		lookahead: 3,
		clear:     regexp.MustCompile(`(?i)timeout|AbortController|signal\s*:|context\.With`),
		category:  CategoryPerformance,
		severity:  SeverityLow,
		title:     "Network call without visible timeout",
		rationale: "Calls without a timeout or cancellation hang indefinitely when the peer stalls.",
		suggest:   "Attach a timeout or cancellation signal to the request.",
	},
	{
		pattern:   regexp.MustCompile(`JSON\.parse\s*\(\s*atob|deserialize\s*\(|unserialize\s*\(`),
		category:  CategorySecurity,
		severity:  SeverityHigh,
		title:     "Unsafe deserialization",
		rationale: "Deserializing untrusted input can instantiate attacker-chosen structures.",
		suggest:   "Validate the payload against a schema before decoding.",
	},
	{
		pattern:   regexp.MustCompile(`catch\s*\(\s*[A-Za-z_$][\w$]*\s*\)\s*\{\s*\}|catch\s*\{\s*\}`),
		category:  CategoryStyle,
		severity:  SeverityLow,
		title:     "Empty catch block swallows errors",
		rationale: "Silently discarding exceptions hides real failures.",
		suggest:   "Log the error or rethrow it.",
	},
	{
		pattern:   regexp.MustCompile(`:\s*any\b|\bas\s+any\b`),
		category:  CategoryStyle,
		severity:  SeverityLow,
		title:     "Untyped escape hatch (any)",
		rationale: "any disables type checking for everything it touches.",
		suggest:   "Use a precise type or unknown with a narrowing check.",
	},
	{
		pattern:   regexp.MustCompile(`\bconsole\.(?:log|debug|info)\s*\(`),
		when:      func(env ruleEnv) bool { return !env.allowConsole },
		category:  CategoryStyle,
		severity:  SeverityLow,
		title:     "Leftover debug print",
		rationale: "Debug prints pollute production logs and may leak data.",
		suggest:   "Remove the statement or route it through the project logger.",
	},
}

var pythonRules = []rule{
	{
		pattern:   regexp.MustCompile(`\beval\s*\(|\bexec\s*\(`),
		category:  CategorySecurity,
		severity:  SeverityHigh,
		title:     "Arbitrary code execution via eval/exec",
		rationale: "eval and exec run attacker-influenced strings as code.",
		suggest:   "Use ast.literal_eval or explicit parsing.",
	},
	{
		pattern:   regexp.MustCompile(`subprocess\.(?:call|run|Popen)\s*\([^)]*shell\s*=\s*True|os\.system\s*\(|os\.popen\s*\(`),
		category:  CategorySecurity,
		severity:  SeverityHigh,
		title:     "Shell execution with shell=True",
		rationale: "Routing through the shell turns argument content into injection vectors.",
		suggest:   "Pass an argument list with shell=False.",
	},
	{
		pattern:   regexp.MustCompile(`hashlib\.(?:md5|sha1)\s*\(`),
		category:  CategorySecurity,
		severity:  SeverityMedium,
		title:     "Weak hash algorithm",
		rationale: "MD5 and SHA-1 are broken for collision resistance.",
		suggest:   "Use hashlib.sha256 or a password-hashing library.",
	},
	{
		pattern:   regexp.MustCompile(`["']http://[^"'\s]+["']`),
		category:  CategorySecurity,
		severity:  SeverityMedium,
		title:     "Insecure HTTP URL",
		rationale: "Plain HTTP traffic can be read and modified in transit.",
		suggest:   "Use https:// unless the endpoint is loopback-only.",
	},
	{
		pattern:   regexp.MustCompile(`requests\.(?:get|post|put|delete|patch|head)\s*\(|urllib\.request\.urlopen\s*\(`),
		lookahead: 3,
		clear:     regexp.MustCompile(`(?i)timeout\s*=`),
		category:  CategoryPerformance,
		severity:  SeverityLow,
		title:     "Network call without timeout",
		rationale: "requests has no default timeout; a stalled peer blocks the caller forever.",
		suggest:   "Pass timeout= to the call.",
	},
	{
		pattern:   regexp.MustCompile(`pickle\.loads?\s*\(|marshal\.loads?\s*\(|shelve\.open\s*\(`),
		category:  CategorySecurity,
		severity:  SeverityHigh,
		title:     "Unsafe deserialization",
		rationale: "pickle executes arbitrary code during load when the payload is untrusted.",
		suggest:   "Use json or another data-only format for untrusted input.",
	},
	{
		pattern:   regexp.MustCompile(`yaml\.load\s*\((?:[^)]*)?\)`),
		clear:     regexp.MustCompile(`Loader\s*=\s*(?:yaml\.)?(?:SafeLoader|CSafeLoader)|yaml\.safe_load`),
		category:  CategorySecurity,
		severity:  SeverityMedium,
		title:     "yaml.load without a safe loader",
		rationale: "The default loader can construct arbitrary Python objects.",
		suggest:   "Use yaml.safe_load or pass Loader=yaml.SafeLoader.",
	},
	{
		pattern:   regexp.MustCompile(`except\s*:\s*$|except\s+(?:BaseException|Exception)\s*:\s*$`),
		category:  CategoryStyle,
		severity:  SeverityLow,
		title:     "Overly broad exception handler",
		rationale: "Bare except hides programming errors and swallows KeyboardInterrupt.",
		suggest:   "Catch the specific exception types you expect.",
	},
	{
		pattern:   regexp.MustCompile(`\bprint\s*\(`),
		when:      func(env ruleEnv) bool { return !env.allowConsole },
		category:  CategoryStyle,
		severity:  SeverityLow,
		title:     "Leftover debug print",
		rationale: "print statements pollute stdout in library and service code.",
		suggest:   "Remove the statement or use the logging module.",
	},
}

// RunRules scans the changed lines of src against the language's rule
// catalog. Deterministic, side-effect free, and strictly scoped to
// [startLine, endLine]; lines outside the range are never matched (lookahead
// clear patterns may peek past the match line, which does not produce
// findings there).
func RunRules(path, src string, startLine, endLine int, allowConsole bool) []Finding {
	catalog := catalogFor(path)
	if len(catalog) == 0 {
		return nil
	}
	env := ruleEnv{allowConsole: allowConsole}

	lines := strings.Split(src, "\n")
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if startLine < 1 {
		startLine = 1
	}
	if endLine > len(lines) {
		endLine = len(lines)
	}

	var findings []Finding
	for num := startLine; num <= endLine; num++ {
		line := lines[num-1]
		for _, r := range catalog {
			if r.when != nil && !r.when(env) {
				continue
			}
			if !r.pattern.MatchString(line) {
				continue
			}
			if r.clear != nil && clearedNearby(lines, num, r) {
				continue
			}
			findings = append(findings, Finding{
				Path:       path,
				StartLine:  num,
				EndLine:    num,
				Category:   r.category,
				Severity:   r.severity,
				Title:      r.title,
				Rationale:  r.rationale,
				Suggestion: r.suggest,
			})
		}
	}
	return findings
}

func catalogFor(path string) []rule {
	switch symbols.LanguageFromPath(path) {
	case symbols.LangPython:
		return append(pythonRules, credentialRules...)
	case symbols.LangGo, symbols.LangJavaScript, symbols.LangTypeScript, symbols.LangTSX:
		return append(cfamilyRules, credentialRules...)
	default:
		return nil
	}
}

// clearedNearby checks the match line and the rule's lookahead window for
// the clearing pattern.
func clearedNearby(lines []string, matchLine int, r rule) bool {
	end := matchLine + r.lookahead
	if end > len(lines) {
		end = len(lines)
	}
	for n := matchLine; n <= end; n++ {
		if r.clear.MatchString(lines[n-1]) {
			return true
		}
	}
	return false
}
