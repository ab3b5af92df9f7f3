package janitor

import "strings"

// testNamePatterns marks instance names that are disposable by
// convention: leftovers from QR experiments, demos and integration runs
// against shared gateways. Matching is case-insensitive on substrings,
// so "qrcode-test" and "TestBot42" both count.
var testNamePatterns = []string{
	"test",
	"debug",
	"temp",
	"tmp",
	"demo",
	"example",
	"sample",
	"trial",
}

// MatchPattern returns the first pattern contained in name. ok is false
// when the name looks like a real deployment.
func MatchPattern(name string) (string, bool) {
	normalized := strings.TrimSpace(strings.ToLower(name))
	if normalized == "" {
		return "", false
	}
	for _, pattern := range testNamePatterns {
		if strings.Contains(normalized, pattern) {
			return pattern, true
		}
	}
	return "", false
}

// IsDisposable reports whether name marks a throwaway instance.
func IsDisposable(name string) bool {
	_, ok := MatchPattern(name)
	return ok
}
