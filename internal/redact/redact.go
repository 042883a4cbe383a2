package redact

import (
	"path/filepath"
	"regexp"
	"strings"
)

const placeholder = "[REDACTED]"

// secretPatterns are regex heuristics for common secret types. Specific
// shapes come before generic ones so the generic rules see less text.
var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`-----BEGIN\s+(RSA\s+|EC\s+|OPENSSH\s+)?PRIVATE KEY-----`),
	regexp.MustCompile(`sk-ant-[A-Za-z0-9_-]{20,}`),
	regexp.MustCompile(`sk-or-v1-[A-Za-z0-9]{32,}`),
	regexp.MustCompile(`sk-(proj-)?[A-Za-z0-9_-]{20,}`),
	regexp.MustCompile(`AIza[0-9A-Za-z_-]{35}`),
	regexp.MustCompile(`github_pat_[A-Za-z0-9_]{22,}`),
	regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`),
	regexp.MustCompile(`xox[bporas]-[A-Za-z0-9-]{10,}`),
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	regexp.MustCompile(`(?i)(aws[_-]?secret[_-]?access[_-]?key)\s*[:=]\s*["']?([A-Za-z0-9/+=]{40})["']?`),
	regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`),
	regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._-]{20,}`),
	regexp.MustCompile(`(?i)(api[_-]?key|apikey|api[_-]?secret)\s*[:=]\s*["']?([A-Za-z0-9/+=_-]{20,})["']?`),
	regexp.MustCompile(`(?i)(secret|token|password|passwd|credential)\s*[:=]\s*["']([^"']{8,})["']`),
	regexp.MustCompile(`(?i)(key|secret|token)\s*[:=]\s*["']?[0-9a-f]{32,}["']?`),
}

// Secrets replaces detected secrets in text with [REDACTED].
func Secrets(text string) string {
	out, _ := scrub(text)
	return out
}

func scrub(text string) (string, int) {
	hits := 0
	for _, pat := range secretPatterns {
		text = pat.ReplaceAllStringFunc(text, func(string) string {
			hits++
			return placeholder
		})
	}
	return text, hits
}

// Redactor applies the secret heuristics and a path policy to patches.
// The zero value passes patches through unchanged.
type Redactor struct {
	enabled bool
	paths   []string
}

// New returns a Redactor. When enabled is false, Patch is the identity.
// paths are glob patterns; a leading "**/" matches the base name anywhere.
func New(enabled bool, paths []string) *Redactor {
	return &Redactor{enabled: enabled, paths: paths}
}

// Patch returns the patch of path as it may be shown to a provider, and the
// number of secrets removed from it.
func (r *Redactor) Patch(path, patch string) (string, int) {
	if r == nil || !r.enabled {
		return patch, 0
	}
	if matchPath(path, r.paths) {
		return placeholder + " (patch withheld by path policy)", 1
	}
	return scrub(patch)
}

func matchPath(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if matched, err := filepath.Match(pattern, path); err == nil && matched {
			return true
		}
		if base, ok := strings.CutPrefix(pattern, "**/"); ok {
			if matched, err := filepath.Match(base, filepath.Base(path)); err == nil && matched {
				return true
			}
		}
	}
	return false
}
