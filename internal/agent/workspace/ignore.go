package workspace

import (
	"path"
	"strings"
)

// DefaultExcludes are skipped by upload and watch unless configured
// otherwise.
var DefaultExcludes = []string{
	"node_modules/**",
	".git/**",
	"dist/**",
	"build/**",
	"out/**",
	"*.log",
}

// alwaysExcluded holds the agent's own state and is applied on top of any
// configured patterns.
var alwaysExcluded = []string{StateDir + "/**"}

type ignorePattern struct {
	pattern   string
	matchPath bool   // false: match the basename only
	dirPrefix string // set for "dir/**" patterns
}

// IgnoreMatcher checks workspace-relative paths against exclude patterns.
// Patterns without '/' match the basename, patterns with '/' match the whole
// relative path, and "dir/**" matches everything below dir.
type IgnoreMatcher struct {
	patterns []ignorePattern
}

// NewIgnoreMatcher skips blank lines and lines starting with '#'.
func NewIgnoreMatcher(rawPatterns []string) *IgnoreMatcher {
	var patterns []ignorePattern
	for _, raw := range append(append([]string(nil), rawPatterns...), alwaysExcluded...) {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		p := ignorePattern{pattern: raw, matchPath: strings.Contains(raw, "/")}
		if prefix, ok := strings.CutSuffix(raw, "/**"); ok {
			p.dirPrefix = prefix
		}
		patterns = append(patterns, p)
	}
	return &IgnoreMatcher{patterns: patterns}
}

// Match reports whether the slash-separated relative path is excluded.
func (m *IgnoreMatcher) Match(rel string) bool {
	base := path.Base(rel)
	for _, p := range m.patterns {
		if p.dirPrefix != "" {
			if rel == p.dirPrefix || strings.HasPrefix(rel, p.dirPrefix+"/") {
				return true
			}
			continue
		}

		var matched bool
		var err error
		if p.matchPath {
			matched, err = path.Match(p.pattern, rel)
		} else {
			matched, err = path.Match(p.pattern, base)
		}
		if err != nil {
			// bad pattern
			continue
		}
		if matched {
			return true
		}
	}
	return false
}
