package workspace

import "testing"

func TestIgnoreMatcher_Match(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		rel      string
		want     bool
	}{
		{"basename glob in root", []string{"*.log"}, "app.log", true},
		{"basename glob in subdirectory", []string{"*.log"}, "sub/app.log", true},
		{"basename glob other extension", []string{"*.log"}, "app.txt", false},
		{"dir pattern matches nested file", []string{"node_modules/**"}, "node_modules/a/b/c.js", true},
		{"dir pattern matches the dir itself", []string{"node_modules/**"}, "node_modules", true},
		{"dir pattern is anchored at root", []string{"node_modules/**"}, "web/node_modules/x.js", false},
		{"dir pattern needs a separator", []string{"dist/**"}, "distribution/a.txt", false},
		{"path glob", []string{"docs/*.md"}, "docs/a.md", true},
		{"path glob does not cross dirs", []string{"docs/*.md"}, "docs/x/a.md", false},
		{"state dir always excluded", nil, StateDir + "/state.db", true},
		{"comments and blanks ignored", []string{"# *.go", "  "}, "main.go", false},
		{"bad pattern skipped", []string{"[", "*.tmp"}, "x.tmp", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewIgnoreMatcher(tt.patterns).Match(tt.rel); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.rel, got, tt.want)
			}
		})
	}
}

func TestDefaultExcludes(t *testing.T) {
	m := NewIgnoreMatcher(DefaultExcludes)
	for _, rel := range []string{".git/HEAD", "dist/app.js", "build/x", "out/y", "debug.log", "node_modules/m/i.js"} {
		if !m.Match(rel) {
			t.Errorf("%s should be excluded", rel)
		}
	}
	for _, rel := range []string{"src/main.go", "README.md", ".gitignore"} {
		if m.Match(rel) {
			t.Errorf("%s should not be excluded", rel)
		}
	}
}
