// Package filex normalizes project-relative file paths and prepares
// local directories used by the sync agent.
package filex

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrInvalidPath is returned for paths that are empty or escape the project root.
var ErrInvalidPath = errors.New("invalid path")

// CleanRelPath turns a client supplied path into the canonical form used as
// a file key: forward slashes, no leading "/" or "./", no "." or ".."
// segments. Paths that would climb out of the project are rejected rather
// than silently clamped.
func CleanRelPath(p string) (string, error) {
	if strings.ContainsRune(p, 0) {
		return "", ErrInvalidPath
	}
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimLeft(p, "/")

	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", ErrInvalidPath
		}
	}

	p = path.Clean(p)
	if p == "." || p == "" {
		return "", ErrInvalidPath
	}
	return p, nil
}

// EnsureDir creates dir (relative paths resolve against the working
// directory) and returns its absolute form.
func EnsureDir(dir string) (string, error) {
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = filepath.Join(cwd, dir)
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}
