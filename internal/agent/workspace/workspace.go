// Package workspace is the agent's view of the local project directory:
// scanning with exclude rules, content digests, and applying downstream
// writes.
package workspace

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/sharelink/internal/filex"
	"github.com/spf13/afero"
	"github.com/zeebo/blake3"
)

// DefaultMaxFileSize is the largest file upload and watch will send.
const DefaultMaxFileSize int64 = 1 << 20

// StateDir is the workspace-relative directory holding agent state.
const StateDir = ".sharelink"

const (
	EncodingUTF8   = "utf8"
	EncodingBase64 = "base64"
)

// Digest is a BLAKE3-256 content hash.
type Digest [32]byte

func DigestOf(data []byte) Digest {
	return blake3.Sum256(data)
}

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// Entry is a file found by Scan.
type Entry struct {
	Path   string
	Size   int64
	Digest Digest
}

// Skip explains why Scan left a file out.
type Skip struct {
	Path   string
	Size   int64
	Reason string
}

const (
	SkipTooLarge = "too large"
	SkipExcluded = "excluded"
)

type Workspace struct {
	fs      afero.Fs
	ignore  *IgnoreMatcher
	maxSize int64
}

// New wraps fsys, which is rooted at the project directory. A non-positive
// maxSize means DefaultMaxFileSize.
func New(fsys afero.Fs, excludes []string, maxSize int64) *Workspace {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	return &Workspace{fs: fsys, ignore: NewIgnoreMatcher(excludes), maxSize: maxSize}
}

// NewOS opens the directory root on the local disk.
func NewOS(root string, excludes []string, maxSize int64) *Workspace {
	return New(afero.NewBasePathFs(afero.NewOsFs(), root), excludes, maxSize)
}

func abs(rel string) string { return "/" + rel }

// Excluded reports whether rel is covered by an exclude pattern.
func (w *Workspace) Excluded(rel string) bool {
	return w.ignore.Match(rel)
}

// Scan walks the workspace and returns every file eligible for upload,
// plus the ones it skipped for size. Excluded directories are not entered.
func (w *Workspace) Scan() ([]Entry, []Skip, error) {
	var entries []Entry
	var skipped []Skip

	err := afero.Walk(w.fs, "/", func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(path.Clean("/"+strings.ReplaceAll(p, "\\", "/")), "/")
		if rel == "" {
			return nil
		}

		if info.IsDir() {
			if w.ignore.Match(rel) {
				return fs.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() || w.ignore.Match(rel) {
			return nil
		}
		if info.Size() > w.maxSize {
			skipped = append(skipped, Skip{Path: rel, Size: info.Size(), Reason: SkipTooLarge})
			return nil
		}

		data, err := afero.ReadFile(w.fs, abs(rel))
		if err != nil {
			return fmt.Errorf("read %s: %w", rel, err)
		}
		entries = append(entries, Entry{Path: rel, Size: int64(len(data)), Digest: DigestOf(data)})
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return entries, skipped, nil
}

// Read returns the bytes of rel.
func (w *Workspace) Read(rel string) ([]byte, error) {
	rel, err := filex.CleanRelPath(rel)
	if err != nil {
		return nil, err
	}
	return afero.ReadFile(w.fs, abs(rel))
}

// Write creates or replaces rel, making parent directories as needed.
func (w *Workspace) Write(rel string, data []byte) error {
	rel, err := filex.CleanRelPath(rel)
	if err != nil {
		return err
	}
	if dir := path.Dir(rel); dir != "." {
		if err := w.fs.MkdirAll(abs(dir), 0o755); err != nil {
			return err
		}
	}
	return afero.WriteFile(w.fs, abs(rel), data, 0o644)
}

// Remove deletes rel. A missing file is not an error.
func (w *Workspace) Remove(rel string) error {
	rel, err := filex.CleanRelPath(rel)
	if err != nil {
		return err
	}
	if err := w.fs.Remove(abs(rel)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// IsEmpty reports whether the workspace holds no files outside StateDir.
func (w *Workspace) IsEmpty() (bool, error) {
	entries, skipped, err := w.Scan()
	if err != nil {
		return false, err
	}
	return len(entries) == 0 && len(skipped) == 0, nil
}

// Encode picks the wire form for data: text when it is valid UTF-8, base64
// otherwise.
func Encode(data []byte) (content, encoding string) {
	if utf8.Valid(data) {
		return string(data), EncodingUTF8
	}
	return base64.StdEncoding.EncodeToString(data), EncodingBase64
}

// Decode reverses Encode. An empty encoding means utf8.
func Decode(content, encoding string) ([]byte, error) {
	switch encoding {
	case "", EncodingUTF8:
		return []byte(content), nil
	case EncodingBase64:
		b, err := base64.StdEncoding.DecodeString(content)
		if err != nil {
			return nil, fmt.Errorf("bad base64 content: %w", err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown encoding %q", encoding)
	}
}
