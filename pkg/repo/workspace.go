package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jotvcs/jot/pkg/object"
)

// Workspace reads the live filesystem tree being tracked: directory
// listings with the control directory hidden, raw file bytes, and the
// mode/stat conversions the index and status engine consume.
type Workspace struct {
	root string
}

// NewWorkspace returns a Workspace over the given working tree root.
func NewWorkspace(root string) *Workspace {
	return &Workspace{root: root}
}

// Root returns the working tree root.
func (w *Workspace) Root() string { return w.root }

// Abs converts a repository-relative slash path to an absolute path.
func (w *Workspace) Abs(rel string) string {
	return filepath.Join(w.root, filepath.FromSlash(rel))
}

// Rel converts an absolute path to the repository-relative slash form.
// Paths outside the working tree are rejected.
func (w *Workspace) Rel(abs string) (string, error) {
	rel, err := filepath.Rel(w.root, abs)
	if err != nil {
		return "", fmt.Errorf("relativize %s: %w", abs, err)
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("path outside repository: %s", abs)
	}
	return rel, nil
}

// ListEntries returns the immediate entries of an absolute directory
// path, excluding the control directory. os.ReadDir sorts by name.
func (w *Workspace) ListEntries(dir string) ([]os.DirEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	out := entries[:0]
	for _, e := range entries {
		if e.Name() == ControlDir {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// ReadFile returns the full content of a repository-relative path.
func (w *Workspace) ReadFile(rel string) ([]byte, error) {
	return os.ReadFile(w.Abs(rel))
}

// Stat stats a repository-relative path.
func (w *Workspace) Stat(rel string) (os.FileInfo, error) {
	return os.Stat(w.Abs(rel))
}

// ModeString derives the stored mode string from filesystem metadata:
// the tree sentinel for directories, "100" plus three octal permission
// digits for regular files.
func ModeString(info os.FileInfo) string {
	if info.IsDir() {
		return object.TreeModeDir
	}
	return fmt.Sprintf("100%03o", info.Mode().Perm())
}

// fallbackStat fills a FileStat from portable FileInfo fields alone:
// modification time stands in for both timestamps, provenance ids stay
// zero. Timestamp-trust still works because save and compare see the
// same values.
func fallbackStat(info os.FileInfo) FileStat {
	mod := info.ModTime()
	return FileStat{
		CtimeSec:  uint32(mod.Unix()),
		CtimeNsec: uint32(mod.Nanosecond()),
		MtimeSec:  uint32(mod.Unix()),
		MtimeNsec: uint32(mod.Nanosecond()),
	}
}
