package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/jotvcs/jot/pkg/object"
)

// Add stages the given files or directories. Arguments are resolved
// against the current working directory; directories recurse. Every
// argument is validated up front, so a missing path or one escaping the
// working tree aborts the whole operation before anything is staged.
// The staging area is written back once at the end.
func (r *Repo) Add(paths ...string) error {
	resolved := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("add %s: %w", p, err)
		}
		if _, err := os.Stat(abs); err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("path not found: %s", p)
			}
			return fmt.Errorf("add %s: %w", p, err)
		}
		if abs != r.RootDir && !strings.HasPrefix(abs, r.RootDir+string(filepath.Separator)) {
			return fmt.Errorf("path outside repository: %s", p)
		}
		resolved = append(resolved, abs)
	}

	ix := r.newIndex()
	if err := ix.Load(); err != nil {
		return err
	}

	for _, abs := range resolved {
		if err := r.addPath(ix, abs); err != nil {
			return err
		}
	}

	if err := ix.Save(); err != nil {
		return err
	}
	r.logger.Debug("add completed", zap.Int("entries", len(ix.Entries())))
	return nil
}

// addPath stages one resolved path: files directly, directories by
// recursing over their children. Anything that is neither (sockets,
// symlinks to nowhere) is skipped.
func (r *Repo) addPath(ix *Index, abs string) error {
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("add stat %s: %w", abs, err)
	}

	switch {
	case info.Mode().IsRegular():
		return r.addFile(ix, abs, info)
	case info.IsDir():
		children, err := r.Workspace.ListEntries(abs)
		if err != nil {
			return err
		}
		for _, child := range children {
			if err := r.addPath(ix, filepath.Join(abs, child.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}

// addFile writes the file's blob and records path, mode, size and stat
// snapshot in the staging area.
func (r *Repo) addFile(ix *Index, abs string, info os.FileInfo) error {
	rel, err := r.Workspace.Rel(abs)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return fmt.Errorf("add read %s: %w", rel, err)
	}
	oid, err := r.Store.WriteBlob(object.NewBlob(data))
	if err != nil {
		return err
	}

	ix.Add(rel, ModeString(info), oid, uint32(len(data)), statSnapshot(info))
	r.logger.Debug("staged", zap.String("path", rel), zap.String("oid", string(oid)))
	return nil
}
