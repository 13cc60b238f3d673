package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/jotvcs/jot/pkg/object"
)

// DefaultBranchRef is the branch HEAD points at in a fresh repository.
const DefaultBranchRef = "refs/heads/master"

// Refs resolves and updates the branch pointer files under the control
// directory: HEAD names a branch ref ("ref: refs/heads/master"), the
// branch ref file holds the tip commit id plus a trailing newline.
type Refs struct {
	jotDir string
	logger *zap.Logger
}

// NewRefs returns a Refs store over the given control directory.
func NewRefs(jotDir string, logger *zap.Logger) *Refs {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Refs{jotDir: jotDir, logger: logger}
}

// headRef reads HEAD and returns the ref path it names. A missing HEAD or
// one that does not carry the "ref: " form falls back to the default
// branch, so a half-initialized repository still behaves like an unborn
// master.
func (r *Refs) headRef() (string, error) {
	data, err := os.ReadFile(filepath.Join(r.jotDir, "HEAD"))
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultBranchRef, nil
		}
		return "", fmt.Errorf("read HEAD: %w", err)
	}
	content := strings.TrimSpace(string(data))
	if !strings.HasPrefix(content, "ref:") {
		return DefaultBranchRef, nil
	}
	ref := strings.TrimSpace(strings.TrimPrefix(content, "ref:"))
	if ref == "" {
		return DefaultBranchRef, nil
	}
	return ref, nil
}

// ReadHead resolves HEAD through its branch ref to a commit id. An unborn
// branch (no HEAD, or a branch file that does not exist yet) yields the
// zero hash with no error: history simply has no commits.
func (r *Refs) ReadHead() (object.Hash, error) {
	ref, err := r.headRef()
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(filepath.Join(r.jotDir, filepath.FromSlash(ref)))
	if err != nil {
		if os.IsNotExist(err) {
			r.logger.Debug("unborn branch", zap.String("ref", ref))
			return "", nil
		}
		return "", fmt.Errorf("read ref %q: %w", ref, err)
	}
	return object.Hash(strings.TrimSpace(string(data))), nil
}

// UpdateHead points the branch named by HEAD at oid. The ref file is
// replaced atomically so a crash never leaves a torn pointer.
func (r *Refs) UpdateHead(oid object.Hash) error {
	ref, err := r.headRef()
	if err != nil {
		return err
	}

	refPath := filepath.Join(r.jotDir, filepath.FromSlash(ref))
	if err := os.MkdirAll(filepath.Dir(refPath), 0o755); err != nil {
		return fmt.Errorf("update ref %q: mkdir: %w", ref, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(refPath), ".tmp-ref-*")
	if err != nil {
		return fmt.Errorf("update ref %q: tmpfile: %w", ref, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(string(oid) + "\n"); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("update ref %q: write: %w", ref, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("update ref %q: close: %w", ref, err)
	}
	if err := os.Rename(tmpName, refPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("update ref %q: rename: %w", ref, err)
	}

	r.logger.Debug("updated ref", zap.String("ref", ref), zap.String("oid", string(oid)))
	return nil
}
