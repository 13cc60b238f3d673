package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/jotvcs/jot/pkg/object"
)

// ControlDir is the repository control directory name.
const ControlDir = ".jot"

// ErrNotRepository is returned by Find when no control directory exists in
// the start path or any of its ancestors. The text is the user-facing
// diagnostic, printed behind a "fatal: " prefix by the CLI.
var ErrNotRepository = errors.New("not a jot repository (or any of the parent directories): " + ControlDir)

// Repo is an opened repository: the working tree root, the control
// directory, and the collaborators every operation is built from.
type Repo struct {
	RootDir   string        // working directory root
	JotDir    string        // .jot/ directory
	Store     *object.Store // content-addressed object store
	Workspace *Workspace    // live filesystem reader
	Refs      *Refs         // branch pointer storage

	logger *zap.Logger
}

// New constructs a Repo rooted at root without checking that a control
// directory exists there; Init and Find are the usual entry points. A nil
// logger keeps the repository silent.
func New(root string, logger *zap.Logger) *Repo {
	if logger == nil {
		logger = zap.NewNop()
	}
	jotDir := filepath.Join(root, ControlDir)
	return &Repo{
		RootDir:   root,
		JotDir:    jotDir,
		Store:     object.NewStore(jotDir),
		Workspace: NewWorkspace(root),
		Refs:      NewRefs(jotDir, logger),
		logger:    logger,
	}
}

// Init creates the control directory skeleton at path: objects/,
// refs/heads/, and a HEAD pointing at the default branch. Re-initializing
// an existing repository is harmless.
func Init(path string, logger *zap.Logger) (*Repo, error) {
	r := New(path, logger)

	dirs := []string{
		filepath.Join(r.JotDir, "objects"),
		filepath.Join(r.JotDir, "refs", "heads"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", d, err)
		}
	}

	headPath := filepath.Join(r.JotDir, "HEAD")
	if err := os.WriteFile(headPath, []byte("ref: "+DefaultBranchRef+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("init: write HEAD: %w", err)
	}

	r.logger.Debug("initialized repository", zap.String("dir", r.JotDir))
	return r, nil
}

// Find searches upward from start for a control directory and opens the
// repository rooted there. Returns ErrNotRepository when the filesystem
// root is reached without a hit.
func Find(start string, logger *zap.Logger) (*Repo, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return nil, fmt.Errorf("find repository: %w", err)
	}

	cur := abs
	for {
		info, err := os.Stat(filepath.Join(cur, ControlDir))
		if err == nil && info.IsDir() {
			return New(cur, logger), nil
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, ErrNotRepository
		}
		cur = parent
	}
}

// indexPath returns the staging area file location.
func (r *Repo) indexPath() string {
	return filepath.Join(r.JotDir, "index")
}

// newIndex returns an unloaded staging area bound to this repository.
func (r *Repo) newIndex() *Index {
	return NewIndex(r.indexPath(), r.logger)
}
