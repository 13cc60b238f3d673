package repo

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jotvcs/jot/pkg/object"
)

// ErrNothingToCommit is returned by Commit when the staging area is empty.
var ErrNothingToCommit = errors.New("nothing to commit")

// Commit snapshots the staging area:
//
//  1. Load the staging area; empty means ErrNothingToCommit.
//  2. Build and store the tree hierarchy from the staged entries.
//  3. Resolve HEAD for the parent hash (absent on the first commit).
//  4. Create the commit with the configured identity and store it.
//  5. Advance the current branch ref.
//
// The staging area is left untouched: it keeps describing what the next
// commit would contain.
func (r *Repo) Commit(message string) (object.Hash, error) {
	ix := r.newIndex()
	if err := ix.Load(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	if ix.IsEmpty() {
		return "", ErrNothingToCommit
	}

	treeHash, err := r.BuildTree(ix.Entries())
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	parent, err := r.Refs.ReadHead()
	if err != nil {
		return "", fmt.Errorf("commit: read HEAD: %w", err)
	}

	ident, err := r.AuthorIdent()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	commit := object.NewCommit(treeHash, parent, ident, ident, message)
	commitHash, err := r.Store.WriteCommit(commit)
	if err != nil {
		return "", fmt.Errorf("commit: write commit: %w", err)
	}

	if err := r.Refs.UpdateHead(commitHash); err != nil {
		return "", fmt.Errorf("commit: update ref: %w", err)
	}

	r.logger.Debug("commit created",
		zap.String("oid", string(commitHash)),
		zap.String("tree", string(treeHash)),
		zap.String("parent", string(parent)))
	return commitHash, nil
}
