package repo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommitFirst(t *testing.T) {
	r := newTestRepo(t)
	writeFile(t, r.RootDir, "x.txt", "hello\n")
	require.NoError(t, r.Add("x.txt"))

	hash, err := r.Commit("first commit")
	require.NoError(t, err)
	require.True(t, hash.Valid())

	c, err := r.Store.ReadCommit(hash)
	require.NoError(t, err)
	assert.True(t, c.Parent.IsZero(), "first commit has no parent")
	assert.Equal(t, "first commit", c.Message)
	assert.Equal(t, c.Author, c.Committer)
	assert.True(t, strings.HasSuffix(c.Author, " +0000"), "ident %q carries the fixed zone", c.Author)

	head, err := r.Refs.ReadHead()
	require.NoError(t, err)
	assert.Equal(t, hash, head)

	files, err := r.FlattenTree(c.TreeHash)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "x.txt", files[0].Path)
}

func TestCommitSecondHasParent(t *testing.T) {
	r := newTestRepo(t)
	writeFile(t, r.RootDir, "x.txt", "one\n")
	require.NoError(t, r.Add("x.txt"))
	first, err := r.Commit("first")
	require.NoError(t, err)

	writeFile(t, r.RootDir, "y.txt", "two\n")
	require.NoError(t, r.Add("y.txt"))
	second, err := r.Commit("second")
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	c, err := r.Store.ReadCommit(second)
	require.NoError(t, err)
	assert.Equal(t, first, c.Parent)

	head, err := r.Refs.ReadHead()
	require.NoError(t, err)
	assert.Equal(t, second, head)
}

func TestCommitEmptyIndex(t *testing.T) {
	r := newTestRepo(t)

	_, err := r.Commit("nothing staged")
	require.ErrorIs(t, err, ErrNothingToCommit)
}

// A commit consumes the staging area without clearing it: the index
// keeps describing the next commit's content.
func TestCommitPreservesIndex(t *testing.T) {
	r := newTestRepo(t)
	writeFile(t, r.RootDir, "x.txt", "hello\n")
	require.NoError(t, r.Add("x.txt"))

	first, err := r.Commit("first")
	require.NoError(t, err)

	ix := r.newIndex()
	require.NoError(t, ix.Load())
	require.False(t, ix.IsEmpty())

	// Committing again without staging anything produces a new commit
	// with the identical tree, chained onto the first.
	second, err := r.Commit("again")
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	c1, err := r.Store.ReadCommit(first)
	require.NoError(t, err)
	c2, err := r.Store.ReadCommit(second)
	require.NoError(t, err)
	assert.Equal(t, c1.TreeHash, c2.TreeHash)
	assert.Equal(t, first, c2.Parent)
}

func TestCommitUsesConfiguredIdentity(t *testing.T) {
	r := newTestRepo(t)
	configTOML := "[user]\nname = \"Ada Lovelace\"\nemail = \"ada@example.org\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(r.JotDir, "config.toml"), []byte(configTOML), 0o644))

	writeFile(t, r.RootDir, "x.txt", "hello\n")
	require.NoError(t, r.Add("x.txt"))
	hash, err := r.Commit("configured")
	require.NoError(t, err)

	c, err := r.Store.ReadCommit(hash)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(c.Author, "Ada Lovelace <ada@example.org> "), "author = %q", c.Author)
}

func TestCommitIdentityFallsBackToUserEnv(t *testing.T) {
	t.Setenv("USER", "zed")

	r := newTestRepo(t)
	writeFile(t, r.RootDir, "x.txt", "hello\n")
	require.NoError(t, r.Add("x.txt"))
	hash, err := r.Commit("fallback")
	require.NoError(t, err)

	c, err := r.Store.ReadCommit(hash)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(c.Author, "zed <zed@local> "), "author = %q", c.Author)
}

func TestCommitMultilineMessage(t *testing.T) {
	r := newTestRepo(t)
	writeFile(t, r.RootDir, "x.txt", "hello\n")
	require.NoError(t, r.Add("x.txt"))

	message := "subject line\n\nbody paragraph\nwith two lines"
	hash, err := r.Commit(message)
	require.NoError(t, err)

	c, err := r.Store.ReadCommit(hash)
	require.NoError(t, err)
	assert.Equal(t, message, c.Message)
}
