package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitCmdCreatesRepository(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "proj")

	out, err := runJot(t, "init", dir)
	require.NoError(t, err)
	assert.Equal(t, "Initialized empty Jot repository in "+filepath.Join(dir, ".jot")+"\n", out)

	for _, sub := range []string{"objects", "refs/heads"} {
		info, err := os.Stat(filepath.Join(dir, ".jot", filepath.FromSlash(sub)))
		require.NoError(t, err, sub)
		assert.True(t, info.IsDir(), sub)
	}
	head, err := os.ReadFile(filepath.Join(dir, ".jot", "HEAD"))
	require.NoError(t, err)
	assert.Equal(t, "ref: refs/heads/master\n", string(head))
}

func TestInitCmdDefaultsToWorkingDirectory(t *testing.T) {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	out, err := runJotIn(t, dir, "init")
	require.NoError(t, err)
	assert.Equal(t, "Initialized empty Jot repository in "+filepath.Join(dir, ".jot")+"\n", out)
}

func TestInitCmdIsIdempotent(t *testing.T) {
	dir := initRepo(t)

	_, err := runJot(t, "init", dir)
	require.NoError(t, err)

	head, err := os.ReadFile(filepath.Join(dir, ".jot", "HEAD"))
	require.NoError(t, err)
	assert.Equal(t, "ref: refs/heads/master\n", string(head))
}
