package main

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommitCmdPrintsShortHash(t *testing.T) {
	dir := initRepo(t)
	writeTestFile(t, dir, "x.txt", "hello\n")
	_, err := runJotIn(t, dir, "add", "x.txt")
	require.NoError(t, err)

	out, err := runJotIn(t, dir, "commit", "-m", "first commit")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^\[[0-9a-f]{7}\] first commit\n$`), out)
}

func TestCommitCmdPrintsSubjectLineOnly(t *testing.T) {
	dir := initRepo(t)
	writeTestFile(t, dir, "x.txt", "hello\n")
	_, err := runJotIn(t, dir, "add", "x.txt")
	require.NoError(t, err)

	out, err := runJotIn(t, dir, "commit", "-m", "subject\n\nbody paragraph")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^\[[0-9a-f]{7}\] subject\n$`), out)
}

func TestCommitCmdNothingToCommit(t *testing.T) {
	dir := initRepo(t)

	_, err := runJotIn(t, dir, "commit", "-m", "empty")
	require.Error(t, err)
	assert.EqualError(t, err, "nothing to commit")
}

func TestCommitCmdRequiresMessage(t *testing.T) {
	dir := initRepo(t)
	writeTestFile(t, dir, "x.txt", "hello\n")
	_, err := runJotIn(t, dir, "add", "x.txt")
	require.NoError(t, err)

	_, err = runJotIn(t, dir, "commit")
	require.Error(t, err)
	assert.EqualError(t, err, "commit message is required (-m)")
}

func TestCommitCmdThenStatusClean(t *testing.T) {
	dir := initRepo(t)
	writeTestFile(t, dir, "x.txt", "hello\n")
	_, err := runJotIn(t, dir, "add", "x.txt")
	require.NoError(t, err)
	_, err = runJotIn(t, dir, "commit", "-m", "first")
	require.NoError(t, err)

	out, err := runJotIn(t, dir, "status")
	require.NoError(t, err)
	assert.Equal(t, "nothing to commit, working tree clean\n", out)
}
