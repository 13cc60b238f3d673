package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCmdUntrackedFiles(t *testing.T) {
	dir := initRepo(t)
	writeTestFile(t, dir, "x.txt", "hello\n")

	out, err := runJotIn(t, dir, "status")
	require.NoError(t, err)
	assert.Equal(t, "Untracked files:\n  x.txt\n", out)
}

func TestStatusCmdStagedFile(t *testing.T) {
	dir := initRepo(t)
	writeTestFile(t, dir, "x.txt", "hello\n")
	_, err := runJotIn(t, dir, "add", "x.txt")
	require.NoError(t, err)

	out, err := runJotIn(t, dir, "status")
	require.NoError(t, err)
	assert.Equal(t, "Changes to be committed:\n  new file:   x.txt\n", out)
}

func TestStatusCmdFullReport(t *testing.T) {
	dir := initRepo(t)
	writeTestFile(t, dir, "a.txt", "one\n")
	writeTestFile(t, dir, "b.txt", "two\n")
	_, err := runJotIn(t, dir, "add", ".")
	require.NoError(t, err)
	_, err = runJotIn(t, dir, "commit", "-m", "base")
	require.NoError(t, err)

	writeTestFile(t, dir, "a.txt", "one grew longer\n")
	require.NoError(t, os.Remove(filepath.Join(dir, "b.txt")))
	writeTestFile(t, dir, "c.txt", "three\n")
	_, err = runJotIn(t, dir, "add", "c.txt")
	require.NoError(t, err)
	writeTestFile(t, dir, "u.txt", "loose\n")

	out, err := runJotIn(t, dir, "status")
	require.NoError(t, err)
	want := "Changes to be committed:\n" +
		"  new file:   c.txt\n" +
		"Changes not staged for commit:\n" +
		"  modified:   a.txt\n" +
		"  deleted:    b.txt\n" +
		"Untracked files:\n" +
		"  u.txt\n"
	assert.Equal(t, want, out)
}

func TestStatusCmdPorcelainFullReport(t *testing.T) {
	dir := initRepo(t)
	writeTestFile(t, dir, "a.txt", "one\n")
	writeTestFile(t, dir, "b.txt", "two\n")
	_, err := runJotIn(t, dir, "add", ".")
	require.NoError(t, err)
	_, err = runJotIn(t, dir, "commit", "-m", "base")
	require.NoError(t, err)

	writeTestFile(t, dir, "a.txt", "one grew longer\n")
	require.NoError(t, os.Remove(filepath.Join(dir, "b.txt")))
	writeTestFile(t, dir, "c.txt", "three\n")
	_, err = runJotIn(t, dir, "add", "c.txt")
	require.NoError(t, err)
	writeTestFile(t, dir, "u.txt", "loose\n")

	out, err := runJotIn(t, dir, "status", "--porcelain")
	require.NoError(t, err)
	assert.Equal(t, " M a.txt\n D b.txt\nA  c.txt\n?? u.txt\n", out)
}

func TestStatusCmdPorcelainJointAddedDeleted(t *testing.T) {
	dir := initRepo(t)
	writeTestFile(t, dir, "x.txt", "hello\n")
	_, err := runJotIn(t, dir, "add", "x.txt")
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, "x.txt")))

	out, err := runJotIn(t, dir, "status", "--porcelain")
	require.NoError(t, err)
	assert.Equal(t, "AD x.txt\n", out)
}

func TestStatusCmdUntrackedDirectoryCollapsed(t *testing.T) {
	dir := initRepo(t)
	writeTestFile(t, dir, "vendor/lib/dep.go", "package dep\n")

	out, err := runJotIn(t, dir, "status")
	require.NoError(t, err)
	assert.Equal(t, "Untracked files:\n  vendor/\n", out)

	out, err = runJotIn(t, dir, "status", "--porcelain")
	require.NoError(t, err)
	assert.Equal(t, "?? vendor/\n", out)
}

func TestStatusCmdRejectsPositionalArgs(t *testing.T) {
	dir := initRepo(t)

	_, err := runJotIn(t, dir, "status", "extra")
	require.Error(t, err)
}
