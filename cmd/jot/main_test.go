package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// runJot executes the CLI with the given arguments, capturing stdout.
func runJot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// runJotIn executes the CLI with -C pointing into dir, restoring the
// test process working directory afterwards.
func runJotIn(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatalf("restore cwd: %v", err)
		}
	})
	return runJot(t, append([]string{"-C", dir}, args...)...)
}

// initRepo creates a repository in a fresh temp dir through the CLI.
func initRepo(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	_, err = runJot(t, "init", dir)
	require.NoError(t, err)
	return dir
}

func writeTestFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	abs := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	return abs
}

func TestVersionCmd(t *testing.T) {
	out, err := runJot(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "jot 0.1.0-dev\n", out)
}

func TestStatusOutsideRepository(t *testing.T) {
	dir := t.TempDir()

	_, err := runJotIn(t, dir, "status")
	require.Error(t, err)
	assert.EqualError(t, err, "not a jot repository (or any of the parent directories): .jot")
}

func TestDebugRequestedViaEnv(t *testing.T) {
	t.Setenv("JOT_DEBUG", "1")
	assert.True(t, debugRequested(newStatusCmd()))

	t.Setenv("JOT_DEBUG", "true")
	assert.True(t, debugRequested(newStatusCmd()))

	t.Setenv("JOT_DEBUG", "0")
	assert.False(t, debugRequested(newStatusCmd()))
}

func TestChdirFlagRunsElsewhere(t *testing.T) {
	dir := initRepo(t)
	writeTestFile(t, dir, "x.txt", "hello\n")

	out, err := runJotIn(t, dir, "status", "--porcelain")
	require.NoError(t, err)
	assert.Equal(t, "?? x.txt\n", out)
}
