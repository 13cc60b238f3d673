package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

var benchmarkStatusSink int

// BenchmarkStatusCleanTree measures a status pass over a committed tree
// where every tracked file still matches its staged stat snapshot, so the
// timestamp shortcut skips content hashing entirely.
func BenchmarkStatusCleanTree(b *testing.B) {
	dir := b.TempDir()
	r, err := Init(dir, nil)
	if err != nil {
		b.Fatalf("Init: %v", err)
	}

	const fileCount = 200
	for i := 0; i < fileCount; i++ {
		rel := fmt.Sprintf("bench/file-%03d.txt", i)
		abs := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			b.Fatalf("MkdirAll(%q): %v", rel, err)
		}
		if err := os.WriteFile(abs, []byte("line 1\nline 2\n"), 0o644); err != nil {
			b.Fatalf("WriteFile(%q): %v", rel, err)
		}
	}

	if err := r.Add(dir); err != nil {
		b.Fatalf("Add: %v", err)
	}
	if _, err := r.Commit("seed"); err != nil {
		b.Fatalf("Commit: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		st, err := r.Status()
		if err != nil {
			b.Fatalf("Status: %v", err)
		}
		if !st.Clean() {
			b.Fatalf("tree not clean: %+v", st)
		}
		benchmarkStatusSink += len(st.Untracked)
	}
}
