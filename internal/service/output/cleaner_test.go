package output

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func TestCleanerRemovesOnlyStaleTempFiles(t *testing.T) {
	dir := t.TempDir()
	old := time.Now().Add(-3 * time.Hour)

	write := func(name string, mtime time.Time) {
		t.Helper()
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := os.Chtimes(p, mtime, mtime); err != nil {
			t.Fatal(err)
		}
	}
	write(".tmp-a.png-123", old)
	write(".tmp-b.png-456", time.Now())
	write("20250101000000_old.png", old)

	c := NewCleaner(zaptest.NewLogger(t).Sugar(), time.Hour)
	if n := c.Clean(dir); n != 1 {
		t.Fatalf("removed %d, want 1", n)
	}

	files := listFiles(t, dir)
	if len(files) != 2 {
		t.Fatalf("files = %v", files)
	}
	for _, f := range files {
		if f == ".tmp-a.png-123" {
			t.Errorf("stale temp file survived")
		}
	}
}

func TestCleanerMissingDirAndDisabled(t *testing.T) {
	logger := zaptest.NewLogger(t).Sugar()
	if n := NewCleaner(logger, time.Hour).Clean(filepath.Join(t.TempDir(), "nope")); n != 0 {
		t.Errorf("removed %d from missing dir", n)
	}
	if n := NewCleaner(logger, 0).Clean(t.TempDir()); n != 0 {
		t.Errorf("disabled cleaner removed %d", n)
	}
}
