package walker

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestCollectFiltersByIncludePattern(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.qml", "Item {}\n")
	writeFile(t, dir, "sub/widget.qml", "Item {}\n")
	writeFile(t, dir, "notes.txt", "ignored\n")

	paths, err := Collect(context.Background(), New(), Scope{
		Root:    dir,
		Include: []string{"**/*.qml"},
	})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 qml files, got %d: %v", len(paths), paths)
	}
	for _, p := range paths {
		if filepath.Ext(p) != ".qml" {
			t.Fatalf("unexpected non-qml path in results: %s", p)
		}
	}
}

func TestCollectExcludePatternWins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "keep.qml", "Item {}\n")
	writeFile(t, dir, "vendor/skip.qml", "Item {}\n")

	paths, err := Collect(context.Background(), New(), Scope{
		Root:    dir,
		Include: []string{"**/*.qml"},
		Exclude: []string{"**/vendor/**"},
	})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(paths) != 1 || filepath.Base(paths[0]) != "keep.qml" {
		t.Fatalf("unexpected results: %v", paths)
	}
}

func TestCollectNonexistentRootErrors(t *testing.T) {
	_, err := Collect(context.Background(), New(), Scope{Root: filepath.Join(t.TempDir(), "missing")})
	if err == nil {
		t.Fatal("expected error for nonexistent root")
	}
}

func TestCollectRejectsFileRoot(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "main.qml", "Item {}\n")
	_, err := Collect(context.Background(), New(), Scope{Root: file})
	if err == nil {
		t.Fatal("expected error when root is a file, not a directory")
	}
}

func TestWalkRespectsMaxDepth(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "top.qml", "Item {}\n")
	writeFile(t, dir, "a/b/deep.qml", "Item {}\n")

	paths, err := Collect(context.Background(), New(), Scope{
		Root:     dir,
		Include:  []string{"**/*.qml"},
		MaxDepth: 1,
	})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(paths) != 1 || filepath.Base(paths[0]) != "top.qml" {
		t.Fatalf("expected only top-level file within depth 1: %v", paths)
	}
}

func TestWalkCancelledContextStopsEarly(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 50; i++ {
		writeFile(t, dir, filepath.Join("d", string(rune('a'+i%26))+".qml"), "Item {}\n")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := New().Walk(ctx, Scope{Root: dir, Include: []string{"**/*.qml"}})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	select {
	case <-time.After(2 * time.Second):
		t.Fatal("Walk did not drain after context cancellation")
	case _, ok := <-drainAll(results):
		_ = ok
	}
}

func drainAll(results <-chan Result) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		for range results {
		}
		close(done)
	}()
	return done
}
