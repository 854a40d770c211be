// Package walker implements parallel directory traversal for discovering
// QML source files and patch-source (.diff) files under a project root.
package walker

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
)

// Scope bounds and filters one Walk: a root path plus include/exclude glob
// patterns (matched with doublestar, so "**" crosses directory boundaries).
type Scope struct {
	Root           string
	Include        []string // empty means "include everything"
	Exclude        []string
	MaxDepth       int // 0 means unlimited
	FollowSymlinks bool
}

// Result is one discovered file, or a directory-read/stat failure recorded
// against the path that triggered it.
type Result struct {
	Path string
	Info fs.FileInfo
	Err  error
}

// Walker performs parallel directory traversal with pattern matching, using
// a fixed worker pool of goroutines fed by a single directory-scan producer.
type Walker struct {
	workers    int
	bufferSize int
}

// New returns a Walker sized for I/O-bound traversal (2x CPU cores).
func New() *Walker {
	return &Walker{workers: runtime.NumCPU() * 2, bufferSize: 1000}
}

// Walk traverses scope.Root and streams matching files on the returned
// channel, closing it once the whole tree has been visited or ctx is
// cancelled.
func (w *Walker) Walk(ctx context.Context, scope Scope) (<-chan Result, error) {
	info, err := os.Stat(scope.Root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &fs.PathError{Op: "walk", Path: scope.Root, Err: fs.ErrInvalid}
	}

	results := make(chan Result, w.bufferSize)
	paths := make(chan string, w.bufferSize)

	var wg sync.WaitGroup
	for i := 0; i < w.workers; i++ {
		wg.Add(1)
		go w.worker(ctx, paths, results, &wg)
	}

	go func() {
		defer close(paths)
		var visited map[string]struct{}
		if scope.FollowSymlinks {
			visited = make(map[string]struct{})
		}
		w.scanDir(ctx, scope.Root, scope, paths, 0, visited)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	return results, nil
}

func (w *Walker) worker(ctx context.Context, paths <-chan string, results chan<- Result, wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-paths:
			if !ok {
				return
			}
			info, err := os.Stat(path)
			select {
			case <-ctx.Done():
				return
			case results <- Result{Path: path, Info: info, Err: err}:
			}
		}
	}
}

func (w *Walker) scanDir(ctx context.Context, dir string, scope Scope, paths chan<- string, depth int, visited map[string]struct{}) {
	select {
	case <-ctx.Done():
		return
	default:
	}
	if scope.MaxDepth > 0 && depth > scope.MaxDepth {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return
		default:
		}
		full := filepath.Join(dir, entry.Name())
		if matchAny(full, scope.Exclude) {
			continue
		}
		isDir := entry.IsDir()
		if entry.Type()&os.ModeSymlink != 0 {
			if !scope.FollowSymlinks {
				continue
			}
			resolved, err := filepath.EvalSymlinks(full)
			if err != nil {
				continue
			}
			st, err := os.Stat(resolved)
			if err != nil {
				continue
			}
			isDir = st.IsDir()
			full = resolved
		}
		if isDir {
			if visited != nil {
				if _, seen := visited[full]; seen {
					continue
				}
				visited[full] = struct{}{}
			}
			w.scanDir(ctx, full, scope, paths, depth+1, visited)
			continue
		}
		if len(scope.Include) == 0 || matchAny(full, scope.Include) {
			select {
			case <-ctx.Done():
				return
			case paths <- full:
			}
		}
	}
}

func matchAny(path string, patterns []string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.PathMatch(p, path); err == nil && ok {
			return true
		}
		if ok, err := doublestar.PathMatch(p, filepath.Base(path)); err == nil && ok {
			return true
		}
	}
	return false
}

// Collect drains Walk's channel into a lexically sorted slice of
// matching paths, skipping any that errored. Convenience wrapper for
// callers (cmd/qmldiff) that don't need streaming.
func Collect(ctx context.Context, w *Walker, scope Scope) ([]string, error) {
	results, err := w.Walk(ctx, scope)
	if err != nil {
		return nil, err
	}
	var paths []string
	for r := range results {
		if r.Err != nil {
			continue
		}
		paths = append(paths, r.Path)
	}
	sort.Strings(paths)
	return paths, nil
}
