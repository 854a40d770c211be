// Package engine holds the process-wide state: the hashtab and the loaded
// patch set, guarded by a mutex, plus the optional background exporter
// thread. It is the explicit context object that encapsulates global state
// behind a single type; cmd/qmldiff and abi are its only callers.
package engine

import (
	"fmt"
	"os"
	"sync"

	"github.com/oxhq/qmldiff/internal/applier"
	"github.com/oxhq/qmldiff/internal/diffsyntax"
	"github.com/oxhq/qmldiff/internal/hashtab"
	"github.com/oxhq/qmldiff/internal/qmlemit"
	"github.com/oxhq/qmldiff/internal/qmlparse"
)

// Engine is the single process-wide state object: the hashtab and the
// patch set loaded for an apply-diffs run. Parsing and patch application
// are single-threaded and synchronous per call; the mutex
// exists so the background exporter can take a consistent snapshot of the
// hashtab while an ApplyFile call is in flight.
type Engine struct {
	mu       sync.Mutex
	table    *hashtab.Table
	patches  []*loadedPatch
	creating bool // hashtab-creation mode: patches are never applied
}

type loadedPatch struct {
	program *diffsyntax.Program
	applier *applier.Applier
}

// New returns an Engine with an empty hashtab and no loaded patches.
func New() *Engine {
	return &Engine{table: hashtab.New()}
}

// Table returns the engine's hashtab. Safe for concurrent reads; the
// exporter and ApplyFile both go through it.
func (e *Engine) Table() *hashtab.Table {
	return e.table
}

// SetCreating toggles hashtab-creation mode, in which LoadPatches'd patches
// are never applied.
func (e *Engine) SetCreating(creating bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.creating = creating
}

// LoadHashtab reads path into the engine's table, merging with any
// entries already present.
func (e *Engine) LoadHashtab(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("engine: open hashtab %s: %w", path, err)
	}
	defer f.Close()

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.table.ReadFrom(f); err != nil {
		return fmt.Errorf("engine: read hashtab %s: %w", path, err)
	}
	return nil
}

// LoadPatches parses each diff source in paths and appends the resulting
// programs to the engine's patch set, in load order.
func (e *Engine) LoadPatches(paths []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("engine: read patch %s: %w", path, err)
		}
		prog, err := diffsyntax.Parse(src)
		if err != nil {
			return fmt.Errorf("engine: parse patch %s: %w", path, err)
		}
		a, err := applier.New(prog)
		if err != nil {
			return fmt.Errorf("engine: build applier for %s: %w", path, err)
		}
		e.patches = append(e.patches, &loadedPatch{program: prog, applier: a})
	}
	return nil
}

// ApplyFile parses src as QML named filename, runs every loaded patch's
// matching AFFECT blocks against it in load order, then re-emits the
// result. Patches are skipped entirely in hashtab-creation mode.
func (e *Engine) ApplyFile(filename string, src []byte) (string, error) {
	file, err := qmlparse.Parse(src)
	if err != nil {
		return "", fmt.Errorf("engine: parse %s: %w", filename, err)
	}

	e.mu.Lock()
	creating := e.creating
	patches := e.patches
	table := e.table
	e.mu.Unlock()

	if !creating {
		for _, p := range patches {
			if err := p.applier.ApplyFile(p.program, filename, file); err != nil {
				return "", err
			}
		}
	}

	emitter := &qmlemit.Emitter{Resolver: &resolver{table: table}}
	out, err := emitter.Emit(file)
	if err != nil {
		return "", fmt.Errorf("engine: emit %s: %w", filename, err)
	}
	return out, nil
}

// Affects reports whether any loaded patch has an AFFECT block matching
// filename, without running it (abi.is_modified).
func (e *Engine) Affects(filename string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, p := range e.patches {
		if applier.AffectsFile(p.program, filename) {
			return true
		}
	}
	return false
}

// HashIdentifiers parses src and records the literal identifiers found in
// declaration positions (object types, names, property and assignment
// targets) into the engine's hashtab, used by create-hashtab mode. String
// keys and identifiers inside token-stream values or bodies are not
// recorded. It
// never applies patches or mutates the parsed AST's identifiers in place.
func (e *Engine) HashIdentifiers(filename string, src []byte) error {
	file, err := qmlparse.Parse(src)
	if err != nil {
		return fmt.Errorf("engine: parse %s: %w", filename, err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	walkIdents(file, e.table)
	return nil
}
