// Command abi builds (via `go build -buildmode=c-shared`) a thin,
// cgo-exported surface over a single package-level engine.Engine plus a
// hash-rule set. Process-wide state becomes a bare global only here;
// everywhere else it stays behind the Engine type.
package main

// #include <stdlib.h>
import "C"

import (
	"context"
	"os"
	"sync"
	"unsafe"

	"github.com/oxhq/qmldiff/internal/engine"
	"github.com/oxhq/qmldiff/internal/hashtab"
	"github.com/oxhq/qmldiff/internal/walker"
)

var (
	mu           sync.Mutex
	globalEngine = engine.New()
	globalRules  hashtab.RuleSet
	exporter     *engine.Exporter
	startOnce    sync.Once
)

// build_change_files loads every .diff file found under root into the
// global engine's patch set and returns the count loaded, or -1 on error.
//
//export build_change_files
func build_change_files(root *C.char) C.int {
	rootPath := C.GoString(root)

	files, err := walker.Collect(context.Background(), walker.New(), walker.Scope{
		Root:    rootPath,
		Include: []string{"**/*.diff"},
	})
	if err != nil {
		return -1
	}

	mu.Lock()
	defer mu.Unlock()
	if err := globalEngine.LoadPatches(files); err != nil {
		return -1
	}
	return C.int(len(files))
}

// process_file applies every loaded patch to buf (named name) and returns a
// newly-allocated C string owned by the caller, or NULL if the file was
// left unmodified or an error occurred.
//
//export process_file
func process_file(name *C.char, buf *C.char, length C.int) *C.char {
	filename := C.GoString(name)
	src := C.GoBytes(unsafe.Pointer(buf), length)

	mu.Lock()
	e := globalEngine
	mu.Unlock()

	out, err := e.ApplyFile(filename, src)
	if err != nil {
		return nil
	}
	if out == string(src) {
		return nil
	}
	return C.CString(out)
}

// is_modified reports whether any loaded patch has an AFFECT block whose
// file pattern matches name.
//
//export is_modified
func is_modified(name *C.char) C.int {
	filename := C.GoString(name)
	mu.Lock()
	defer mu.Unlock()
	if globalEngine.Affects(filename) {
		return 1
	}
	return 0
}

// start_saving_thread is idempotent: the first call spawns the hashtab
// exporter goroutine if QMLDIFF_HASHTAB_CREATE is set, every later call is
// a no-op.
//
//export start_saving_thread
func start_saving_thread() {
	startOnce.Do(func() {
		path, ok := os.LookupEnv("QMLDIFF_HASHTAB_CREATE")
		if !ok || path == "" {
			return
		}
		mu.Lock()
		globalEngine.SetCreating(true)
		e := globalEngine
		mu.Unlock()

		exporter = engine.NewExporter(e, path, nil)
		go exporter.Run(context.Background())
	})
}

// load_rules replaces the global hash-generation rule set parsed from an
// in-memory hashrules document.
//
//export load_rules
func load_rules(rules *C.char) C.int {
	doc := C.GoString(rules)
	rs, err := hashtab.ParseRules(doc)
	if err != nil {
		return -1
	}
	mu.Lock()
	globalRules = rs
	mu.Unlock()
	return 0
}

func main() {}
