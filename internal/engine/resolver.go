package engine

import (
	"github.com/oxhq/qmldiff/internal/hashtab"
	"github.com/oxhq/qmldiff/internal/qmlast"
)

// resolver adapts hashtab.Table to qmlemit.Resolver. Child/stream slot
// references are never resolved here: internal/applier expands every
// INSERT SLOT/TEMPLATE reference into concrete AST nodes during patch
// application, so by the time a file reaches the emitter only genuinely
// unbound references remain, which qmlemit reports as emission errors (or
// retains verbatim, if configured to).
type resolver struct {
	table *hashtab.Table
}

func (r *resolver) LookupHash(h uint64) (string, bool) {
	return r.table.Lookup(h)
}

func (r *resolver) ResolveChildSlot(name string) ([]qmlast.Child, bool) {
	return nil, false
}

func (r *resolver) ResolveStreamSlot(name string) (qmlast.TokenStream, bool) {
	return qmlast.TokenStream{}, false
}
