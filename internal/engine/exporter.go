package engine

import (
	"context"
	"strings"
	"time"

	"github.com/oxhq/qmldiff/internal/atomicio"
	"github.com/oxhq/qmldiff/internal/hashstore"
)

// ExportInterval is the exporter's snapshot period.
const ExportInterval = 60 * time.Second

// Exporter periodically snapshots an Engine's hashtab to a text file,
// optionally mirroring it to an internal/hashstore.Store, via a ticker loop
// that checks a dirty flag before re-serializing.
type Exporter struct {
	engine *Engine
	path   string
	store  *hashstore.Store
	writer *atomicio.Writer
}

// NewExporter builds an Exporter writing e's hashtab to path, additionally
// pushing to store if non-nil.
func NewExporter(e *Engine, path string, store *hashstore.Store) *Exporter {
	return &Exporter{
		engine: e,
		path:   path,
		store:  store,
		writer: atomicio.New(atomicio.DefaultConfig()),
	}
}

// Run blocks, exporting a snapshot every ExportInterval until ctx is
// cancelled. It never mutates patches or the AST; it only
// reads the hashtab under the engine's lock long enough to copy it.
func (x *Exporter) Run(ctx context.Context) error {
	ticker := time.NewTicker(ExportInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := x.exportOnce(ctx); err != nil {
				return err
			}
		}
	}
}

func (x *Exporter) exportOnce(ctx context.Context) error {
	x.engine.mu.Lock()
	table := x.engine.table
	dirty := table.Dirty()
	x.engine.mu.Unlock()

	if !dirty {
		return nil
	}

	var b strings.Builder
	if err := table.WriteTo(&b); err != nil {
		return err
	}
	if err := x.writer.WriteFile(x.path, b.String()); err != nil {
		return err
	}
	if x.store != nil {
		if err := x.store.Sync(ctx, table.Snapshot()); err != nil {
			return err
		}
	}
	table.ClearDirty()
	return nil
}
