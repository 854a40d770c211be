package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/oxhq/qmldiff/internal/atomicio"
	"github.com/oxhq/qmldiff/internal/config"
	"github.com/oxhq/qmldiff/internal/diag"
	"github.com/oxhq/qmldiff/internal/engine"
	"github.com/oxhq/qmldiff/internal/walker"
)

// result is one apply-diffs JSON record: per-file success, byte-count, and
// error fields, trimmed to what QMLDiff tracks for a whole-file patch.
type result struct {
	File         string `json:"file"`
	Success      bool   `json:"success"`
	ChangedBytes int    `json:"changed_bytes,omitempty"`
	Error        string `json:"error,omitempty"`
}

// newApplyDiffsCmd implements `apply-diffs [--hashtab H] <src> <dst>
// <diff>... [-f] [-c]`.
func newApplyDiffsCmd() *cobra.Command {
	var flatten, clearDst bool
	cmd := &cobra.Command{
		Use:   "apply-diffs <src> <dst> <diff>...",
		Short: "Apply diff files to every QML file under src, writing to dst",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromFlags(cmd.Flags())
			if err != nil {
				return newUsageError("reading flags: %w", err)
			}
			src, dst, diffPaths := args[0], args[1], args[2:]

			e := engine.New()
			if cfg.HashtabPath != "" {
				if _, statErr := os.Stat(cfg.HashtabPath); statErr == nil {
					if loadErr := e.LoadHashtab(cfg.HashtabPath); loadErr != nil {
						return newUsageError("loading hashtab %s: %w", cfg.HashtabPath, loadErr)
					}
				}
			}
			if err := e.LoadPatches(diffPaths); err != nil {
				return newUsageError("loading patches: %w", err)
			}

			if clearDst {
				if err := os.RemoveAll(dst); err != nil {
					return newUsageError("clearing %s: %w", dst, err)
				}
			}
			if err := os.MkdirAll(dst, 0o755); err != nil {
				return newUsageError("creating %s: %w", dst, err)
			}

			files, err := walker.Collect(context.Background(), walker.New(), walker.Scope{
				Root:    src,
				Include: []string{"**/*.qml"},
			})
			if err != nil {
				return newUsageError("walking %s: %w", src, err)
			}

			writer := atomicio.New(atomicio.DefaultConfig())
			var results []result
			hadPatchError := false

			for _, f := range files {
				rec := applyOne(cmd, e, writer, src, dst, f, flatten, cfg)
				if !rec.Success {
					hadPatchError = true
				}
				results = append(results, rec)
			}

			if cfg.JSONOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				for _, rec := range results {
					if err := enc.Encode(rec); err != nil {
						return err
					}
				}
			}

			if hadPatchError {
				return diag.New("", diag.Pos{}, diag.KindIOFailure, "one or more files failed to apply")
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&flatten, "flatten", "f", false, "flatten destination directory structure")
	cmd.Flags().BoolVarP(&clearDst, "clear", "c", false, "clear dst before writing")
	return cmd
}

func applyOne(cmd *cobra.Command, e *engine.Engine, writer *atomicio.Writer, src, dst, file string, flatten bool, cfg *config.Config) result {
	rel, err := filepath.Rel(src, file)
	if err != nil {
		rel = filepath.Base(file)
	}
	destPath := filepath.Join(dst, rel)
	if flatten {
		destPath = filepath.Join(dst, filepath.Base(file))
	}

	original, err := os.ReadFile(file)
	if err != nil {
		cmd.PrintErrln(errColor(diag.IOFailure(file, err).Error()))
		return result{File: file, Success: false, Error: err.Error()}
	}

	out, applyErr := e.ApplyFile(file, original)
	if applyErr != nil {
		// Transactional: the applier has already rolled its own AST back
		// (internal/applier.ApplyFile), so the source passed through here
		// is untouched.
		cmd.PrintErrln(errColor(applyErr.Error()))
		if writeErr := writeDest(writer, destPath, string(original)); writeErr != nil {
			cmd.PrintErrln(errColor(writeErr.Error()))
		}
		return result{File: file, Success: false, Error: applyErr.Error()}
	}

	if cfg.ShowDiff {
		cmd.Println(diag.UnifiedDiff(file, string(original), out, 3, colorEnabled))
	}
	if err := writeDest(writer, destPath, out); err != nil {
		cmd.PrintErrln(errColor(err.Error()))
		return result{File: file, Success: false, Error: err.Error()}
	}

	cmd.Println(okColor(file + " -> " + destPath))
	return result{File: file, Success: true, ChangedBytes: abs(len(out) - len(original))}
}

func writeDest(w *atomicio.Writer, path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return w.WriteFile(path, content)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
