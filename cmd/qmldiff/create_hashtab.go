package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oxhq/qmldiff/internal/atomicio"
	"github.com/oxhq/qmldiff/internal/config"
	"github.com/oxhq/qmldiff/internal/diag"
	"github.com/oxhq/qmldiff/internal/engine"
	"github.com/oxhq/qmldiff/internal/walker"
)

// newCreateHashtabCmd implements `create-hashtab <root> [out]`: walk root,
// parse every .qml file, hash the identifiers that Engine.HashIdentifiers
// records, write the hashtab.
func newCreateHashtabCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-hashtab <root> [out]",
		Short: "Walk root, hashing every QML identifier into a hashtab file",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromFlags(cmd.Flags())
			if err != nil {
				return newUsageError("reading flags: %w", err)
			}

			root := args[0]
			out := cfg.HashtabPath
			if len(args) == 2 {
				out = args[1]
			}

			if _, statErr := os.Stat(out); statErr == nil && !cfg.HashtabCreate {
				return newUsageError("hashtab %s already exists, pass --create to overwrite", out)
			}

			e := engine.New()
			e.SetCreating(true)

			files, err := walker.Collect(context.Background(), walker.New(), walker.Scope{
				Root:    root,
				Include: []string{"**/*.qml"},
			})
			if err != nil {
				return newUsageError("walking %s: %w", root, err)
			}

			for _, f := range files {
				src, readErr := os.ReadFile(f)
				if readErr != nil {
					diagErr := diag.IOFailure(f, readErr)
					cmd.PrintErrln(errColor(diagErr.Error()))
					continue
				}
				if hashErr := e.HashIdentifiers(f, src); hashErr != nil {
					cmd.PrintErrln(errColor(hashErr.Error()))
					continue
				}
			}

			w := atomicio.New(atomicio.DefaultConfig())
			var b strings.Builder
			if writeErr := e.Table().WriteTo(&b); writeErr != nil {
				return writeErr
			}
			if writeErr := w.WriteFile(out, b.String()); writeErr != nil {
				return writeErr
			}

			cmd.Println(okColor(fmt.Sprintf(
				"hashed %d identifiers across %d files -> %s",
				e.Table().Len(), len(files), out,
			)))
			return nil
		},
	}
	return cmd
}
