package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/oxhq/qmldiff/internal/atomicio"
	"github.com/oxhq/qmldiff/internal/diffhash"
	"github.com/oxhq/qmldiff/internal/engine"
)

// newHashDiffsCmd implements `hash-diffs <hashtab> <diff>... [-r]`: rewrite
// diff files in place, replacing identifiers with their hashed forms; -r
// reverses using the loaded hashtab.
func newHashDiffsCmd() *cobra.Command {
	var reverse bool
	cmd := &cobra.Command{
		Use:   "hash-diffs <hashtab> <diff>...",
		Short: "Rewrite diff files' identifiers into (or out of) hashed form",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			hashtabPath, diffPaths := args[0], args[1:]

			e := engine.New()
			if reverse {
				if err := e.LoadHashtab(hashtabPath); err != nil {
					return newUsageError("loading hashtab %s: %w", hashtabPath, err)
				}
			}

			w := atomicio.New(atomicio.DefaultConfig())
			for _, path := range diffPaths {
				src, err := os.ReadFile(path)
				if err != nil {
					return newUsageError("reading %s: %w", path, err)
				}

				var out string
				if reverse {
					out, err = diffhash.Reverse(src, e.Table())
				} else {
					out, err = diffhash.Forward(src)
				}
				if err != nil {
					cmd.PrintErrln(errColor(err.Error()))
					continue
				}
				if err := w.WriteFile(path, out); err != nil {
					return err
				}
				cmd.Println(okColor(path))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&reverse, "reverse", "r", false, "reverse: resolve hashed forms back to literal identifiers")
	return cmd
}
