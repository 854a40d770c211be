// Command qmldiff applies structural patches to QML source trees:
// create-hashtab, hash-diffs, and apply-diffs, built as thin cobra
// callers over internal/engine.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oxhq/qmldiff/internal/config"
)

// Exit codes: 0 success, 1 usage error, 2 parse/patch error.
const (
	exitSuccess    = 0
	exitUsageError = 1
	exitPatchError = 2
)

func main() {
	config.LoadDotEnv()

	root := &cobra.Command{
		Use:           "qmldiff",
		Short:         "Structural patch engine for QML source trees",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		newCreateHashtabCmd(),
		newHashDiffsCmd(),
		newApplyDiffsCmd(),
		newVersionCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errColor(err.Error()))
		os.Exit(exitCodeFor(err))
	}
}
