package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oxhq/qmldiff/internal/applier"
)

// Version is overridden at link time via -ldflags; "dev" otherwise.
var Version = "dev"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the qmldiff version and supported patch-language version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "qmldiff %s (patch language v%s)\n", Version, applier.SupportedVersion)
			return nil
		},
	}
}
