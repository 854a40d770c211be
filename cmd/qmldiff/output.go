package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/oxhq/qmldiff/internal/diag"
)

var (
	colorEnabled = isTerminal(os.Stdout)
	errColor     = colorFunc(color.FgRed)
	warnColor    = colorFunc(color.FgYellow)
	okColor      = colorFunc(color.FgGreen)
)

func colorFunc(attr color.Attribute) func(string) string {
	c := color.New(attr).SprintFunc()
	return func(s string) string {
		if !colorEnabled {
			return s
		}
		return c(s)
	}
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// usageError marks an error as a CLI usage mistake (exit code 1) rather
// than a parse/patch failure (exit code 2).
type usageError struct{ error }

func newUsageError(format string, args ...any) error {
	return usageError{fmt.Errorf(format, args...)}
}

// exitCodeFor maps an error to exit codes: 0 success (a nil error), 1
// usage error, 2 parse/patch error.
func exitCodeFor(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ue usageError
	if errors.As(err, &ue) {
		return exitUsageError
	}
	var diagErr *diag.Diagnostic
	if errors.As(err, &diagErr) {
		return exitPatchError
	}
	return exitUsageError
}
