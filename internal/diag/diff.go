package diag

import (
	"strings"

	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"
)

// UnifiedDiff renders a unified diff between orig and modified, optionally
// colorized for terminal output (apply-diffs' preview/dry-run mode).
func UnifiedDiff(filename, orig, modified string, context int, colorize bool) string {
	d := difflib.UnifiedDiff{
		A:        difflib.SplitLines(orig),
		B:        difflib.SplitLines(modified),
		FromFile: filename,
		ToFile:   filename + " (patched)",
		Context:  context,
	}
	text, err := difflib.GetUnifiedDiffString(d)
	if err != nil {
		return "(diff error: " + err.Error() + ")"
	}
	if !colorize {
		return text
	}
	return colorizeDiff(text)
}

func colorizeDiff(text string) string {
	var b strings.Builder
	for _, line := range strings.SplitAfter(text, "\n") {
		switch {
		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			b.WriteString(color.GreenString("%s", line))
		case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
			b.WriteString(color.RedString("%s", line))
		case strings.HasPrefix(line, "@@"):
			b.WriteString(color.CyanString("%s", line))
		default:
			b.WriteString(line)
		}
	}
	return b.String()
}
