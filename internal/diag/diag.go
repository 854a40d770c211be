// Package diag implements QMLDiff's error taxonomy and diagnostic
// rendering: a closed set of error kinds, a single-line
// "<file>:<line>:<col>: <kind>: <detail>" formatter, and unified-diff
// rendering for apply-diffs' preview output.
package diag

import "fmt"

// Kind is one of the closed set of diagnostic kinds names.
type Kind string

const (
	KindLexError           Kind = "lex-error"
	KindParseError         Kind = "parse-error"
	KindSelectorNoMatch    Kind = "selector-no-match"
	KindSelectorAmbiguous  Kind = "selector-ambiguous"
	KindTypeMismatch       Kind = "type-mismatch"
	KindVersionUnsupported Kind = "version-unsupported"
	KindIOFailure          Kind = "io-failure"
	KindHashtabMissing     Kind = "hashtab-missing"
)

// Pos is the position a Diagnostic is anchored to. Line/Col are 1-based;
// zero values are rendered as "-" when no source position applies (e.g. an
// IOFailure has no line/col to report).
type Pos struct {
	Line, Col int
}

func (p Pos) String() string {
	if p.Line == 0 {
		return "-"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Diagnostic is one reportable failure. It implements error so it can be
// returned and wrapped like any other Go error, while still carrying the
// structured fields the CLI's formatter and JSON result records need.
type Diagnostic struct {
	File   string
	Pos    Pos
	Kind   Kind
	Detail string
}

// Error renders the diagnostic as "<file>:<line>:<col>: <kind>: <detail>",
// the single-line format specifies for CLI and log output.
func (d *Diagnostic) Error() string {
	file := d.File
	if file == "" {
		file = "-"
	}
	return fmt.Sprintf("%s:%s: %s: %s", file, d.Pos, d.Kind, d.Detail)
}

func New(file string, pos Pos, kind Kind, detail string) *Diagnostic {
	return &Diagnostic{File: file, Pos: pos, Kind: kind, Detail: detail}
}

func Lex(file string, line, col int, detail string) *Diagnostic {
	return New(file, Pos{line, col}, KindLexError, detail)
}

func Parse(file string, line, col int, detail string) *Diagnostic {
	return New(file, Pos{line, col}, KindParseError, detail)
}

func NoMatch(file, selector string) *Diagnostic {
	return New(file, Pos{}, KindSelectorNoMatch, "selector matched no node: "+selector)
}

func Ambiguous(file, selector string, n int) *Diagnostic {
	return New(file, Pos{}, KindSelectorAmbiguous,
		fmt.Sprintf("selector matched %d nodes, expected exactly one: %s", n, selector))
}

func TypeMismatch(file, detail string) *Diagnostic {
	return New(file, Pos{}, KindTypeMismatch, detail)
}

func VersionUnsupported(file, got, want string) *Diagnostic {
	return New(file, Pos{}, KindVersionUnsupported,
		fmt.Sprintf("patch targets version %s, this build supports %s", got, want))
}

func IOFailure(file string, err error) *Diagnostic {
	return New(file, Pos{}, KindIOFailure, err.Error())
}

func HashtabMissing(path string) *Diagnostic {
	return New(path, Pos{}, KindHashtabMissing, "hashtab file not found: "+path)
}
