// Package diffhash implements the `hash-diffs` CLI command:
// rewriting a diff source file's identifiers into their `~&hash&~` hashed
// form, or reversing that rewrite given a populated hashtab. It reuses
// internal/qmltoken's lexer (via internal/diffsyntax's keyword set) rather
// than re-lexing with a second scanner, and rewrites by byte-offset splice
// rather than building a new diffsyntax emitter, since only Identifier and
// HashRef tokens ever change shape — everything else is copied verbatim.
package diffhash

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oxhq/qmldiff/internal/diffsyntax"
	"github.com/oxhq/qmldiff/internal/hashtab"
	"github.com/oxhq/qmldiff/internal/qmltoken"
)

// Forward replaces every bare Identifier token in src with its hashed
// `~&hash&~` form. String, Symbol, Keyword, Number, Comment and Newline
// tokens are copied through unchanged: only QML identifier positions are
// rehashed, since rehashing a literal property *value* string (e.g.
// `color: "red"`) would corrupt a token-stream round-trip rather than
// obfuscate a name.
func Forward(src []byte) (string, error) {
	return rewrite(src, func(tok qmltoken.Token) (string, error) {
		if tok.Kind != qmltoken.Identifier {
			return tok.Text, nil
		}
		return hashRefText(hashtab.Hash(tok.Text)), nil
	})
}

// Reverse replaces every `~&hash&~` HashRef token in src with the literal
// string table resolves it to, leaving unresolved hashes in their hashed
// form (there is nothing safe to substitute without the original name).
func Reverse(src []byte, table *hashtab.Table) (string, error) {
	return rewrite(src, func(tok qmltoken.Token) (string, error) {
		if tok.Kind != qmltoken.HashRef {
			return tok.Text, nil
		}
		if s, ok := table.Lookup(tok.Hash); ok {
			return s, nil
		}
		return tok.Text, nil
	})
}

func hashRefText(h uint64) string {
	return "~&" + strconv.FormatUint(h, 10) + "&~"
}

func rewrite(src []byte, replace func(qmltoken.Token) (string, error)) (string, error) {
	lx := qmltoken.NewWithKeywords(src, diffsyntax.Keywords)
	var b strings.Builder
	last := 0
	for {
		tok, err := lx.Next()
		if err != nil {
			return "", fmt.Errorf("diffhash: %w", err)
		}
		if tok.Kind == qmltoken.EOF {
			break
		}
		if tok.Pos.Offset > last {
			b.Write(src[last:tok.Pos.Offset])
		}
		text, err := replace(tok)
		if err != nil {
			return "", err
		}
		b.WriteString(text)
		last = tok.Pos.Offset + len(tok.Text)
	}
	if last < len(src) {
		b.Write(src[last:])
	}
	return b.String(), nil
}
