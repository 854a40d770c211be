package qmlast

import (
	"strings"

	"github.com/oxhq/qmldiff/internal/qmltoken"
)

// StreamElem is one element of a TokenStream: either a leaf token or a
// balanced bracketed Group that recurses to preserve structure.
type StreamElem struct {
	Token qmltoken.Token
	Group *Group
}

// IsGroup reports whether this element is a bracketed group.
func (e StreamElem) IsGroup() bool { return e.Group != nil }

// Group is a balanced `{}`, `()`, or `[]` run, retained as nested elements
// rather than flattened, so the inner rewriter compares it as a single
// element and never matches partway into its interior.
type Group struct {
	Open, Close string
	Elems       []StreamElem
}

// TokenStream is an ordered, possibly-nested sequence of lexical tokens:
// identifiers, literals, punctuation, balanced groups, slot references, and
// hash references.
type TokenStream struct {
	Elems []StreamElem
}

// Serialize renders the stream as literal source text, with the minimum
// whitespace needed to keep adjacent word-like tokens from merging back
// into one token on re-lex. Hash/slot reference tokens are rendered in
// their literal `~&N&~`/`~{name}~` form, unresolved — callers needing
// hashtab/slot resolution use internal/qmlemit instead. This is the
// canonical form the selector engine (internal/selector) compares
// `.prop=value`/`.prop~value` predicates against.
func (ts TokenStream) Serialize() string {
	var b strings.Builder
	writeElems(&b, ts.Elems)
	return b.String()
}

func writeElems(b *strings.Builder, elems []StreamElem) {
	prev := ""
	write := func(text string) {
		if prev != "" && needsSpace(prev, text) {
			b.WriteByte(' ')
		}
		b.WriteString(text)
		prev = text
	}
	for _, el := range elems {
		if el.IsGroup() {
			write(el.Group.Open)
			writeElems(b, el.Group.Elems)
			b.WriteString(el.Group.Close)
			prev = el.Group.Close
			continue
		}
		write(el.Token.Text)
	}
}

func needsSpace(prev, next string) bool {
	if prev == "" || next == "" {
		return false
	}
	return isWordByte(prev[len(prev)-1]) && isWordByte(next[0])
}

func isWordByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// Flatten returns the stream as a single non-recursive slice of tokens,
// with group delimiters represented as Symbol tokens — used by the
// selector engine's `.prop=value`/`.prop~value` serialization and by
// structural equality comparisons in the inner rewriter.
func (ts TokenStream) Flatten() []qmltoken.Token {
	var out []qmltoken.Token
	var walk func(elems []StreamElem)
	walk = func(elems []StreamElem) {
		for _, e := range elems {
			if e.IsGroup() {
				out = append(out, qmltoken.Token{Kind: qmltoken.Symbol, Text: e.Group.Open})
				walk(e.Group.Elems)
				out = append(out, qmltoken.Token{Kind: qmltoken.Symbol, Text: e.Group.Close})
				continue
			}
			out = append(out, e.Token)
		}
	}
	walk(ts.Elems)
	return out
}
