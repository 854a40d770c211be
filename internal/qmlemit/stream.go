package qmlemit

import (
	"fmt"
	"strings"

	"github.com/oxhq/qmldiff/internal/qmlast"
	"github.com/oxhq/qmldiff/internal/qmltoken"
)

// emitStream serializes a TokenStream, inserting the minimum whitespace
// needed to keep adjacent word-like tokens (identifiers, numbers,
// keywords, hash references) from merging back into a single token on
// re-lex, and resolving any HashRef/SlotRef tokens found within it.
func (e *Emitter) emitStream(b *strings.Builder, ts qmlast.TokenStream) error {
	return e.emitElems(b, ts.Elems)
}

func (e *Emitter) emitElems(b *strings.Builder, elems []qmlast.StreamElem) error {
	var prevText string
	emit := func(text string) {
		if prevText != "" && needsSpace(prevText, text) {
			b.WriteByte(' ')
		}
		b.WriteString(text)
		prevText = text
	}

	for _, el := range elems {
		if el.IsGroup() {
			if prevText != "" && needsSpace(prevText, el.Group.Open) {
				b.WriteByte(' ')
			}
			b.WriteString(el.Group.Open)
			if err := e.emitElems(b, el.Group.Elems); err != nil {
				return err
			}
			b.WriteString(el.Group.Close)
			prevText = el.Group.Close
			continue
		}
		tok := el.Token
		switch tok.Kind {
		case qmltoken.HashRef:
			if e.Resolver != nil {
				if s, ok := e.Resolver.LookupHash(tok.Hash); ok {
					emit(s)
					continue
				}
			}
			emit(fmt.Sprintf("~&%d&~", tok.Hash))
		case qmltoken.SlotRef:
			if e.Resolver != nil {
				if stream, ok := e.Resolver.ResolveStreamSlot(tok.Name); ok {
					if prevText != "" && needsSpace(prevText, "(") {
						b.WriteByte(' ')
					}
					if err := e.emitElems(b, stream.Elems); err != nil {
						return err
					}
					prevText = ")" // force a boundary after slot content
					continue
				}
			}
			if e.RetainUnboundSlots {
				emit(fmt.Sprintf("~{%s}~", tok.Name))
				continue
			}
			return &EmitError{Kind: "slot", Name: tok.Name}
		default:
			emit(tok.Text)
		}
	}
	return nil
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
