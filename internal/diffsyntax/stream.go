package diffsyntax

import (
	"github.com/oxhq/qmldiff/internal/qmlast"
	"github.com/oxhq/qmldiff/internal/qmltoken"
)

var closers = map[string]string{"{": "}", "(": ")", "[": "]"}
var openers = map[string]bool{"{": true, "(": true, "[": true}

// parseGroupContents consumes tokens up to (and including) the closing
// bracket matching the opener just consumed by the caller, returning the
// enclosed elements. Mirrors internal/qmlparse's balanced-group parser.
func (p *parser) parseGroupContents(close string) ([]qmlast.StreamElem, error) {
	var elems []qmlast.StreamElem
	for {
		t := p.cur()
		if t.Kind == qmltoken.EOF {
			return nil, &ParseError{Pos: t.Pos, Expected: close}
		}
		if t.Kind == qmltoken.Symbol && t.Text == close {
			p.advance()
			return elems, nil
		}
		if t.Kind == qmltoken.Symbol && openers[t.Text] {
			open := t.Text
			p.advance()
			inner, err := p.parseGroupContents(closers[open])
			if err != nil {
				return nil, err
			}
			elems = append(elems, qmlast.StreamElem{Group: &qmlast.Group{Open: open, Close: closers[open], Elems: inner}})
			continue
		}
		p.advance()
		elems = append(elems, qmlast.StreamElem{Token: t})
	}
}

// parsePrimaryStream parses one predicate value or inner-rewriter literal:
// a braced/bracketed group, a "STREAM <delim> ... <delim>" run, or a
// single bare token.
func (p *parser) parsePrimaryStream() (qmlast.TokenStream, error) {
	t := p.cur()
	if t.Kind == qmltoken.Symbol && openers[t.Text] {
		open := t.Text
		p.advance()
		elems, err := p.parseGroupContents(closers[open])
		if err != nil {
			return qmlast.TokenStream{}, err
		}
		return qmlast.TokenStream{Elems: elems}, nil
	}
	if t.Kind == qmltoken.Keyword && t.Text == "STREAM" {
		p.advance()
		delim := p.cur()
		if delim.Kind == qmltoken.EOF || delim.Kind == qmltoken.Newline {
			return qmlast.TokenStream{}, &ParseError{Pos: delim.Pos, Expected: "stream delimiter token"}
		}
		p.advance()
		var elems []qmlast.StreamElem
		for {
			cur := p.cur()
			if cur.Kind == qmltoken.EOF {
				return qmlast.TokenStream{}, &ParseError{Pos: cur.Pos, Expected: "closing " + delim.Text + " for STREAM"}
			}
			if cur.Text == delim.Text && cur.Kind == delim.Kind {
				p.advance()
				return qmlast.TokenStream{Elems: elems}, nil
			}
			if cur.Kind == qmltoken.Symbol && openers[cur.Text] {
				open := cur.Text
				p.advance()
				inner, err := p.parseGroupContents(closers[open])
				if err != nil {
					return qmlast.TokenStream{}, err
				}
				elems = append(elems, qmlast.StreamElem{Group: &qmlast.Group{Open: open, Close: closers[open], Elems: inner}})
				continue
			}
			p.advance()
			elems = append(elems, qmlast.StreamElem{Token: cur})
		}
	}
	if t.Kind == qmltoken.EOF || t.Kind == qmltoken.Newline {
		return qmlast.TokenStream{}, &ParseError{Pos: t.Pos, Expected: "a value"}
	}
	p.advance()
	return qmlast.TokenStream{Elems: []qmlast.StreamElem{{Token: t}}}, nil
}

// parseBraceSpan expects the current token to be the opening '{' of a raw
// QML fragment (an INSERT/REPLACE body, or a SLOT/TEMPLATE body) and
// returns its exact source text, un-relexed, leaving the cursor just past
// the matching '}'.
func (p *parser) parseBraceSpan() (string, error) {
	open := p.cur()
	if !(open.Kind == qmltoken.Symbol && open.Text == "{") {
		return "", &ParseError{Pos: open.Pos, Expected: "{"}
	}
	contentStart := open.Pos.Offset + 1
	p.advance()
	depth := 1
	for {
		t := p.cur()
		if t.Kind == qmltoken.EOF {
			return "", &ParseError{Pos: t.Pos, Expected: "}"}
		}
		if t.Kind == qmltoken.Symbol && t.Text == "{" {
			depth++
			p.advance()
			continue
		}
		if t.Kind == qmltoken.Symbol && t.Text == "}" {
			depth--
			if depth == 0 {
				text := string(p.src[contentStart:t.Pos.Offset])
				p.advance()
				return text, nil
			}
			p.advance()
			continue
		}
		p.advance()
	}
}
