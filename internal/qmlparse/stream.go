package qmlparse

import (
	"github.com/oxhq/qmldiff/internal/qmlast"
	"github.com/oxhq/qmldiff/internal/qmltoken"
)

var closers = map[string]string{"{": "}", "(": ")", "[": "]"}
var openers = map[string]bool{"{": true, "(": true, "[": true}

// parseTokenStreamUntilBreak reads a TokenStream at depth 0 until a
// Newline token or a closing bracket that would close an *outer* scope
// (i.e. a '}' with no corresponding open seen at this depth): the
// assignment-value-until-newline-or-closing-brace-at-outer-depth rule.
func (p *Parser) parseTokenStreamUntilBreak() (qmlast.TokenStream, error) {
	var elems []qmlast.StreamElem
	for {
		t := p.cur()
		if t.Kind == qmltoken.EOF || t.Kind == qmltoken.Newline {
			break
		}
		if t.Kind == qmltoken.Symbol && (t.Text == "}" || t.Text == ")" || t.Text == "]") {
			break
		}
		if t.Kind == qmltoken.Symbol && openers[t.Text] {
			g, err := p.parseBalancedGroup()
			if err != nil {
				return qmlast.TokenStream{}, err
			}
			elems = append(elems, qmlast.StreamElem{Group: g})
			continue
		}
		elems = append(elems, qmlast.StreamElem{Token: t})
		p.advance()
	}
	return qmlast.TokenStream{Elems: elems}, nil
}

// parseTokenStreamUntilCloseBrace reads a TokenStream until (but not
// consuming) the '}' that closes the *current* scope — used for function
// bodies, whose outer braces are consumed by the caller.
func (p *Parser) parseTokenStreamUntilCloseBrace() (qmlast.TokenStream, error) {
	var elems []qmlast.StreamElem
	for {
		t := p.cur()
		if t.Kind == qmltoken.EOF {
			return qmlast.TokenStream{}, &ParseError{Pos: t.Pos, Expected: "'}'", Found: describe(t)}
		}
		if t.Kind == qmltoken.Symbol && t.Text == "}" {
			break
		}
		if t.Kind == qmltoken.Symbol && openers[t.Text] {
			g, err := p.parseBalancedGroup()
			if err != nil {
				return qmlast.TokenStream{}, err
			}
			elems = append(elems, qmlast.StreamElem{Group: g})
			continue
		}
		elems = append(elems, qmlast.StreamElem{Token: t})
		p.advance()
	}
	return qmlast.TokenStream{Elems: elems}, nil
}

// parseBalancedGroup consumes an opening bracket, its contents (recursing
// for nested brackets), and the matching closing bracket.
func (p *Parser) parseBalancedGroup() (*qmlast.Group, error) {
	open := p.advance()
	want := closers[open.Text]
	var elems []qmlast.StreamElem
	for {
		t := p.cur()
		if t.Kind == qmltoken.EOF {
			return nil, &ParseError{Pos: open.Pos, Expected: "'" + want + "' to close '" + open.Text + "'", Found: "end of file"}
		}
		if t.Kind == qmltoken.Newline {
			p.advance()
			continue
		}
		if t.Kind == qmltoken.Symbol && t.Text == want {
			p.advance()
			return &qmlast.Group{Open: open.Text, Close: want, Elems: elems}, nil
		}
		if t.Kind == qmltoken.Symbol && openers[t.Text] {
			g, err := p.parseBalancedGroup()
			if err != nil {
				return nil, err
			}
			elems = append(elems, qmlast.StreamElem{Group: g})
			continue
		}
		elems = append(elems, qmlast.StreamElem{Token: t})
		p.advance()
	}
}
