// Package qmlparse implements the QML recursive-descent parser: token
// stream to AST. JS expressions are treated as opaque token streams whose
// only structural requirement is balanced {}, (), [].
package qmlparse

import (
	"fmt"

	"github.com/oxhq/qmldiff/internal/qmlast"
	"github.com/oxhq/qmldiff/internal/qmltoken"
)

// ParseError reports a parse failure with its source position.
type ParseError struct {
	Pos      qmltoken.Pos
	Expected string
	Found    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parse error: expected %s, found %s", e.Pos, e.Expected, e.Found)
}

// Parser is a recursive-descent parser over a pre-lexed token buffer. The
// buffer is populated eagerly from the Lexer (rather than pulled token by
// token) so the parser can freely look ahead — the lexer itself remains
// the single-pass, lazy component described in
type Parser struct {
	toks []qmltoken.Token
	pos  int
}

// Parse lexes and parses src into a File.
func Parse(src []byte) (*qmlast.File, error) {
	lx := qmltoken.New(src)
	var toks []qmltoken.Token
	for {
		tok, err := lx.Next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == qmltoken.EOF {
			toks = append(toks, tok)
			break
		}
		toks = append(toks, tok)
	}
	p := &Parser{toks: toks}
	return p.parseFile()
}

// ParseChildren parses src as a bare sequence of object children — the
// form a SLOT/TEMPLATE body or an INSERT/REPLACE fragment takes, with no
// enclosing "Type { ... }" wrapper.
func ParseChildren(src []byte) ([]qmlast.Child, error) {
	lx := qmltoken.New(src)
	var toks []qmltoken.Token
	for {
		tok, err := lx.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == qmltoken.EOF {
			break
		}
	}
	p := &Parser{toks: toks}
	var children []qmlast.Child
	p.skipNewlines()
	for !p.at(qmltoken.EOF) {
		c, err := p.parseChild()
		if err != nil {
			return nil, err
		}
		children = append(children, c)
		p.skipNewlines()
	}
	return children, nil
}

func (p *Parser) cur() qmltoken.Token  { return p.toks[p.pos] }
func (p *Parser) at(k qmltoken.Kind) bool { return p.cur().Kind == k }

func (p *Parser) atSymbol(s string) bool {
	t := p.cur()
	return t.Kind == qmltoken.Symbol && t.Text == s
}

func (p *Parser) atKeyword(s string) bool {
	t := p.cur()
	return t.Kind == qmltoken.Keyword && t.Text == s
}

func (p *Parser) advance() qmltoken.Token {
	t := p.cur()
	if t.Kind != qmltoken.EOF {
		p.pos++
	}
	return t
}

// skipNewlines consumes any run of Newline tokens; newlines are only
// significant where a grammar rule explicitly stops on one.
func (p *Parser) skipNewlines() {
	for p.at(qmltoken.Newline) {
		p.advance()
	}
}

// peekSkipNL returns the nth token (0-based, 0 == current) after skipping
// over Newline tokens, without consuming anything.
func (p *Parser) peekSkipNL(n int) qmltoken.Token {
	idx := p.pos
	skipped := -1
	for idx < len(p.toks) {
		if p.toks[idx].Kind == qmltoken.Newline {
			idx++
			continue
		}
		skipped++
		if skipped == n {
			return p.toks[idx]
		}
		idx++
	}
	return qmltoken.Token{Kind: qmltoken.EOF}
}

func (p *Parser) expectSymbol(s string) error {
	p.skipNewlines()
	if !p.atSymbol(s) {
		return &ParseError{Pos: p.cur().Pos, Expected: "'" + s + "'", Found: describe(p.cur())}
	}
	p.advance()
	return nil
}

func (p *Parser) expectIdentLike() (qmlast.Ident, error) {
	t := p.cur()
	switch t.Kind {
	case qmltoken.Identifier, qmltoken.Keyword:
		p.advance()
		return qmlast.Lit(t.Text), nil
	case qmltoken.HashRef:
		p.advance()
		return qmlast.HashIdent(t.Hash), nil
	default:
		return qmlast.Ident{}, &ParseError{Pos: t.Pos, Expected: "an identifier", Found: describe(t)}
	}
}

func describe(t qmltoken.Token) string {
	if t.Kind == qmltoken.EOF {
		return "end of file"
	}
	return fmt.Sprintf("%s %q", t.Kind, t.Text)
}

func (p *Parser) parseFile() (*qmlast.File, error) {
	f := &qmlast.File{}
	p.skipNewlines()
	for p.atKeyword("import") {
		imp, err := p.parseImport()
		if err != nil {
			return nil, err
		}
		f.Imports = append(f.Imports, imp)
		p.skipNewlines()
	}
	for !p.at(qmltoken.EOF) {
		obj, err := p.parseTopLevelObject()
		if err != nil {
			return nil, err
		}
		f.Objects = append(f.Objects, obj)
		p.skipNewlines()
	}
	return f, nil
}

func (p *Parser) parseImport() (qmlast.Import, error) {
	p.advance() // 'import'
	p.skipNewlines()
	name, err := p.parseDottedName()
	if err != nil {
		return qmlast.Import{}, err
	}
	p.skipNewlines()
	if !p.at(qmltoken.Number) {
		return qmlast.Import{}, &ParseError{Pos: p.cur().Pos, Expected: "a version number", Found: describe(p.cur())}
	}
	version := p.advance().Text
	imp := qmlast.Import{Name: name, Version: version}
	p.skipNewlines()
	if p.cur().Kind == qmltoken.Identifier && p.cur().Text == "as" {
		p.advance()
		p.skipNewlines()
		alias, err := p.expectIdentLike()
		if err != nil {
			return qmlast.Import{}, err
		}
		imp.Alias = alias.Literal
	}
	p.terminateStatement()
	return imp, nil
}

// parseDottedName reads Ident ('.' Ident)*.
func (p *Parser) parseDottedName() (string, error) {
	first, err := p.expectIdentLike()
	if err != nil {
		return "", err
	}
	name := first.Literal
	for p.atSymbol(".") {
		p.advance()
		next, err := p.expectIdentLike()
		if err != nil {
			return "", err
		}
		name += "." + next.Literal
	}
	return name, nil
}

// terminateStatement consumes a single trailing newline, if present; it is
// not an error for a statement to be immediately followed by another on
// the same logical position (e.g. end of file or a closing brace).
func (p *Parser) terminateStatement() {
	if p.at(qmltoken.Newline) {
		p.advance()
	}
}
