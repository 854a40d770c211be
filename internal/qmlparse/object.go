package qmlparse

import (
	"strconv"

	"github.com/oxhq/qmldiff/internal/qmlast"
	"github.com/oxhq/qmldiff/internal/qmltoken"
)

func (p *Parser) parseTopLevelObject() (*qmlast.Object, error) {
	typ, err := p.expectIdentLike()
	if err != nil {
		return nil, err
	}
	return p.parseObjectBody(typ)
}

// parseObjectBody consumes '{' Child* '}' for an Object whose type has
// already been read.
func (p *Parser) parseObjectBody(typ qmlast.Ident) (*qmlast.Object, error) {
	if err := p.expectSymbol("{"); err != nil {
		return nil, err
	}
	obj := &qmlast.Object{Type: typ}
	p.skipNewlines()
	for !p.atSymbol("}") {
		if p.at(qmltoken.EOF) {
			return nil, &ParseError{Pos: p.cur().Pos, Expected: "'}'", Found: describe(p.cur())}
		}
		child, err := p.parseChild()
		if err != nil {
			return nil, err
		}
		obj.Children = append(obj.Children, child)
		p.skipNewlines()
	}
	p.advance() // '}'
	return obj, nil
}

// parseChild dispatches on lookahead per
func (p *Parser) parseChild() (qmlast.Child, error) {
	t := p.cur()

	switch {
	case t.Kind == qmltoken.SlotRef:
		p.advance()
		p.terminateStatement()
		return &qmlast.SlotReference{Name: t.Name}, nil
	case t.Kind == qmltoken.Keyword && t.Text == "property":
		return p.parsePropertyDecl(false, false)
	case t.Kind == qmltoken.Keyword && (t.Text == "readonly" || t.Text == "default"):
		return p.parseModifiedPropertyDecl()
	case t.Kind == qmltoken.Keyword && t.Text == "signal":
		return p.parseSignal()
	case t.Kind == qmltoken.Keyword && t.Text == "function":
		return p.parseFunction()
	case t.Kind == qmltoken.Keyword && t.Text == "enum":
		return p.parseEnum()
	case t.Kind == qmltoken.HashRef && p.peekSkipNL(1).Kind == qmltoken.Symbol && p.peekSkipNL(1).Text == ":":
		return p.parseNamedOrAssignment()
	case t.Kind == qmltoken.HashRef:
		p.advance()
		p.terminateStatement()
		return &qmlast.HashReference{Hash: t.Hash}, nil
	case t.Kind == qmltoken.Identifier && p.peekSkipNL(1).Kind == qmltoken.Symbol && p.peekSkipNL(1).Text == "{":
		name, _ := p.expectIdentLike()
		obj, err := p.parseObjectBody(name)
		if err != nil {
			return nil, err
		}
		p.terminateStatement()
		return &qmlast.ObjectChild{Object: obj}, nil
	case t.Kind == qmltoken.Identifier || t.Kind == qmltoken.HashRef:
		return p.parseNamedOrAssignment()
	default:
		return nil, &ParseError{Pos: t.Pos, Expected: "a child declaration", Found: describe(t)}
	}
}

func (p *Parser) parseModifiedPropertyDecl() (qmlast.Child, error) {
	readOnly, isDefault := false, false
	for p.at(qmltoken.Keyword) && (p.cur().Text == "readonly" || p.cur().Text == "default") {
		if p.cur().Text == "readonly" {
			readOnly = true
		} else {
			isDefault = true
		}
		p.advance()
	}
	if !p.atKeyword("property") {
		return nil, &ParseError{Pos: p.cur().Pos, Expected: "'property'", Found: describe(p.cur())}
	}
	return p.parsePropertyDecl(readOnly, isDefault)
}

func (p *Parser) parsePropertyDecl(readOnly, isDefault bool) (qmlast.Child, error) {
	p.advance() // 'property'
	typeTok, err := p.expectIdentLike()
	if err != nil {
		return nil, err
	}
	name, err := p.expectIdentLike()
	if err != nil {
		return nil, err
	}
	decl := &qmlast.PropertyDecl{Type: typeTok.Literal, Name: name, ReadOnly: readOnly, Default: isDefault}
	if p.atSymbol(":") {
		p.advance()
		val, err := p.parsePropertyValue()
		if err != nil {
			return nil, err
		}
		decl.HasValue = true
		decl.Value = val
	}
	p.terminateStatement()
	return decl, nil
}

// parseNamedOrAssignment handles `name: Type { ... }`, `name: Foo` (object
// value without braces is not valid QML, so this always resolves to either
// NamedObjectDecl or Assignment), dispatched by lookahead after the ':'.
func (p *Parser) parseNamedOrAssignment() (qmlast.Child, error) {
	name, err := p.expectIdentLike()
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol(":"); err != nil {
		return nil, err
	}
	// `name: Type {` -> NamedObjectDecl
	if (p.at(qmltoken.Identifier) || p.at(qmltoken.HashRef)) &&
		p.peekSkipNL(1).Kind == qmltoken.Symbol && p.peekSkipNL(1).Text == "{" {
		typ, _ := p.expectIdentLike()
		obj, err := p.parseObjectBody(typ)
		if err != nil {
			return nil, err
		}
		p.terminateStatement()
		return &qmlast.NamedObjectDecl{Name: name, Object: obj}, nil
	}
	val, err := p.parsePropertyValue()
	if err != nil {
		return nil, err
	}
	p.terminateStatement()
	return &qmlast.Assignment{Target: name, Value: val}, nil
}

// parsePropertyValue parses the value of a PropertyDecl or Assignment: an
// Object, a NamedObjectDecl, or a TokenStream read until newline or a
// closing brace at outer depth.
func (p *Parser) parsePropertyValue() (qmlast.PropertyValue, error) {
	if (p.at(qmltoken.Identifier) || p.at(qmltoken.HashRef)) &&
		p.peekSkipNL(1).Kind == qmltoken.Symbol && p.peekSkipNL(1).Text == "{" {
		typ, _ := p.expectIdentLike()
		obj, err := p.parseObjectBody(typ)
		if err != nil {
			return qmlast.PropertyValue{}, err
		}
		return qmlast.PropertyValue{Object: obj}, nil
	}
	stream, err := p.parseTokenStreamUntilBreak()
	if err != nil {
		return qmlast.PropertyValue{}, err
	}
	return qmlast.PropertyValue{Stream: &stream}, nil
}

func (p *Parser) parseSignal() (qmlast.Child, error) {
	p.advance() // 'signal'
	name, err := p.expectIdentLike()
	if err != nil {
		return nil, err
	}
	args, err := p.parseArgList()
	if err != nil {
		return nil, err
	}
	p.terminateStatement()
	return &qmlast.Signal{Name: name, Args: args}, nil
}

func (p *Parser) parseFunction() (qmlast.Child, error) {
	p.advance() // 'function'
	name, err := p.expectIdentLike()
	if err != nil {
		return nil, err
	}
	args, err := p.parseArgList()
	if err != nil {
		return nil, err
	}
	p.skipNewlines()
	if err := p.expectSymbol("{"); err != nil {
		return nil, err
	}
	body, err := p.parseTokenStreamUntilCloseBrace()
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol("}"); err != nil {
		return nil, err
	}
	p.terminateStatement()
	return &qmlast.Function{Name: name, Args: args, Body: body}, nil
}

// parseArgList parses a `(` comma-separated argument list `)`. Each
// argument is either `name` or `type name`.
func (p *Parser) parseArgList() ([]qmlast.Arg, error) {
	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	var args []qmlast.Arg
	p.skipNewlines()
	for !p.atSymbol(")") {
		first, err := p.expectIdentLike()
		if err != nil {
			return nil, err
		}
		arg := qmlast.Arg{Name: first.Literal}
		if p.at(qmltoken.Identifier) {
			second, _ := p.expectIdentLike()
			arg = qmlast.Arg{Type: first.Literal, Name: second.Literal}
		}
		args = append(args, arg)
		p.skipNewlines()
		if p.atSymbol(",") {
			p.advance()
			p.skipNewlines()
			continue
		}
		break
	}
	if err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parseEnum() (qmlast.Child, error) {
	p.advance() // 'enum'
	name, err := p.expectIdentLike()
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol("{"); err != nil {
		return nil, err
	}
	enum := &qmlast.Enum{Name: name}
	next := 0
	p.skipNewlines()
	for !p.atSymbol("}") {
		pairName, err := p.expectIdentLike()
		if err != nil {
			return nil, err
		}
		val := next
		if p.atSymbol("=") {
			p.advance()
			if !p.at(qmltoken.Number) {
				return nil, &ParseError{Pos: p.cur().Pos, Expected: "an integer", Found: describe(p.cur())}
			}
			n, err := strconv.Atoi(p.advance().Text)
			if err != nil {
				return nil, &ParseError{Pos: p.cur().Pos, Expected: "an integer", Found: describe(p.cur())}
			}
			val = n
		}
		enum.Values = append(enum.Values, qmlast.EnumPair{Name: pairName.Literal, Value: val})
		next = val + 1
		p.skipNewlines()
		if p.atSymbol(",") {
			p.advance()
			p.skipNewlines()
		}
	}
	p.advance() // '}'
	p.terminateStatement()
	return enum, nil
}
