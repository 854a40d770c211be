package diffsyntax

import (
	"fmt"

	"github.com/oxhq/qmldiff/internal/qmlast"
	"github.com/oxhq/qmldiff/internal/qmltoken"
)

// ParseError reports a diff-source syntax error.
type ParseError struct {
	Pos      qmltoken.Pos
	Expected string
	Found    string
}

func (e *ParseError) Error() string {
	if e.Found != "" {
		return fmt.Sprintf("%s: expected %s, found %s", e.Pos, e.Expected, e.Found)
	}
	return fmt.Sprintf("%s: expected %s", e.Pos, e.Expected)
}

// Loader resolves a LOAD directive's path to that file's contents, so the
// parser can inline it"). Relative-path resolution is the loader's responsibility.
type Loader func(path string) ([]byte, error)

type parser struct {
	src  []byte
	toks []qmltoken.Token
	pos  int
	load Loader
}

// Parse parses diff source with no LOAD support; encountering a LOAD
// directive is a ParseError.
func Parse(src []byte) (*Program, error) {
	return ParseWithLoader(src, nil)
}

// ParseWithLoader parses diff source, inlining any LOAD directives via load.
func ParseWithLoader(src []byte, load Loader) (*Program, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, toks: toks, load: load}
	return p.parseProgram()
}

func (p *parser) cur() qmltoken.Token { return p.toks[p.pos] }

func (p *parser) advance() qmltoken.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) atKeyword(kw string) bool {
	t := p.cur()
	return t.Kind == qmltoken.Keyword && t.Text == kw
}

func (p *parser) atSymbol(s string) bool {
	t := p.cur()
	return t.Kind == qmltoken.Symbol && t.Text == s
}

func (p *parser) skipNewlines() {
	for p.cur().Kind == qmltoken.Newline {
		p.advance()
	}
}

func (p *parser) expectKeyword(kw string) error {
	if !p.atKeyword(kw) {
		return &ParseError{Pos: p.cur().Pos, Expected: kw, Found: describe(p.cur())}
	}
	p.advance()
	return nil
}

func (p *parser) expectSymbol(s string) error {
	if !p.atSymbol(s) {
		return &ParseError{Pos: p.cur().Pos, Expected: s, Found: describe(p.cur())}
	}
	p.advance()
	return nil
}

func (p *parser) expectIdent() (string, error) {
	t := p.cur()
	if t.Kind != qmltoken.Identifier && t.Kind != qmltoken.Keyword {
		return "", &ParseError{Pos: t.Pos, Expected: "an identifier", Found: describe(t)}
	}
	p.advance()
	return t.Text, nil
}

func describe(t qmltoken.Token) string {
	if t.Kind == qmltoken.EOF {
		return "end of input"
	}
	if t.Kind == qmltoken.Newline {
		return "newline"
	}
	return t.Text
}

// endOf consumes "END <kw>" and reports an error naming kw if it isn't
// found next.
func (p *parser) endOf(kw string) error {
	p.skipNewlines()
	if err := p.expectKeyword("END"); err != nil {
		return err
	}
	return p.expectKeyword(kw)
}

func (p *parser) parseProgram() (*Program, error) {
	prog := &Program{}
	for {
		p.skipNewlines()
		if p.cur().Kind == qmltoken.EOF {
			return prog, nil
		}
		switch {
		case p.atKeyword("VERSION"):
			p.advance()
			n := p.cur()
			if n.Kind != qmltoken.Number {
				return nil, &ParseError{Pos: n.Pos, Expected: "a version number", Found: describe(n)}
			}
			p.advance()
			prog.Version = &VersionDecl{Version: n.Text}
		case p.atKeyword("LOAD"):
			if err := p.inlineLoad(prog); err != nil {
				return nil, err
			}
		case p.atKeyword("AFFECT"):
			ab, err := p.parseAffectBlock()
			if err != nil {
				return nil, err
			}
			prog.Affects = append(prog.Affects, ab)
		case p.atKeyword("SLOT"):
			sd, err := p.parseSlotDefinition()
			if err != nil {
				return nil, err
			}
			prog.Slots = append(prog.Slots, sd)
		case p.atKeyword("TEMPLATE"):
			td, err := p.parseTemplateDefinition()
			if err != nil {
				return nil, err
			}
			prog.Templates = append(prog.Templates, td)
		default:
			return nil, &ParseError{Pos: p.cur().Pos, Expected: "VERSION, LOAD, AFFECT, SLOT, or TEMPLATE", Found: describe(p.cur())}
		}
	}
}

func (p *parser) inlineLoad(prog *Program) error {
	p.advance() // LOAD
	t := p.cur()
	if t.Kind != qmltoken.String {
		return &ParseError{Pos: t.Pos, Expected: "a quoted path", Found: describe(t)}
	}
	p.advance()
	path, err := unquoteString(t.Text)
	if err != nil {
		return &ParseError{Pos: t.Pos, Expected: "a valid quoted path"}
	}
	if p.load == nil {
		return &ParseError{Pos: t.Pos, Expected: "no LOAD support configured for this parse"}
	}
	data, err := p.load(path)
	if err != nil {
		return &ParseError{Pos: t.Pos, Expected: fmt.Sprintf("loadable file %q: %v", path, err)}
	}
	sub, err := ParseWithLoader(data, p.load)
	if err != nil {
		return err
	}
	if sub.Version != nil && prog.Version == nil {
		prog.Version = sub.Version
	}
	prog.Affects = append(prog.Affects, sub.Affects...)
	prog.Slots = append(prog.Slots, sub.Slots...)
	prog.Templates = append(prog.Templates, sub.Templates...)
	return nil
}

func unquoteString(lit string) (string, error) {
	if len(lit) < 2 {
		return "", fmt.Errorf("malformed string literal %q", lit)
	}
	quote := lit[0]
	body := lit[1 : len(lit)-1]
	out := make([]byte, 0, len(body))
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) {
			i++
			switch body[i] {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			default:
				out = append(out, body[i])
			}
			continue
		}
		out = append(out, body[i])
	}
	_ = quote
	return string(out), nil
}

func (p *parser) parseAffectBlock() (*AffectBlock, error) {
	p.advance() // AFFECT
	sel, err := p.parseAffectSelector()
	if err != nil {
		return nil, err
	}
	ab := &AffectBlock{File: sel}
	for {
		p.skipNewlines()
		if p.atKeyword("END") {
			break
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		ab.Statements = append(ab.Statements, stmt)
	}
	if err := p.endOf("AFFECT"); err != nil {
		return nil, err
	}
	return ab, nil
}

func (p *parser) parseAffectSelector() (AffectSelector, error) {
	t := p.cur()
	switch t.Kind {
	case qmltoken.String:
		p.advance()
		s, err := unquoteString(t.Text)
		if err != nil {
			return AffectSelector{}, &ParseError{Pos: t.Pos, Expected: "a valid quoted file name"}
		}
		return AffectSelector{Literal: s}, nil
	case qmltoken.HashRef:
		p.advance()
		return AffectSelector{Hashed: true, Hash: t.Hash}, nil
	default:
		return AffectSelector{}, &ParseError{Pos: t.Pos, Expected: "a quoted file name or hash reference", Found: describe(t)}
	}
}

func (p *parser) parseSlotDefinition() (*SlotDefinition, error) {
	p.advance() // SLOT
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	p.skipNewlines()
	qml, err := p.collectUntilEnd("SLOT")
	if err != nil {
		return nil, err
	}
	return &SlotDefinition{Name: name, QML: qml}, nil
}

func (p *parser) parseTemplateDefinition() (*TemplateDefinition, error) {
	p.advance() // TEMPLATE
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	p.skipNewlines()
	qml, err := p.collectUntilEnd("TEMPLATE")
	if err != nil {
		return nil, err
	}
	return &TemplateDefinition{Name: name, QML: qml}, nil
}

// collectUntilEnd captures raw source text from the current position up to
// (not including) the matching "END <kw>", leaving the cursor past it.
func (p *parser) collectUntilEnd(kw string) (string, error) {
	start := p.cur().Pos.Offset
	for {
		if p.cur().Kind == qmltoken.EOF {
			return "", &ParseError{Pos: p.cur().Pos, Expected: "END " + kw}
		}
		if p.atKeyword("END") {
			savedPos := p.pos
			p.advance()
			if p.atKeyword(kw) {
				end := p.toks[savedPos].Pos.Offset
				p.advance()
				return string(p.src[start:end]), nil
			}
			p.pos = savedPos
		}
		p.advance()
	}
}

// ParseSelector parses a single standalone selector expression, e.g. for
// tests or a CLI selector-preview mode. A full patch program always
// parses its selectors inline via Parse/ParseWithLoader.
func ParseSelector(src []byte) (Selector, error) {
	toks, err := lex(src)
	if err != nil {
		return Selector{}, err
	}
	p := &parser{src: src, toks: toks}
	sel, err := p.parseSelector()
	if err != nil {
		return Selector{}, err
	}
	p.skipNewlines()
	if p.cur().Kind != qmltoken.EOF {
		return Selector{}, &ParseError{Pos: p.cur().Pos, Expected: "end of selector", Found: describe(p.cur())}
	}
	return sel, nil
}

func (p *parser) parseSelector() (Selector, error) {
	var sel Selector
	for {
		step, err := p.parseNodeSelector()
		if err != nil {
			return Selector{}, err
		}
		sel.Steps = append(sel.Steps, step)
		if p.atSymbol(">") {
			p.advance()
			continue
		}
		break
	}
	return sel, nil
}

func (p *parser) parseNodeSelector() (NodeSelector, error) {
	var ns NodeSelector
	t := p.cur()
	if t.Kind == qmltoken.Identifier {
		ns.TypeName = t.Text
		p.advance()
	}
	for {
		t := p.cur()
		if t.Kind != qmltoken.Symbol {
			break
		}
		switch t.Text {
		case ":":
			p.advance()
			name, err := p.expectIdent()
			if err != nil {
				return NodeSelector{}, err
			}
			ns.Predicates = append(ns.Predicates, Predicate{Kind: PredName, Name: name})
		case "!":
			p.advance()
			name, err := p.expectIdent()
			if err != nil {
				return NodeSelector{}, err
			}
			ns.Predicates = append(ns.Predicates, Predicate{Kind: PredHasProp, Name: name})
		case ".":
			p.advance()
			name, err := p.expectIdent()
			if err != nil {
				return NodeSelector{}, err
			}
			op := p.cur()
			var kind PredicateKind
			switch {
			case op.Kind == qmltoken.Symbol && op.Text == "=":
				kind = PredPropEquals
			case op.Kind == qmltoken.Symbol && op.Text == "~":
				kind = PredPropContains
			default:
				return NodeSelector{}, &ParseError{Pos: op.Pos, Expected: "= or ~", Found: describe(op)}
			}
			p.advance()
			val, err := p.parsePrimaryStream()
			if err != nil {
				return NodeSelector{}, err
			}
			ns.Predicates = append(ns.Predicates, Predicate{Kind: kind, Name: name, Value: val})
		case "#":
			p.advance()
			val, err := p.parsePrimaryStream()
			if err != nil {
				return NodeSelector{}, err
			}
			ns.Predicates = append(ns.Predicates, Predicate{Kind: PredPropEquals, Name: "id", Value: val})
		default:
			return ns, nil
		}
	}
	return ns, nil
}

func (p *parser) parseStatements(terminator string) ([]Statement, error) {
	var stmts []Statement
	for {
		p.skipNewlines()
		if p.atKeyword("END") {
			break
		}
		if p.cur().Kind == qmltoken.EOF {
			return nil, &ParseError{Pos: p.cur().Pos, Expected: "END " + terminator}
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	if err := p.endOf(terminator); err != nil {
		return nil, err
	}
	return stmts, nil
}

func (p *parser) parseStatement() (Statement, error) {
	t := p.cur()
	if t.Kind != qmltoken.Keyword {
		return nil, &ParseError{Pos: t.Pos, Expected: "a statement", Found: describe(t)}
	}
	switch t.Text {
	case "IMPORT":
		return p.parseImportDirective()
	case "TRAVERSE":
		return p.parseTraverseBlock()
	case "ASSERT":
		p.advance()
		sel, err := p.parseSelector()
		if err != nil {
			return nil, err
		}
		return &AssertStmt{Selector: sel}, nil
	case "LOCATE":
		return p.parseLocateStmt()
	case "INSERT":
		return p.parseInsertStmt()
	case "REMOVE":
		p.advance()
		sel, err := p.parseSelector()
		if err != nil {
			return nil, err
		}
		return &RemoveStmt{Selector: sel}, nil
	case "REPLACE":
		return p.parseReplaceStmt()
	case "REPLICATE":
		return p.parseReplicateBlock()
	case "RENAME":
		return p.parseRenameStmt()
	case "REBUILD", "REDEFINE":
		return p.parseStreamRewriteStmt()
	default:
		return nil, &ParseError{Pos: t.Pos, Expected: "a statement", Found: describe(t)}
	}
}

func (p *parser) parseImportDirective() (*ImportDirective, error) {
	p.advance() // IMPORT
	name, err := p.parseDottedName()
	if err != nil {
		return nil, err
	}
	n := p.cur()
	if n.Kind != qmltoken.Number {
		return nil, &ParseError{Pos: n.Pos, Expected: "a version number", Found: describe(n)}
	}
	p.advance()
	imp := &ImportDirective{Name: name, Version: n.Text}
	if p.atKeyword("AS") {
		p.advance()
		alias, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		imp.Alias = alias
	}
	return imp, nil
}

func (p *parser) parseDottedName() (string, error) {
	first, err := p.expectIdent()
	if err != nil {
		return "", err
	}
	name := first
	for p.atSymbol(".") {
		p.advance()
		part, err := p.expectIdent()
		if err != nil {
			return "", err
		}
		name += "." + part
	}
	return name, nil
}

func (p *parser) parseTraverseBlock() (*TraverseBlock, error) {
	p.advance() // TRAVERSE
	sel, err := p.parseSelector()
	if err != nil {
		return nil, err
	}
	stmts, err := p.parseStatements("TRAVERSE")
	if err != nil {
		return nil, err
	}
	return &TraverseBlock{Selector: sel, Statements: stmts}, nil
}

func (p *parser) parseLocateStmt() (*LocateStmt, error) {
	p.advance() // LOCATE
	var before bool
	switch {
	case p.atKeyword("BEFORE"):
		before = true
		p.advance()
	case p.atKeyword("AFTER"):
		p.advance()
	default:
		return nil, &ParseError{Pos: p.cur().Pos, Expected: "BEFORE or AFTER", Found: describe(p.cur())}
	}
	if p.atKeyword("ALL") {
		p.advance()
		return &LocateStmt{Before: before, All: true}, nil
	}
	sel, err := p.parseSelector()
	if err != nil {
		return nil, err
	}
	return &LocateStmt{Before: before, Selector: sel}, nil
}

func (p *parser) parseInsertStmt() (*InsertStmt, error) {
	p.advance() // INSERT
	switch {
	case p.atKeyword("SLOT"):
		p.advance()
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		return &InsertStmt{Kind: InsertSlot, SlotName: name}, nil
	case p.atKeyword("TEMPLATE"):
		p.advance()
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		stmt := &InsertStmt{Kind: InsertTemplate, TemplateName: name}
		if p.atKeyword("WITH") {
			p.advance()
			for {
				argName, err := p.expectIdent()
				if err != nil {
					return nil, err
				}
				if err := p.expectSymbol("="); err != nil {
					return nil, err
				}
				qml, err := p.parseBraceSpan()
				if err != nil {
					return nil, err
				}
				stmt.TemplateArgs = append(stmt.TemplateArgs, TemplateArg{Name: argName, QML: qml})
				if p.atSymbol(",") {
					p.advance()
					continue
				}
				break
			}
		}
		return stmt, nil
	default:
		qml, err := p.parseBraceSpan()
		if err != nil {
			return nil, err
		}
		return &InsertStmt{Kind: InsertQML, QML: qml}, nil
	}
}

func (p *parser) parseReplaceStmt() (*ReplaceStmt, error) {
	p.advance() // REPLACE
	sel, err := p.parseSelector()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("WITH"); err != nil {
		return nil, err
	}
	qml, err := p.parseBraceSpan()
	if err != nil {
		return nil, err
	}
	return &ReplaceStmt{Selector: sel, QML: qml}, nil
}

func (p *parser) parseReplicateBlock() (*ReplicateBlock, error) {
	p.advance() // REPLICATE
	sel, err := p.parseSelector()
	if err != nil {
		return nil, err
	}
	stmts, err := p.parseStatements("REPLICATE")
	if err != nil {
		return nil, err
	}
	return &ReplicateBlock{Selector: sel, Statements: stmts}, nil
}

func (p *parser) parseRenameStmt() (*RenameStmt, error) {
	p.advance() // RENAME
	sel, err := p.parseSelector()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("TO"); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	return &RenameStmt{Selector: sel, NewName: name}, nil
}

func (p *parser) parseStreamRewriteStmt() (*StreamRewriteStmt, error) {
	redefine := p.atKeyword("REDEFINE")
	kw := "REBUILD"
	if redefine {
		kw = "REDEFINE"
	}
	p.advance()
	prop, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	var inner []RewriteStmt
	for {
		p.skipNewlines()
		if p.atKeyword("END") {
			break
		}
		if p.cur().Kind == qmltoken.EOF {
			return nil, &ParseError{Pos: p.cur().Pos, Expected: "END " + kw}
		}
		stmt, err := p.parseRewriteStmt()
		if err != nil {
			return nil, err
		}
		inner = append(inner, stmt)
	}
	if err := p.endOf(kw); err != nil {
		return nil, err
	}
	return &StreamRewriteStmt{Redefine: redefine, Property: prop, Inner: inner}, nil
}

func (p *parser) parseRewriteStmt() (RewriteStmt, error) {
	t := p.cur()
	if t.Kind != qmltoken.Keyword {
		return nil, &ParseError{Pos: t.Pos, Expected: "a rewrite directive", Found: describe(t)}
	}
	switch t.Text {
	case "LOCATE":
		return p.parseRWLocate()
	case "INSERT":
		p.advance()
		s, err := p.parsePrimaryStream()
		if err != nil {
			return nil, err
		}
		return &RWInsert{Stream: s}, nil
	case "REMOVE":
		return p.parseRWRemoveOrUntil()
	case "REPLACE":
		return p.parseRWReplace()
	case "ARGUMENT":
		return p.parseRWArgument()
	default:
		return nil, &ParseError{Pos: t.Pos, Expected: "a rewrite directive", Found: describe(t)}
	}
}

func (p *parser) parseRWLocate() (*RWLocate, error) {
	p.advance() // LOCATE
	var before bool
	switch {
	case p.atKeyword("BEFORE"):
		before = true
		p.advance()
	case p.atKeyword("AFTER"):
		p.advance()
	default:
		return nil, &ParseError{Pos: p.cur().Pos, Expected: "BEFORE or AFTER", Found: describe(p.cur())}
	}
	if p.atKeyword("ALL") {
		p.advance()
		return &RWLocate{Before: before, All: true}, nil
	}
	s, err := p.parsePrimaryStream()
	if err != nil {
		return nil, err
	}
	return &RWLocate{Before: before, Stream: s}, nil
}

func (p *parser) parseRWRemoveOrUntil() (RewriteStmt, error) {
	p.advance() // REMOVE
	if p.atKeyword("LOCATED") {
		p.advance()
		return &RWRemove{Located: true}, nil
	}
	if p.atKeyword("UNTIL") {
		p.advance()
		if p.atKeyword("END") {
			p.advance()
			return &RWRemoveUntil{End: true}, nil
		}
		s, err := p.parsePrimaryStream()
		if err != nil {
			return nil, err
		}
		return &RWRemoveUntil{Stream: s}, nil
	}
	s, err := p.parsePrimaryStream()
	if err != nil {
		return nil, err
	}
	return &RWRemove{Stream: s}, nil
}

func (p *parser) parseRWReplace() (*RWReplace, error) {
	p.advance() // REPLACE
	var located bool
	var needle qmlast.TokenStream
	if p.atKeyword("LOCATED") {
		p.advance()
		located = true
	} else {
		var err error
		needle, err = p.parsePrimaryStream()
		if err != nil {
			return nil, err
		}
	}
	var until qmlast.TokenStream
	var untilSet bool
	if p.atKeyword("UNTIL") {
		p.advance()
		if p.atKeyword("END") {
			p.advance()
		} else {
			var err error
			until, err = p.parsePrimaryStream()
			if err != nil {
				return nil, err
			}
			untilSet = true
		}
	}
	if err := p.expectKeyword("WITH"); err != nil {
		return nil, err
	}
	with, err := p.parsePrimaryStream()
	if err != nil {
		return nil, err
	}
	return &RWReplace{Located: located, Needle: needle, UntilSet: untilSet, Until: until, With: with}, nil
}

func (p *parser) parseRWArgument() (*RWArgument, error) {
	p.advance() // ARGUMENT
	switch {
	case p.atKeyword("INSERT"):
		p.advance()
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword("AT"); err != nil {
			return nil, err
		}
		n := p.cur()
		if n.Kind != qmltoken.Number {
			return nil, &ParseError{Pos: n.Pos, Expected: "an argument index", Found: describe(n)}
		}
		p.advance()
		at := 0
		for _, c := range n.Text {
			at = at*10 + int(c-'0')
		}
		return &RWArgument{Op: ArgInsert, Name: name, At: at}, nil
	case p.atKeyword("REMOVE"):
		p.advance()
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		return &RWArgument{Op: ArgRemove, Name: name}, nil
	case p.atKeyword("RENAME"):
		p.advance()
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword("TO"); err != nil {
			return nil, err
		}
		newName, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		return &RWArgument{Op: ArgRename, Name: name, NewName: newName}, nil
	default:
		return nil, &ParseError{Pos: p.cur().Pos, Expected: "INSERT, REMOVE, or RENAME", Found: describe(p.cur())}
	}
}
