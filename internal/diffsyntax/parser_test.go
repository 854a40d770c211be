package diffsyntax

import "testing"

func mustParse(t *testing.T, src string) *Program {
	t.Helper()
	p, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return p
}

func TestParseVersionAndAffectSelector(t *testing.T) {
	src := `VERSION 1

AFFECT "main.qml"
    ASSERT Item
END AFFECT
`
	p := mustParse(t, src)
	if p.Version == nil || p.Version.Version != "1" {
		t.Fatalf("unexpected version: %+v", p.Version)
	}
	if len(p.Affects) != 1 || p.Affects[0].File.Literal != "main.qml" {
		t.Fatalf("unexpected affect: %+v", p.Affects)
	}
}

func TestParseAffectByHash(t *testing.T) {
	src := `AFFECT ~&555&~
    ASSERT Item
END AFFECT
`
	p := mustParse(t, src)
	sel := p.Affects[0].File
	if !sel.Hashed || sel.Hash != 555 {
		t.Fatalf("unexpected affect selector: %+v", sel)
	}
}

func TestParseTraverseWithSelectorChainAndPredicates(t *testing.T) {
	src := `AFFECT "a.qml"
    TRAVERSE Item > Rectangle:footer!visible.color="blue"
        ASSERT #fooId
        LOCATE AFTER ALL
        INSERT {
            property bool extra: true
        }
    END TRAVERSE
END AFFECT
`
	p := mustParse(t, src)
	tb, ok := p.Affects[0].Statements[0].(*TraverseBlock)
	if !ok {
		t.Fatalf("expected TraverseBlock, got %#v", p.Affects[0].Statements[0])
	}
	if len(tb.Selector.Steps) != 2 {
		t.Fatalf("unexpected selector steps: %+v", tb.Selector.Steps)
	}
	if tb.Selector.Steps[0].TypeName != "Item" {
		t.Fatalf("unexpected first step: %+v", tb.Selector.Steps[0])
	}
	step2 := tb.Selector.Steps[1]
	if step2.TypeName != "Rectangle" || len(step2.Predicates) != 3 {
		t.Fatalf("unexpected second step: %+v", step2)
	}
	if step2.Predicates[0].Kind != PredName || step2.Predicates[0].Name != "footer" {
		t.Fatalf("unexpected predicate 0: %+v", step2.Predicates[0])
	}
	if step2.Predicates[1].Kind != PredHasProp || step2.Predicates[1].Name != "visible" {
		t.Fatalf("unexpected predicate 1: %+v", step2.Predicates[1])
	}
	if step2.Predicates[2].Kind != PredPropEquals || step2.Predicates[2].Name != "color" {
		t.Fatalf("unexpected predicate 2: %+v", step2.Predicates[2])
	}
	if len(tb.Statements) != 3 {
		t.Fatalf("unexpected traverse body length: %d", len(tb.Statements))
	}
	assert, ok := tb.Statements[0].(*AssertStmt)
	if !ok || assert.Selector.Steps[0].Predicates[0].Name != "id" {
		t.Fatalf("unexpected #id sugar desugaring: %+v", tb.Statements[0])
	}
	locate, ok := tb.Statements[1].(*LocateStmt)
	if !ok || !locate.All {
		t.Fatalf("unexpected locate: %+v", tb.Statements[1])
	}
	ins, ok := tb.Statements[2].(*InsertStmt)
	if !ok || ins.Kind != InsertQML {
		t.Fatalf("unexpected insert: %+v", tb.Statements[2])
	}
}

func TestParseInsertSlotAndTemplate(t *testing.T) {
	src := `AFFECT "a.qml"
    TRAVERSE Item
        INSERT SLOT extra
        INSERT TEMPLATE Labeled WITH label = { "hi" }
    END TRAVERSE
END AFFECT
`
	p := mustParse(t, src)
	tb := p.Affects[0].Statements[0].(*TraverseBlock)
	slotIns, ok := tb.Statements[0].(*InsertStmt)
	if !ok || slotIns.Kind != InsertSlot || slotIns.SlotName != "extra" {
		t.Fatalf("unexpected slot insert: %+v", tb.Statements[0])
	}
	tmplIns, ok := tb.Statements[1].(*InsertStmt)
	if !ok || tmplIns.Kind != InsertTemplate || tmplIns.TemplateName != "Labeled" {
		t.Fatalf("unexpected template insert: %+v", tb.Statements[1])
	}
	if len(tmplIns.TemplateArgs) != 1 || tmplIns.TemplateArgs[0].Name != "label" {
		t.Fatalf("unexpected template args: %+v", tmplIns.TemplateArgs)
	}
}

func TestParseReplaceRenameReplicate(t *testing.T) {
	src := `AFFECT "a.qml"
    TRAVERSE Item
        REPLACE Rectangle WITH {
            Text { text: "gone" }
        }
        RENAME Text TO Label
        REPLICATE Text
            ASSERT Item
        END REPLICATE
    END TRAVERSE
END AFFECT
`
	p := mustParse(t, src)
	tb := p.Affects[0].Statements[0].(*TraverseBlock)
	rep, ok := tb.Statements[0].(*ReplaceStmt)
	if !ok || rep.Selector.Steps[0].TypeName != "Rectangle" {
		t.Fatalf("unexpected replace: %+v", tb.Statements[0])
	}
	ren, ok := tb.Statements[1].(*RenameStmt)
	if !ok || ren.NewName != "Label" {
		t.Fatalf("unexpected rename: %+v", tb.Statements[1])
	}
	rep2, ok := tb.Statements[2].(*ReplicateBlock)
	if !ok || len(rep2.Statements) != 1 {
		t.Fatalf("unexpected replicate: %+v", tb.Statements[2])
	}
}

func TestParseRebuildAndRedefine(t *testing.T) {
	src := `AFFECT "a.qml"
    TRAVERSE Function:update
        REBUILD body
            LOCATE AFTER { x }
            REMOVE LOCATED
            INSERT { y }
            ARGUMENT INSERT extra AT 1
            ARGUMENT RENAME extra TO renamed
            ARGUMENT REMOVE renamed
        END REBUILD
        REDEFINE body
            INSERT { return 0; }
        END REDEFINE
    END TRAVERSE
END AFFECT
`
	p := mustParse(t, src)
	tb := p.Affects[0].Statements[0].(*TraverseBlock)
	rb, ok := tb.Statements[0].(*StreamRewriteStmt)
	if !ok || rb.Redefine || rb.Property != "body" {
		t.Fatalf("unexpected rebuild: %+v", tb.Statements[0])
	}
	if len(rb.Inner) != 6 {
		t.Fatalf("unexpected rebuild inner length: %d, %+v", len(rb.Inner), rb.Inner)
	}
	if _, ok := rb.Inner[0].(*RWLocate); !ok {
		t.Fatalf("unexpected inner[0]: %#v", rb.Inner[0])
	}
	if rm, ok := rb.Inner[1].(*RWRemove); !ok || !rm.Located {
		t.Fatalf("unexpected inner[1]: %#v", rb.Inner[1])
	}
	if _, ok := rb.Inner[2].(*RWInsert); !ok {
		t.Fatalf("unexpected inner[2]: %#v", rb.Inner[2])
	}
	argIns, ok := rb.Inner[3].(*RWArgument)
	if !ok || argIns.Op != ArgInsert || argIns.Name != "extra" || argIns.At != 1 {
		t.Fatalf("unexpected inner[3]: %#v", rb.Inner[3])
	}
	argRen, ok := rb.Inner[4].(*RWArgument)
	if !ok || argRen.Op != ArgRename || argRen.NewName != "renamed" {
		t.Fatalf("unexpected inner[4]: %#v", rb.Inner[4])
	}

	rd, ok := tb.Statements[1].(*StreamRewriteStmt)
	if !ok || !rd.Redefine {
		t.Fatalf("unexpected redefine: %+v", tb.Statements[1])
	}
}

func TestParseRemoveUntilForms(t *testing.T) {
	src := `AFFECT "a.qml"
    TRAVERSE Function:f
        REBUILD body
            REMOVE UNTIL { ; }
            REMOVE UNTIL END
        END REBUILD
    END TRAVERSE
END AFFECT
`
	p := mustParse(t, src)
	tb := p.Affects[0].Statements[0].(*TraverseBlock)
	rb := tb.Statements[0].(*StreamRewriteStmt)
	u1, ok := rb.Inner[0].(*RWRemoveUntil)
	if !ok || u1.End {
		t.Fatalf("unexpected inner[0]: %#v", rb.Inner[0])
	}
	u2, ok := rb.Inner[1].(*RWRemoveUntil)
	if !ok || !u2.End {
		t.Fatalf("unexpected inner[1]: %#v", rb.Inner[1])
	}
}

func TestParseSlotAndTemplateDefinitions(t *testing.T) {
	src := `SLOT extra
    Text { text: "hi" }
END SLOT

TEMPLATE Labeled
    Text { text: ~{label}~ }
END TEMPLATE
`
	p := mustParse(t, src)
	if len(p.Slots) != 1 || p.Slots[0].Name != "extra" {
		t.Fatalf("unexpected slots: %+v", p.Slots)
	}
	if len(p.Templates) != 1 || p.Templates[0].Name != "Labeled" {
		t.Fatalf("unexpected templates: %+v", p.Templates)
	}
}

func TestParseLoadInlinesDirectives(t *testing.T) {
	files := map[string]string{
		"base.qmldiff": `AFFECT "a.qml"
    ASSERT Item
END AFFECT
`,
	}
	loader := func(path string) ([]byte, error) {
		return []byte(files[path]), nil
	}
	src := `VERSION 1
LOAD "base.qmldiff"
AFFECT "b.qml"
    ASSERT Rectangle
END AFFECT
`
	p, err := ParseWithLoader([]byte(src), loader)
	if err != nil {
		t.Fatalf("ParseWithLoader: %v", err)
	}
	if len(p.Affects) != 2 {
		t.Fatalf("unexpected affect count: %d", len(p.Affects))
	}
	if p.Affects[0].File.Literal != "a.qml" || p.Affects[1].File.Literal != "b.qml" {
		t.Fatalf("unexpected affect order: %+v", p.Affects)
	}
}

func TestParseLoadWithoutLoaderIsError(t *testing.T) {
	_, err := Parse([]byte(`LOAD "x.qmldiff"` + "\n"))
	if err == nil {
		t.Fatal("expected error for LOAD with no loader configured")
	}
}

func TestParseImportDirectiveWithAlias(t *testing.T) {
	src := `AFFECT "a.qml"
    IMPORT QtQuick.Controls 2.15 AS Controls
END AFFECT
`
	p := mustParse(t, src)
	imp, ok := p.Affects[0].Statements[0].(*ImportDirective)
	if !ok || imp.Name != "QtQuick.Controls" || imp.Version != "2.15" || imp.Alias != "Controls" {
		t.Fatalf("unexpected import directive: %+v", p.Affects[0].Statements[0])
	}
}

func TestParseErrorMissingEndTraverse(t *testing.T) {
	_, err := Parse([]byte(`AFFECT "a.qml"
    TRAVERSE Item
        ASSERT Rectangle
END AFFECT
`))
	if err == nil {
		t.Fatal("expected parse error for missing END TRAVERSE")
	}
	if _, ok := err.(*ParseError); !ok {
		t.Fatalf("expected *ParseError, got %T", err)
	}
}

func TestParseStreamDelimitedLiteralInRewrite(t *testing.T) {
	src := `AFFECT "a.qml"
    TRAVERSE Function:f
        REBUILD body
            INSERT STREAM @ return 1; @
        END REBUILD
    END TRAVERSE
END AFFECT
`
	p := mustParse(t, src)
	tb := p.Affects[0].Statements[0].(*TraverseBlock)
	rb := tb.Statements[0].(*StreamRewriteStmt)
	ins, ok := rb.Inner[0].(*RWInsert)
	if !ok {
		t.Fatalf("unexpected inner[0]: %#v", rb.Inner[0])
	}
	if len(ins.Stream.Elems) == 0 {
		t.Fatalf("expected non-empty stream literal")
	}
}
