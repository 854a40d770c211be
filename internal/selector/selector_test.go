package selector

import (
	"testing"

	"github.com/oxhq/qmldiff/internal/diffsyntax"
	"github.com/oxhq/qmldiff/internal/qmlast"
	"github.com/oxhq/qmldiff/internal/qmlparse"
)

func mustParseQML(t *testing.T, src string) *qmlast.File {
	t.Helper()
	f, err := qmlparse.Parse([]byte(src))
	if err != nil {
		t.Fatalf("qmlparse.Parse: %v", err)
	}
	return f
}

func mustParseSelector(t *testing.T, src string) diffsyntax.Selector {
	t.Helper()
	sel, err := diffsyntax.ParseSelector([]byte(src))
	if err != nil {
		t.Fatalf("ParseSelector(%q): %v", src, err)
	}
	return sel
}

func TestMatchByTypeNameAtRoot(t *testing.T) {
	f := mustParseQML(t, `Item {
    Rectangle {
        color: "blue"
    }
    Rectangle {
        color: "red"
    }
    Text {
        text: "hi"
    }
}
`)
	root := f.Objects[0]
	sel := mustParseSelector(t, "Rectangle")
	matches := Engine{}.Match(ObjectChildren{Obj: root}, sel)
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if matches[0].Index != 0 || matches[1].Index != 1 {
		t.Fatalf("unexpected match order: %+v", matches)
	}
}

func TestMatchChainedSelectorDescendsIntoObject(t *testing.T) {
	f := mustParseQML(t, `Item {
    Rectangle {
        Text {
            text: "inner"
        }
    }
    Text {
        text: "outer"
    }
}
`)
	root := f.Objects[0]
	sel := mustParseSelector(t, "Rectangle > Text")
	matches := Engine{}.Match(ObjectChildren{Obj: root}, sel)
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	obj, ok := ObjectOf(matches[0].Child)
	if !ok {
		t.Fatalf("expected object-bearing match, got %#v", matches[0].Child)
	}
	as, ok := obj.Children[0].(*qmlast.Assignment)
	if !ok || as.Value.Stream.Elems[0].Token.Text != `"inner"` {
		t.Fatalf("matched wrong Text node: %#v", obj)
	}
}

func TestMatchNamePredicate(t *testing.T) {
	f := mustParseQML(t, `Item {
    footer: Text {
        text: "a"
    }
    header: Text {
        text: "b"
    }
}
`)
	root := f.Objects[0]
	sel := mustParseSelector(t, "Text:header")
	matches := Engine{}.Match(ObjectChildren{Obj: root}, sel)
	if len(matches) != 1 || matches[0].Index != 1 {
		t.Fatalf("unexpected matches: %+v", matches)
	}
}

func TestMatchHasPropPredicate(t *testing.T) {
	f := mustParseQML(t, `Item {
    Rectangle {
        visible: true
    }
    Rectangle {
        color: "blue"
    }
}
`)
	root := f.Objects[0]
	sel := mustParseSelector(t, "Rectangle!visible")
	matches := Engine{}.Match(ObjectChildren{Obj: root}, sel)
	if len(matches) != 1 || matches[0].Index != 0 {
		t.Fatalf("unexpected matches: %+v", matches)
	}
}

func TestMatchPropEqualsAndContainsPredicates(t *testing.T) {
	f := mustParseQML(t, `Item {
    Rectangle {
        color: "blue"
    }
    Rectangle {
        color: "lightblue"
    }
    Rectangle {
        color: "red"
    }
}
`)
	root := f.Objects[0]

	eq := mustParseSelector(t, `Rectangle.color="blue"`)
	eqMatches := Engine{}.Match(ObjectChildren{Obj: root}, eq)
	if len(eqMatches) != 1 || eqMatches[0].Index != 0 {
		t.Fatalf("unexpected equals matches: %+v", eqMatches)
	}

	contains := mustParseSelector(t, `Rectangle.color~"blue"`)
	containsMatches := Engine{}.Match(ObjectChildren{Obj: root}, contains)
	if len(containsMatches) != 2 {
		t.Fatalf("unexpected contains matches: %+v", containsMatches)
	}
}

func TestMatchIDSugarPredicate(t *testing.T) {
	f := mustParseQML(t, `Item {
    Rectangle {
        id: fooId
    }
    Rectangle {
        id: barId
    }
}
`)
	root := f.Objects[0]
	sel := mustParseSelector(t, "Rectangle#fooId")
	matches := Engine{}.Match(ObjectChildren{Obj: root}, sel)
	if len(matches) != 1 || matches[0].Index != 0 {
		t.Fatalf("unexpected matches: %+v", matches)
	}
}

func TestMatchAtFileRoot(t *testing.T) {
	f := mustParseQML(t, `Item {
}
`)
	sel := mustParseSelector(t, "Item")
	matches := Engine{}.Match(FileRoots{File: f}, sel)
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	obj, ok := ObjectOf(matches[0].Child)
	if !ok || obj != f.Objects[0] {
		t.Fatalf("unexpected root match: %#v", matches[0])
	}
}

func TestChildListMutations(t *testing.T) {
	f := mustParseQML(t, `Item {
    Rectangle {
    }
}
`)
	root := f.Objects[0]
	list := ObjectChildren{Obj: root}
	newChild := &qmlast.ObjectChild{Object: &qmlast.Object{Type: qmlast.Lit("Text")}}
	list.Insert(0, newChild)
	if list.Len() != 2 || list.At(0) != qmlast.Child(newChild) {
		t.Fatalf("unexpected children after insert: %+v", root.Children)
	}
	list.Remove(1)
	if list.Len() != 1 {
		t.Fatalf("unexpected children after remove: %+v", root.Children)
	}
	list.Replace(0, &qmlast.ObjectChild{Object: &qmlast.Object{Type: qmlast.Lit("Row")}})
	oc, ok := list.At(0).(*qmlast.ObjectChild)
	if !ok || oc.Object.Type.Literal != "Row" {
		t.Fatalf("unexpected children after replace: %+v", root.Children)
	}
}
