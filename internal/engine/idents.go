package engine

import (
	"github.com/oxhq/qmldiff/internal/hashtab"
	"github.com/oxhq/qmldiff/internal/qmlast"
)

// walkIdents records every literal identifier in a syntactic identifier
// position into table. Token-stream bodies are opaque and never descended
// into: identifiers inside a function body are not part of the hashtab.
func walkIdents(f *qmlast.File, table *hashtab.Table) {
	for _, obj := range f.Objects {
		walkObject(obj, table)
	}
}

func walkObject(o *qmlast.Object, table *hashtab.Table) {
	insertIdent(o.Type, table)
	for _, c := range o.Children {
		walkChild(c, table)
	}
}

func walkChild(c qmlast.Child, table *hashtab.Table) {
	switch v := c.(type) {
	case *qmlast.ObjectChild:
		walkObject(v.Object, table)
	case *qmlast.NamedObjectDecl:
		insertIdent(v.Name, table)
		walkObject(v.Object, table)
	case *qmlast.PropertyDecl:
		insertIdent(v.Name, table)
		walkValue(v.Value, table)
	case *qmlast.Assignment:
		insertIdent(v.Target, table)
		walkValue(v.Value, table)
	case *qmlast.Function:
		insertIdent(v.Name, table)
	case *qmlast.Signal:
		insertIdent(v.Name, table)
	case *qmlast.Enum:
		insertIdent(v.Name, table)
	}
}

func walkValue(v qmlast.PropertyValue, table *hashtab.Table) {
	if v.Object != nil {
		walkObject(v.Object, table)
	}
	if v.NamedObject != nil {
		insertIdent(v.NamedObject.Name, table)
		walkObject(v.NamedObject.Object, table)
	}
}

func insertIdent(id qmlast.Ident, table *hashtab.Table) {
	if id.Hashed || id.Literal == "" {
		return
	}
	table.Insert(id.Literal)
}
