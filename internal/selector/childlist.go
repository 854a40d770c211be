// Package selector implements the selector engine: matching
// a diffsyntax.Selector's chain of NodeSelectors against ordered AST
// children, in source order, with no backtracking-based disambiguation.
package selector

import "github.com/oxhq/qmldiff/internal/qmlast"

// ChildList is an ordered, mutable list of qmlast.Child, abstracting over
// the two places a selector can walk: an Object's Children, and a File's
// top-level Objects (each wrapped as a synthetic ObjectChild so the root
// level matches the same NodeSelector rules as any nested level). This is
// also the applier's cursor surface: a (ChildList, index) pair names a
// mutation site without holding a pointer into the tree.
type ChildList interface {
	Len() int
	At(i int) qmlast.Child
	Replace(i int, c qmlast.Child)
	// Insert splices cs before index i (i == Len() appends at the end).
	Insert(i int, cs ...qmlast.Child)
	Remove(i int)
}

// ObjectChildren is a ChildList over an Object's own Children slice.
type ObjectChildren struct {
	Obj *qmlast.Object
}

func (c ObjectChildren) Len() int                   { return len(c.Obj.Children) }
func (c ObjectChildren) At(i int) qmlast.Child       { return c.Obj.Children[i] }
func (c ObjectChildren) Replace(i int, ch qmlast.Child) { c.Obj.Children[i] = ch }

func (c ObjectChildren) Insert(i int, cs ...qmlast.Child) {
	c.Obj.Children = insertChildren(c.Obj.Children, i, cs)
}

func (c ObjectChildren) Remove(i int) {
	c.Obj.Children = append(c.Obj.Children[:i], c.Obj.Children[i+1:]...)
}

// FileRoots is a ChildList over a File's top-level Objects, each one
// presented to the selector engine as an ObjectChild so root-level
// matching shares the exact same predicate logic as any nested level.
type FileRoots struct {
	File *qmlast.File
}

func (c FileRoots) Len() int { return len(c.File.Objects) }

func (c FileRoots) At(i int) qmlast.Child {
	return &qmlast.ObjectChild{Object: c.File.Objects[i]}
}

func (c FileRoots) Replace(i int, ch qmlast.Child) {
	c.File.Objects[i] = unwrapObject(ch)
}

func (c FileRoots) Insert(i int, cs ...qmlast.Child) {
	objs := make([]*qmlast.Object, len(cs))
	for j, ch := range cs {
		objs[j] = unwrapObject(ch)
	}
	c.File.Objects = insertObjects(c.File.Objects, i, objs)
}

func (c FileRoots) Remove(i int) {
	c.File.Objects = append(c.File.Objects[:i], c.File.Objects[i+1:]...)
}

func unwrapObject(c qmlast.Child) *qmlast.Object {
	switch v := c.(type) {
	case *qmlast.ObjectChild:
		return v.Object
	default:
		panic("selector: a root-level child must be an object")
	}
}

func insertChildren(dst []qmlast.Child, i int, cs []qmlast.Child) []qmlast.Child {
	out := make([]qmlast.Child, 0, len(dst)+len(cs))
	out = append(out, dst[:i]...)
	out = append(out, cs...)
	out = append(out, dst[i:]...)
	return out
}

func insertObjects(dst []*qmlast.Object, i int, objs []*qmlast.Object) []*qmlast.Object {
	out := make([]*qmlast.Object, 0, len(dst)+len(objs))
	out = append(out, dst[:i]...)
	out = append(out, objs...)
	out = append(out, dst[i:]...)
	return out
}

// ObjectOf returns the Object a Child wraps, for ObjectChild/
// NamedObjectDecl children, which are the only kinds whose own properties
// a `!prop`/`.prop=value`/`.prop~value` predicate can inspect.
func ObjectOf(c qmlast.Child) (*qmlast.Object, bool) {
	switch v := c.(type) {
	case *qmlast.ObjectChild:
		return v.Object, true
	case *qmlast.NamedObjectDecl:
		return v.Object, true
	default:
		return nil, false
	}
}
