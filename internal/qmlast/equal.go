package qmlast

import "github.com/oxhq/qmldiff/internal/qmltoken"

// Equal compares two Files for AST equality per round-trip
// laws: structurally equal ignoring source position, which legitimately
// differs between re-emitted and original sources.
func Equal(a, b *File) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(a.Imports) != len(b.Imports) || len(a.Objects) != len(b.Objects) {
		return false
	}
	for i := range a.Imports {
		if a.Imports[i] != b.Imports[i] {
			return false
		}
	}
	for i := range a.Objects {
		if !objectEqual(a.Objects[i], b.Objects[i]) {
			return false
		}
	}
	return true
}

func identEqual(a, b Ident) bool { return a == b }

func objectEqual(a, b *Object) bool {
	if a == nil || b == nil {
		return a == b
	}
	if !identEqual(a.Type, b.Type) || len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !childEqual(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

func childEqual(a, b Child) bool {
	switch av := a.(type) {
	case *ObjectChild:
		bv, ok := b.(*ObjectChild)
		return ok && objectEqual(av.Object, bv.Object)
	case *NamedObjectDecl:
		bv, ok := b.(*NamedObjectDecl)
		return ok && identEqual(av.Name, bv.Name) && objectEqual(av.Object, bv.Object)
	case *PropertyDecl:
		bv, ok := b.(*PropertyDecl)
		if !ok {
			return false
		}
		return av.Type == bv.Type && identEqual(av.Name, bv.Name) &&
			av.HasValue == bv.HasValue && av.ReadOnly == bv.ReadOnly && av.Default == bv.Default &&
			valueEqual(av.Value, bv.Value)
	case *Assignment:
		bv, ok := b.(*Assignment)
		return ok && identEqual(av.Target, bv.Target) && valueEqual(av.Value, bv.Value)
	case *Function:
		bv, ok := b.(*Function)
		if !ok || !identEqual(av.Name, bv.Name) || len(av.Args) != len(bv.Args) {
			return false
		}
		for i := range av.Args {
			if av.Args[i] != bv.Args[i] {
				return false
			}
		}
		return streamEqual(av.Body, bv.Body)
	case *Signal:
		bv, ok := b.(*Signal)
		if !ok || !identEqual(av.Name, bv.Name) || len(av.Args) != len(bv.Args) {
			return false
		}
		for i := range av.Args {
			if av.Args[i] != bv.Args[i] {
				return false
			}
		}
		return true
	case *Enum:
		bv, ok := b.(*Enum)
		if !ok || !identEqual(av.Name, bv.Name) || len(av.Values) != len(bv.Values) {
			return false
		}
		for i := range av.Values {
			if av.Values[i] != bv.Values[i] {
				return false
			}
		}
		return true
	case *SlotReference:
		bv, ok := b.(*SlotReference)
		return ok && av.Name == bv.Name
	case *HashReference:
		bv, ok := b.(*HashReference)
		return ok && av.Hash == bv.Hash
	default:
		return false
	}
}

func valueEqual(a, b PropertyValue) bool {
	if (a.Object == nil) != (b.Object == nil) ||
		(a.NamedObject == nil) != (b.NamedObject == nil) ||
		(a.Stream == nil) != (b.Stream == nil) {
		return false
	}
	switch {
	case a.Object != nil:
		return objectEqual(a.Object, b.Object)
	case a.NamedObject != nil:
		return identEqual(a.NamedObject.Name, b.NamedObject.Name) &&
			objectEqual(a.NamedObject.Object, b.NamedObject.Object)
	case a.Stream != nil:
		return streamEqual(*a.Stream, *b.Stream)
	default:
		return true
	}
}

func streamEqual(a, b TokenStream) bool {
	return elemsEqual(a.Elems, b.Elems)
}

// ElemsEqual exposes the structural (position-ignoring) comparison used
// internally for Equal, for callers needing to compare raw StreamElem
// slices directly — the inner token-stream rewriter (internal/applier)
// matching LOCATE/REMOVE/REPLACE needles against a working stream.
func ElemsEqual(a, b []StreamElem) bool {
	return elemsEqual(a, b)
}

func elemsEqual(a, b []StreamElem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].IsGroup() != b[i].IsGroup() {
			return false
		}
		if a[i].IsGroup() {
			if a[i].Group.Open != b[i].Group.Open || a[i].Group.Close != b[i].Group.Close {
				return false
			}
			if !elemsEqual(a[i].Group.Elems, b[i].Group.Elems) {
				return false
			}
			continue
		}
		if !tokenEqual(a[i].Token, b[i].Token) {
			return false
		}
	}
	return true
}

func tokenEqual(a, b qmltoken.Token) bool {
	return a.Kind == b.Kind && a.Text == b.Text && a.Hash == b.Hash && a.Name == b.Name
}
