package selector

import (
	"strings"

	"github.com/oxhq/qmldiff/internal/diffsyntax"
	"github.com/oxhq/qmldiff/internal/qmlast"
	"github.com/oxhq/qmldiff/internal/qmltoken"
)

// contentOf returns a TokenStream's comparable text for ".prop~value":
// the unquoted content when the stream is a single string literal, or its
// verbatim serialization otherwise.
func contentOf(ts qmlast.TokenStream) string {
	if len(ts.Elems) == 1 && !ts.Elems[0].IsGroup() && ts.Elems[0].Token.Kind == qmltoken.String {
		text := ts.Elems[0].Token.Text
		if len(text) >= 2 {
			return text[1 : len(text)-1]
		}
	}
	return ts.Serialize()
}

// Match names one matched child as a (list, index) cursor, never a pointer
// into the tree, so it stays valid across sibling insert/remove within the
// same list.
type Match struct {
	List  ChildList
	Index int
	Child qmlast.Child
}

// Engine matches Selectors against ChildLists. It holds no state: every
// call is a fresh, source-order, no-backtracking walk.
type Engine struct{}

// Match walks sel's steps against list, descending into each matched
// step's Object for the next step. A step that is not the last and whose
// match isn't itself an object-bearing child (ObjectChild/NamedObjectDecl)
// is a dead end and contributes no further matches — selectors only chain
// through object nesting.
func (Engine) Match(list ChildList, sel diffsyntax.Selector) []Match {
	if len(sel.Steps) == 0 {
		return nil
	}
	current := matchStep(list, sel.Steps[0])
	for _, step := range sel.Steps[1:] {
		var next []Match
		for _, m := range current {
			obj, ok := ObjectOf(m.Child)
			if !ok {
				continue
			}
			next = append(next, matchStep(ObjectChildren{Obj: obj}, step)...)
		}
		current = next
	}
	return current
}

func matchStep(list ChildList, step diffsyntax.NodeSelector) []Match {
	var out []Match
	for i := 0; i < list.Len(); i++ {
		c := list.At(i)
		if !typeMatches(c, step.TypeName) {
			continue
		}
		if predicatesMatch(c, step.Predicates) {
			out = append(out, Match{List: list, Index: i, Child: c})
		}
	}
	return out
}

func typeMatches(c qmlast.Child, typeName string) bool {
	if typeName == "" {
		return true
	}
	return qmlast.KindName(c) == typeName
}

func predicatesMatch(c qmlast.Child, preds []diffsyntax.Predicate) bool {
	for _, p := range preds {
		if !predicateMatch(c, p) {
			return false
		}
	}
	return true
}

func predicateMatch(c qmlast.Child, p diffsyntax.Predicate) bool {
	switch p.Kind {
	case diffsyntax.PredName:
		name, ok := qmlast.DeclaredName(c)
		return ok && !name.Hashed && name.Literal == p.Name
	case diffsyntax.PredHasProp:
		obj, ok := ObjectOf(c)
		if !ok {
			return false
		}
		_, found := findProperty(obj, p.Name)
		return found
	case diffsyntax.PredPropEquals, diffsyntax.PredPropContains:
		obj, ok := ObjectOf(c)
		if !ok {
			return false
		}
		val, found := findProperty(obj, p.Name)
		if !found || val.Stream == nil {
			return false
		}
		if p.Kind == diffsyntax.PredPropEquals {
			return val.Stream.Serialize() == p.Value.Serialize()
		}
		// "contains" compares string contents, not the quoted literal
		// form: color~"blue" should match a color value of "lightblue".
		return strings.Contains(contentOf(*val.Stream), contentOf(p.Value))
	default:
		return false
	}
}

// findProperty returns the first Assignment/PropertyDecl in obj's own
// children whose declared name literally equals name, in source order.
func findProperty(obj *qmlast.Object, name string) (qmlast.PropertyValue, bool) {
	for _, ch := range obj.Children {
		switch v := ch.(type) {
		case *qmlast.Assignment:
			if !v.Target.Hashed && v.Target.Literal == name {
				return v.Value, true
			}
		case *qmlast.PropertyDecl:
			if !v.Name.Hashed && v.Name.Literal == name && v.HasValue {
				return v.Value, true
			}
		}
	}
	return qmlast.PropertyValue{}, false
}
