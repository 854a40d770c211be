package applier

import (
	"fmt"

	"github.com/oxhq/qmldiff/internal/diffsyntax"
	"github.com/oxhq/qmldiff/internal/qmlast"
	"github.com/oxhq/qmldiff/internal/qmlparse"
)

// SlotSet accumulates named child lists from top-level SLOT definitions.
// NewSlotSet parses each definition's raw QML body once, up front.
type SlotSet struct {
	children map[string][]qmlast.Child
}

// NewSlotSet builds a SlotSet from a Program's top-level slot definitions.
func NewSlotSet(defs []*diffsyntax.SlotDefinition) (*SlotSet, error) {
	s := &SlotSet{children: make(map[string][]qmlast.Child)}
	for _, d := range defs {
		parsed, err := qmlparse.ParseChildren([]byte(d.QML))
		if err != nil {
			return nil, fmt.Errorf("slot %q: %w", d.Name, err)
		}
		s.children[d.Name] = append(s.children[d.Name], parsed...)
	}
	return s, nil
}

// Expand returns the accumulated children of the named slot, or an error if
// no SLOT definition with that name was ever declared.
func (s *SlotSet) Expand(name string) ([]qmlast.Child, error) {
	cs, ok := s.children[name]
	if !ok {
		return nil, fmt.Errorf("undefined slot: %s", name)
	}
	return cs, nil
}

// TemplateSet holds named QML fragments parsed lazily at instantiation
// time, so their internal slot-reference holes can be bound fresh for each
// INSERT TEMPLATE use.
type TemplateSet struct {
	defs map[string]*diffsyntax.TemplateDefinition
}

// NewTemplateSet builds a TemplateSet from a Program's top-level template
// definitions.
func NewTemplateSet(defs []*diffsyntax.TemplateDefinition) *TemplateSet {
	t := &TemplateSet{defs: make(map[string]*diffsyntax.TemplateDefinition)}
	for _, d := range defs {
		t.defs[d.Name] = d
	}
	return t
}

// Instantiate parses the named template's body and replaces each internal
// SlotReference hole whose name appears in args with that arg's parsed QML,
// returning a fresh, independent child list for each call.
func (t *TemplateSet) Instantiate(name string, args []diffsyntax.TemplateArg) ([]qmlast.Child, error) {
	def, ok := t.defs[name]
	if !ok {
		return nil, fmt.Errorf("undefined template: %s", name)
	}
	parsed, err := qmlparse.ParseChildren([]byte(def.QML))
	if err != nil {
		return nil, fmt.Errorf("template %q: %w", name, err)
	}
	bound := make(map[string][]qmlast.Child, len(args))
	for _, a := range args {
		argChildren, err := qmlparse.ParseChildren([]byte(a.QML))
		if err != nil {
			return nil, fmt.Errorf("template %q arg %q: %w", name, a.Name, err)
		}
		// A name given more than once (e.g. two `children: {...}` bindings)
		// concatenates at its reference site rather than overwriting.
		bound[a.Name] = append(bound[a.Name], argChildren...)
	}
	return resolveSlotRefs(parsed, bound), nil
}

// resolveSlotRefs replaces every SlotReference in children whose name is
// bound in args with that binding's children, leaving unbound references
// untouched. Only references that are themselves entries of children are
// replaced; references inside property value streams or nested objects
// are left as they are.
func resolveSlotRefs(children []qmlast.Child, args map[string][]qmlast.Child) []qmlast.Child {
	out := make([]qmlast.Child, 0, len(children))
	for _, c := range children {
		if ref, ok := c.(*qmlast.SlotReference); ok {
			if bound, ok := args[ref.Name]; ok {
				out = append(out, bound...)
				continue
			}
		}
		out = append(out, c)
	}
	return out
}
