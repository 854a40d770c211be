// Package applier implements the cursor-based patch applier:
// traversal-stack directive dispatch, the nested token-stream rewriter for
// REBUILD/REDEFINE, and template/slot instantiation.
package applier

import "github.com/oxhq/qmldiff/internal/qmlast"

// cloneObject deep-copies an Object tree so REPLICATE can run its nested
// statements against an independent copy before splicing it into the
// parent.
func cloneObject(o *qmlast.Object) *qmlast.Object {
	if o == nil {
		return nil
	}
	children := make([]qmlast.Child, len(o.Children))
	for i, c := range o.Children {
		children[i] = cloneChild(c)
	}
	return &qmlast.Object{Type: o.Type, Children: children}
}

func cloneChild(c qmlast.Child) qmlast.Child {
	switch v := c.(type) {
	case *qmlast.ObjectChild:
		return &qmlast.ObjectChild{Object: cloneObject(v.Object)}
	case *qmlast.NamedObjectDecl:
		return &qmlast.NamedObjectDecl{Name: v.Name, Object: cloneObject(v.Object)}
	case *qmlast.PropertyDecl:
		cp := *v
		cp.Value = cloneValue(v.Value)
		return &cp
	case *qmlast.Assignment:
		cp := *v
		cp.Value = cloneValue(v.Value)
		return &cp
	case *qmlast.Function:
		cp := *v
		cp.Args = append([]qmlast.Arg(nil), v.Args...)
		cp.Body = qmlast.TokenStream{Elems: cloneElems(v.Body.Elems)}
		return &cp
	case *qmlast.Signal:
		cp := *v
		cp.Args = append([]qmlast.Arg(nil), v.Args...)
		return &cp
	case *qmlast.Enum:
		cp := *v
		cp.Values = append([]qmlast.EnumPair(nil), v.Values...)
		return &cp
	case *qmlast.SlotReference:
		cp := *v
		return &cp
	case *qmlast.HashReference:
		cp := *v
		return &cp
	default:
		return c
	}
}

func cloneValue(v qmlast.PropertyValue) qmlast.PropertyValue {
	switch {
	case v.Object != nil:
		return qmlast.PropertyValue{Object: cloneObject(v.Object)}
	case v.NamedObject != nil:
		return qmlast.PropertyValue{NamedObject: &qmlast.NamedObjectDecl{
			Name:   v.NamedObject.Name,
			Object: cloneObject(v.NamedObject.Object),
		}}
	case v.Stream != nil:
		s := qmlast.TokenStream{Elems: cloneElems(v.Stream.Elems)}
		return qmlast.PropertyValue{Stream: &s}
	default:
		return qmlast.PropertyValue{}
	}
}

func cloneElems(elems []qmlast.StreamElem) []qmlast.StreamElem {
	if elems == nil {
		return nil
	}
	out := make([]qmlast.StreamElem, len(elems))
	for i, e := range elems {
		if e.IsGroup() {
			out[i] = qmlast.StreamElem{Group: &qmlast.Group{
				Open: e.Group.Open, Close: e.Group.Close,
				Elems: cloneElems(e.Group.Elems),
			}}
			continue
		}
		out[i] = e
	}
	return out
}
