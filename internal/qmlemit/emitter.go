// Package qmlemit serializes a QML AST back to source text,
// resolving hash and slot references at emission time.
package qmlemit

import (
	"fmt"
	"strings"

	"github.com/oxhq/qmldiff/internal/qmlast"
)

// Resolver supplies the hashtab lookups and slot bindings an Emitter needs
// to resolve HashReferences and SlotReferences. Slot/template resolution
// itself lives in internal/applier; the emitter only
// consumes the final, already-accumulated bindings.
type Resolver interface {
	LookupHash(h uint64) (string, bool)
	ResolveChildSlot(name string) ([]qmlast.Child, bool)
	ResolveStreamSlot(name string) (qmlast.TokenStream, bool)
}

// EmitError reports an unbound SlotReference encountered during emission.
type EmitError struct {
	Kind string // "slot" or "hash"
	Name string
}

func (e *EmitError) Error() string {
	return fmt.Sprintf("unbound %s reference %q", e.Kind, e.Name)
}

const indentUnit = "    "

// Emitter serializes a File to deterministically indented QML source.
type Emitter struct {
	Resolver Resolver
	// RetainUnboundSlots, when true, emits an unresolved SlotReference back
	// out as its literal `~{name}~` form instead of failing.
	RetainUnboundSlots bool
}

// Emit serializes f.
func (e *Emitter) Emit(f *qmlast.File) (string, error) {
	var b strings.Builder
	for _, imp := range f.Imports {
		b.WriteString("import ")
		b.WriteString(imp.Name)
		b.WriteByte(' ')
		b.WriteString(imp.Version)
		if imp.Alias != "" {
			b.WriteString(" as ")
			b.WriteString(imp.Alias)
		}
		b.WriteByte('\n')
	}
	if len(f.Imports) > 0 && len(f.Objects) > 0 {
		b.WriteByte('\n')
	}
	for i, obj := range f.Objects {
		if i > 0 {
			b.WriteByte('\n')
		}
		if err := e.emitObject(&b, obj, 0); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

func (e *Emitter) ident(b *strings.Builder, id qmlast.Ident) error {
	if !id.Hashed {
		b.WriteString(id.Literal)
		return nil
	}
	if e.Resolver != nil {
		if s, ok := e.Resolver.LookupHash(id.Hash); ok {
			b.WriteString(s)
			return nil
		}
	}
	fmt.Fprintf(b, "~&%d&~", id.Hash)
	return nil
}

func (e *Emitter) emitObject(b *strings.Builder, obj *qmlast.Object, depth int) error {
	if err := e.ident(b, obj.Type); err != nil {
		return err
	}
	b.WriteString(" {\n")
	if err := e.emitChildren(b, obj.Children, depth+1); err != nil {
		return err
	}
	b.WriteString(indent(depth))
	b.WriteString("}\n")
	return nil
}

func (e *Emitter) emitChildren(b *strings.Builder, children []qmlast.Child, depth int) error {
	for _, c := range children {
		if err := e.emitChild(b, c, depth); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emitter) emitChild(b *strings.Builder, c qmlast.Child, depth int) error {
	switch v := c.(type) {
	case *qmlast.ObjectChild:
		b.WriteString(indent(depth))
		return e.emitObject(b, v.Object, depth)
	case *qmlast.NamedObjectDecl:
		b.WriteString(indent(depth))
		if err := e.ident(b, v.Name); err != nil {
			return err
		}
		b.WriteString(": ")
		return e.emitObject(b, v.Object, depth)
	case *qmlast.PropertyDecl:
		b.WriteString(indent(depth))
		if v.Default {
			b.WriteString("default ")
		}
		if v.ReadOnly {
			b.WriteString("readonly ")
		}
		b.WriteString("property ")
		b.WriteString(v.Type)
		b.WriteByte(' ')
		if err := e.ident(b, v.Name); err != nil {
			return err
		}
		if v.HasValue {
			b.WriteString(": ")
			if err := e.emitValue(b, v.Value, depth); err != nil {
				return err
			}
		}
		b.WriteByte('\n')
		return nil
	case *qmlast.Assignment:
		b.WriteString(indent(depth))
		if err := e.ident(b, v.Target); err != nil {
			return err
		}
		b.WriteString(": ")
		if err := e.emitValue(b, v.Value, depth); err != nil {
			return err
		}
		b.WriteByte('\n')
		return nil
	case *qmlast.Function:
		b.WriteString(indent(depth))
		b.WriteString("function ")
		if err := e.ident(b, v.Name); err != nil {
			return err
		}
		b.WriteByte('(')
		emitArgs(b, v.Args)
		// The body stream carries its own Newline tokens; adding more here
		// would change the body on re-parse.
		b.WriteString(") {")
		if err := e.emitStream(b, v.Body); err != nil {
			return err
		}
		b.WriteString(indent(depth))
		b.WriteString("}\n")
		return nil
	case *qmlast.Signal:
		b.WriteString(indent(depth))
		b.WriteString("signal ")
		if err := e.ident(b, v.Name); err != nil {
			return err
		}
		b.WriteByte('(')
		emitArgs(b, v.Args)
		b.WriteString(")\n")
		return nil
	case *qmlast.Enum:
		b.WriteString(indent(depth))
		b.WriteString("enum ")
		if err := e.ident(b, v.Name); err != nil {
			return err
		}
		b.WriteString(" {\n")
		for i, p := range v.Values {
			b.WriteString(indent(depth + 1))
			b.WriteString(p.Name)
			fmt.Fprintf(b, " = %d", p.Value)
			if i != len(v.Values)-1 {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		b.WriteString(indent(depth))
		b.WriteString("}\n")
		return nil
	case *qmlast.SlotReference:
		return e.emitChildSlot(b, v.Name, depth)
	case *qmlast.HashReference:
		b.WriteString(indent(depth))
		if e.Resolver != nil {
			if s, ok := e.Resolver.LookupHash(v.Hash); ok {
				b.WriteString(s)
				b.WriteByte('\n')
				return nil
			}
		}
		fmt.Fprintf(b, "~&%d&~\n", v.Hash)
		return nil
	default:
		return fmt.Errorf("qmlemit: unknown child type %T", c)
	}
}

func (e *Emitter) emitChildSlot(b *strings.Builder, name string, depth int) error {
	if e.Resolver != nil {
		if children, ok := e.Resolver.ResolveChildSlot(name); ok {
			return e.emitChildren(b, children, depth)
		}
	}
	if e.RetainUnboundSlots {
		b.WriteString(indent(depth))
		fmt.Fprintf(b, "~{%s}~\n", name)
		return nil
	}
	return &EmitError{Kind: "slot", Name: name}
}

func (e *Emitter) emitValue(b *strings.Builder, v qmlast.PropertyValue, depth int) error {
	switch {
	case v.Object != nil:
		return e.emitObject(b, v.Object, depth)
	case v.NamedObject != nil:
		if err := e.ident(b, v.NamedObject.Name); err != nil {
			return err
		}
		b.WriteString(": ")
		return e.emitObject(b, v.NamedObject.Object, depth)
	case v.Stream != nil:
		return e.emitStream(b, *v.Stream)
	default:
		return fmt.Errorf("qmlemit: empty property value")
	}
}

func emitArgs(b *strings.Builder, args []qmlast.Arg) {
	for i, a := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		if a.Type != "" {
			b.WriteString(a.Type)
			b.WriteByte(' ')
		}
		b.WriteString(a.Name)
	}
}

func indent(depth int) string {
	return strings.Repeat(indentUnit, depth)
}
