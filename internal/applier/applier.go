package applier

import (
	"fmt"
	"strings"

	"github.com/oxhq/qmldiff/internal/diag"
	"github.com/oxhq/qmldiff/internal/diffsyntax"
	"github.com/oxhq/qmldiff/internal/hashtab"
	"github.com/oxhq/qmldiff/internal/qmlast"
	"github.com/oxhq/qmldiff/internal/qmlparse"
	"github.com/oxhq/qmldiff/internal/selector"
)

// SupportedVersion is the patch-language version this build understands.
const SupportedVersion = "1"

// Applier runs a parsed patch Program's AFFECT blocks against QML files.
// It holds no per-file state itself; ApplyFile is safe to call repeatedly
// against different Files.
type Applier struct {
	Slots     *SlotSet
	Templates *TemplateSet
}

// New builds an Applier from a parsed patch Program, resolving its
// top-level SLOT/TEMPLATE definitions.
func New(prog *diffsyntax.Program) (*Applier, error) {
	slots, err := NewSlotSet(prog.Slots)
	if err != nil {
		return nil, err
	}
	return &Applier{
		Slots:     slots,
		Templates: NewTemplateSet(prog.Templates),
	}, nil
}

// ApplyFile runs every AffectBlock of prog whose selector names filename
// (literally or by hash) against file, mutating it in place. Each AFFECT
// block is transactional: if any of its statements fails, the
// file's objects are rolled back to their state before that block ran, and
// the error is returned without running later AFFECT blocks of prog.
func (a *Applier) ApplyFile(prog *diffsyntax.Program, filename string, file *qmlast.File) error {
	if prog.Version == nil {
		return diag.VersionUnsupported(filename, "(none)", SupportedVersion)
	}
	if prog.Version.Version != SupportedVersion {
		return diag.VersionUnsupported(filename, prog.Version.Version, SupportedVersion)
	}
	for _, block := range prog.Affects {
		if !affectMatches(block.File, filename) {
			continue
		}
		before := cloneObjects(file.Objects)
		c := &ctx{applier: a, file: file, filename: filename}
		root := &frame{list: selector.FileRoots{File: file}}
		if err := c.runStatements(root, block.Statements); err != nil {
			file.Objects = before
			return err
		}
	}
	return nil
}

func cloneObjects(objs []*qmlast.Object) []*qmlast.Object {
	out := make([]*qmlast.Object, len(objs))
	for i, o := range objs {
		out[i] = cloneObject(o)
	}
	return out
}

func affectMatches(sel diffsyntax.AffectSelector, filename string) bool {
	if sel.Hashed {
		return hashtab.Hash(filename) == sel.Hash
	}
	return sel.Literal == filename
}

// AffectsFile reports whether any AFFECT block of prog names filename,
// exported for callers (abi.is_modified) that need to answer that question
// without running the patch.
func AffectsFile(prog *diffsyntax.Program, filename string) bool {
	for _, block := range prog.Affects {
		if affectMatches(block.File, filename) {
			return true
		}
	}
	return false
}

// ctx carries the per-ApplyFile state runStatement needs beyond the
// current frame: the target File (for IMPORT) and the slot/template
// registries (for INSERT SLOT/TEMPLATE).
type ctx struct {
	applier  *Applier
	file     *qmlast.File
	filename string
}

// frame is the applier's current cursor position. Object mode (list
// non-nil) is an Object's (or the File's root) child list plus an
// insertion cursor, mirroring "cursor as index, not pointer".
// Leaf mode (leaf non-nil) holds a matched non-object-bearing child
// (Function/PropertyDecl/Assignment/Signal/Enum) for REBUILD/REDEFINE,
// which operate on a property's token stream rather than a child list.
type frame struct {
	list   selector.ChildList
	cursor int
	leaf   qmlast.Child
}

var engine selector.Engine

func (c *ctx) runStatements(f *frame, stmts []diffsyntax.Statement) error {
	for _, s := range stmts {
		if err := c.runStatement(f, s); err != nil {
			return err
		}
	}
	return nil
}

func (c *ctx) runStatement(f *frame, s diffsyntax.Statement) error {
	switch v := s.(type) {
	case *diffsyntax.ImportDirective:
		c.file.Imports = append(c.file.Imports, qmlast.Import{
			Name: v.Name, Version: v.Version, Alias: v.Alias,
		})
		return nil
	case *diffsyntax.TraverseBlock:
		return c.runTraverse(f, v)
	case *diffsyntax.AssertStmt:
		return c.runAssert(f, v)
	case *diffsyntax.LocateStmt:
		return c.runLocate(f, v)
	case *diffsyntax.InsertStmt:
		return c.runInsert(f, v)
	case *diffsyntax.RemoveStmt:
		return c.runRemove(f, v)
	case *diffsyntax.ReplaceStmt:
		return c.runReplace(f, v)
	case *diffsyntax.ReplicateBlock:
		return c.runReplicate(f, v)
	case *diffsyntax.RenameStmt:
		return c.runRename(f, v)
	case *diffsyntax.StreamRewriteStmt:
		return c.runStreamRewrite(f, v)
	default:
		return fmt.Errorf("applier: unhandled statement %T", s)
	}
}

func (c *ctx) requireList(f *frame, directive string) (selector.ChildList, error) {
	if f.list == nil {
		return nil, diag.TypeMismatch(c.filename, directive+": not valid on a leaf node")
	}
	return f.list, nil
}

func (c *ctx) matchOne(list selector.ChildList, sel diffsyntax.Selector) (selector.Match, error) {
	matches := engine.Match(list, sel)
	switch len(matches) {
	case 0:
		return selector.Match{}, diag.NoMatch(c.filename, selectorString(sel))
	case 1:
		return matches[0], nil
	default:
		return selector.Match{}, diag.Ambiguous(c.filename, selectorString(sel), len(matches))
	}
}

// runTraverse keeps TRAVERSE's selector matches as a candidate set and
// defers committing to one of them until the first statement that isn't
// an ASSERT runs. A leading run of ASSERTs filters that candidate set to
// those whose own descended children contain a match for the ASSERT's
// selector, so "TRAVERSE Foo / ASSERT Bar" disambiguates an
// otherwise-ambiguous TRAVERSE (by keeping only candidates containing a
// Bar) instead of raising SelectorAmbiguous before ASSERT ever runs.
func (c *ctx) runTraverse(f *frame, v *diffsyntax.TraverseBlock) error {
	list, err := c.requireList(f, "TRAVERSE")
	if err != nil {
		return err
	}
	candidates := engine.Match(list, v.Selector)
	if len(candidates) == 0 {
		return diag.NoMatch(c.filename, selectorString(v.Selector))
	}
	var child frame
	committed := false
	for _, s := range v.Statements {
		if !committed {
			if a, ok := s.(*diffsyntax.AssertStmt); ok {
				candidates = filterContaining(candidates, a.Selector)
				if len(candidates) == 0 {
					return diag.NoMatch(c.filename, selectorString(a.Selector))
				}
				continue
			}
			if len(candidates) > 1 {
				return diag.Ambiguous(c.filename, selectorString(v.Selector), len(candidates))
			}
			child = commitFrame(candidates[0])
			committed = true
		}
		if err := c.runStatement(&child, s); err != nil {
			return err
		}
	}
	if !committed && len(candidates) > 1 {
		return diag.Ambiguous(c.filename, selectorString(v.Selector), len(candidates))
	}
	return nil
}

// commitFrame turns a single resolved Match into the frame its block's
// statements run against: descended children for an object-bearing
// match, or the leaf itself for REBUILD/REDEFINE targets.
func commitFrame(m selector.Match) frame {
	if obj, ok := selector.ObjectOf(m.Child); ok {
		return frame{list: selector.ObjectChildren{Obj: obj}}
	}
	return frame{leaf: m.Child}
}

// filterContaining keeps the candidates whose own children contain at
// least one match for sel, implementing ASSERT's "filter current
// TRAVERSE's candidate set to those containing a match for sel" rule.
// A leaf candidate (no child list to search) never contains a match.
func filterContaining(candidates []selector.Match, sel diffsyntax.Selector) []selector.Match {
	out := make([]selector.Match, 0, len(candidates))
	for _, m := range candidates {
		obj, ok := selector.ObjectOf(m.Child)
		if !ok {
			continue
		}
		if len(engine.Match(selector.ObjectChildren{Obj: obj}, sel)) > 0 {
			out = append(out, m)
		}
	}
	return out
}

func (c *ctx) runAssert(f *frame, v *diffsyntax.AssertStmt) error {
	list, err := c.requireList(f, "ASSERT")
	if err != nil {
		return err
	}
	if len(engine.Match(list, v.Selector)) == 0 {
		return diag.NoMatch(c.filename, selectorString(v.Selector))
	}
	return nil
}

func (c *ctx) runLocate(f *frame, v *diffsyntax.LocateStmt) error {
	list, err := c.requireList(f, "LOCATE")
	if err != nil {
		return err
	}
	if v.All {
		if v.Before {
			f.cursor = 0
		} else {
			f.cursor = list.Len()
		}
		return nil
	}
	m, err := c.matchOne(list, v.Selector)
	if err != nil {
		return err
	}
	if v.Before {
		f.cursor = m.Index
	} else {
		f.cursor = m.Index + 1
	}
	return nil
}

func (c *ctx) runInsert(f *frame, v *diffsyntax.InsertStmt) error {
	list, err := c.requireList(f, "INSERT")
	if err != nil {
		return err
	}
	var children []qmlast.Child
	switch v.Kind {
	case diffsyntax.InsertQML:
		children, err = qmlparse.ParseChildren([]byte(v.QML))
		if err != nil {
			return diag.Parse(c.filename, 0, 0, err.Error())
		}
	case diffsyntax.InsertSlot:
		children, err = c.applier.Slots.Expand(v.SlotName)
		if err != nil {
			return diag.TypeMismatch(c.filename, err.Error())
		}
	case diffsyntax.InsertTemplate:
		children, err = c.applier.Templates.Instantiate(v.TemplateName, v.TemplateArgs)
		if err != nil {
			return diag.TypeMismatch(c.filename, err.Error())
		}
	}
	list.Insert(f.cursor, children...)
	f.cursor += len(children)
	return nil
}

func (c *ctx) runRemove(f *frame, v *diffsyntax.RemoveStmt) error {
	list, err := c.requireList(f, "REMOVE")
	if err != nil {
		return err
	}
	matches := engine.Match(list, v.Selector)
	if len(matches) == 0 {
		return diag.NoMatch(c.filename, selectorString(v.Selector))
	}
	for i := len(matches) - 1; i >= 0; i-- {
		list.Remove(matches[i].Index)
	}
	return nil
}

func (c *ctx) runReplace(f *frame, v *diffsyntax.ReplaceStmt) error {
	list, err := c.requireList(f, "REPLACE")
	if err != nil {
		return err
	}
	m, err := c.matchOne(list, v.Selector)
	if err != nil {
		return err
	}
	children, err := qmlparse.ParseChildren([]byte(v.QML))
	if err != nil {
		return diag.Parse(c.filename, 0, 0, err.Error())
	}
	list.Remove(m.Index)
	list.Insert(m.Index, children...)
	return nil
}

func (c *ctx) runReplicate(f *frame, v *diffsyntax.ReplicateBlock) error {
	list, err := c.requireList(f, "REPLICATE")
	if err != nil {
		return err
	}
	m, err := c.matchOne(list, v.Selector)
	if err != nil {
		return err
	}
	clone := cloneChild(m.Child)
	obj, ok := selector.ObjectOf(clone)
	if !ok {
		return diag.TypeMismatch(c.filename, "REPLICATE: selector matched a node with no children")
	}
	child := frame{list: selector.ObjectChildren{Obj: obj}}
	if err := c.runStatements(&child, v.Statements); err != nil {
		return err
	}
	list.Insert(m.Index+1, clone)
	return nil
}

func (c *ctx) runRename(f *frame, v *diffsyntax.RenameStmt) error {
	list, err := c.requireList(f, "RENAME")
	if err != nil {
		return err
	}
	m, err := c.matchOne(list, v.Selector)
	if err != nil {
		return err
	}
	newName := qmlast.Lit(v.NewName)
	switch n := m.Child.(type) {
	case *qmlast.NamedObjectDecl:
		n.Name = newName
	case *qmlast.Function:
		n.Name = newName
	case *qmlast.Signal:
		n.Name = newName
	case *qmlast.Enum:
		n.Name = newName
	case *qmlast.PropertyDecl:
		n.Name = newName
	case *qmlast.Assignment:
		n.Target = newName
	default:
		return diag.TypeMismatch(c.filename, "RENAME: selector matched a node with no identifier")
	}
	return nil
}

func (c *ctx) runStreamRewrite(f *frame, v *diffsyntax.StreamRewriteStmt) error {
	if f.leaf == nil {
		return diag.TypeMismatch(c.filename, "REBUILD/REDEFINE: not valid on a child list, traverse to a leaf first")
	}
	return applyStreamRewrite(f.leaf, v)
}

// selectorString renders a Selector for diagnostics. It need not round
// trip back to patch source, only be recognizable in an error message.
func selectorString(sel diffsyntax.Selector) string {
	steps := make([]string, len(sel.Steps))
	for i, st := range sel.Steps {
		s := st.TypeName
		if s == "" {
			s = "*"
		}
		for _, p := range st.Predicates {
			switch p.Kind {
			case diffsyntax.PredName:
				s += ":" + p.Name
			case diffsyntax.PredHasProp:
				s += "!" + p.Name
			case diffsyntax.PredPropEquals:
				s += "." + p.Name + "=" + p.Value.Serialize()
			case diffsyntax.PredPropContains:
				s += "." + p.Name + "~" + p.Value.Serialize()
			}
		}
		steps[i] = s
	}
	return strings.Join(steps, " > ")
}
