package applier

import (
	"fmt"

	"github.com/oxhq/qmldiff/internal/diffsyntax"
	"github.com/oxhq/qmldiff/internal/qmlast"
)

// rewriteState is the inner token-stream rewriter's working state for one
// REBUILD/REDEFINE body: a flat element slice, a cursor, and
// the span set by the most recent LOCATE, consumed by REMOVE LOCATED /
// REPLACE LOCATED WITH. Matching against nested Groups is atomic — a needle
// never matches partway inside a group's interior, only a run of elements
// at the group's own nesting level.
type rewriteState struct {
	elems        []qmlast.StreamElem
	cursor       int
	locatedStart int
	locatedEnd   int
	hasLocated   bool
}

func (s *rewriteState) shift(at, delta int) {
	if s.hasLocated {
		if s.locatedStart >= at {
			s.locatedStart += delta
		}
		if s.locatedEnd >= at {
			s.locatedEnd += delta
		}
	}
}

func (s *rewriteState) insert(at int, elems []qmlast.StreamElem) {
	out := make([]qmlast.StreamElem, 0, len(s.elems)+len(elems))
	out = append(out, s.elems[:at]...)
	out = append(out, elems...)
	out = append(out, s.elems[at:]...)
	s.elems = out
	s.shift(at, len(elems))
}

func (s *rewriteState) removeRange(start, end int) {
	s.elems = append(append([]qmlast.StreamElem{}, s.elems[:start]...), s.elems[end:]...)
	s.shift(end, start-end)
	s.hasLocated = false
}

// findSeq returns the index of the first occurrence of needle in haystack
// at or after start, matching each candidate window with qmlast.ElemsEqual
// so nested Groups compare structurally rather than by flattened tokens.
func findSeq(haystack, needle []qmlast.StreamElem, start int) (int, bool) {
	if len(needle) == 0 {
		return start, true
	}
	for i := start; i+len(needle) <= len(haystack); i++ {
		if qmlast.ElemsEqual(haystack[i:i+len(needle)], needle) {
			return i, true
		}
	}
	return -1, false
}

// applyStreamRewrite runs a REBUILD/REDEFINE's inner directives against
// leaf's targeted property and writes the result back.
func applyStreamRewrite(leaf qmlast.Child, v *diffsyntax.StreamRewriteStmt) error {
	switch n := leaf.(type) {
	case *qmlast.Function:
		state := newRewriteState(n.Body.Elems, v.Redefine)
		var args *[]qmlast.Arg = &n.Args
		if err := runRewrite(state, v.Inner, args); err != nil {
			return err
		}
		n.Body = qmlast.TokenStream{Elems: state.elems}
		return nil
	case *qmlast.PropertyDecl:
		state := newRewriteState(streamElems(n.Value.Stream), v.Redefine)
		if err := runRewrite(state, v.Inner, nil); err != nil {
			return err
		}
		n.Value.Stream = &qmlast.TokenStream{Elems: state.elems}
		n.HasValue = true
		return nil
	case *qmlast.Assignment:
		state := newRewriteState(streamElems(n.Value.Stream), v.Redefine)
		if err := runRewrite(state, v.Inner, nil); err != nil {
			return err
		}
		n.Value.Stream = &qmlast.TokenStream{Elems: state.elems}
		return nil
	default:
		return fmt.Errorf("applier: REBUILD/REDEFINE: %T has no rewritable token stream", leaf)
	}
}

func streamElems(ts *qmlast.TokenStream) []qmlast.StreamElem {
	if ts == nil {
		return nil
	}
	return ts.Elems
}

func newRewriteState(existing []qmlast.StreamElem, redefine bool) *rewriteState {
	if redefine {
		return &rewriteState{}
	}
	return &rewriteState{elems: cloneElems(existing)}
}

func runRewrite(state *rewriteState, inner []diffsyntax.RewriteStmt, args *[]qmlast.Arg) error {
	for _, stmt := range inner {
		if err := runRewriteStmt(state, stmt, args); err != nil {
			return err
		}
	}
	return nil
}

func runRewriteStmt(state *rewriteState, stmt diffsyntax.RewriteStmt, args *[]qmlast.Arg) error {
	switch v := stmt.(type) {
	case *diffsyntax.RWLocate:
		if v.All {
			if v.Before {
				state.cursor = 0
			} else {
				state.cursor = len(state.elems)
			}
			state.hasLocated = false
			return nil
		}
		idx, ok := findSeq(state.elems, v.Stream.Elems, 0)
		if !ok {
			return fmt.Errorf("applier: LOCATE: no occurrence of %q", v.Stream.Serialize())
		}
		state.locatedStart, state.locatedEnd, state.hasLocated = idx, idx+len(v.Stream.Elems), true
		if v.Before {
			state.cursor = idx
		} else {
			state.cursor = idx + len(v.Stream.Elems)
		}
		return nil

	case *diffsyntax.RWInsert:
		state.insert(state.cursor, v.Stream.Elems)
		state.cursor += len(v.Stream.Elems)
		return nil

	case *diffsyntax.RWRemove:
		if v.Located {
			if !state.hasLocated {
				return fmt.Errorf("applier: REMOVE LOCATED: no prior LOCATE in this block")
			}
			state.removeRange(state.locatedStart, state.locatedEnd)
			return nil
		}
		idx, ok := findSeq(state.elems, v.Stream.Elems, 0)
		if !ok {
			return fmt.Errorf("applier: REMOVE: no occurrence of %q", v.Stream.Serialize())
		}
		state.cursor = idx
		state.removeRange(idx, idx+len(v.Stream.Elems))
		return nil

	case *diffsyntax.RWRemoveUntil:
		if v.End {
			state.removeRange(state.cursor, len(state.elems))
			return nil
		}
		idx, ok := findSeq(state.elems, v.Stream.Elems, state.cursor)
		if !ok {
			return fmt.Errorf("applier: REMOVE UNTIL: no occurrence of %q after cursor", v.Stream.Serialize())
		}
		state.removeRange(state.cursor, idx)
		return nil

	case *diffsyntax.RWReplace:
		if v.Located {
			if !state.hasLocated {
				return fmt.Errorf("applier: REPLACE LOCATED: no prior LOCATE in this block")
			}
			start := state.locatedStart
			state.removeRange(state.locatedStart, state.locatedEnd)
			state.insert(start, v.With.Elems)
			state.cursor = start + len(v.With.Elems)
			return nil
		}
		limit := len(state.elems)
		if v.UntilSet {
			idx, ok := findSeq(state.elems, v.Until.Elems, state.cursor)
			if !ok {
				return fmt.Errorf("applier: REPLACE ... UNTIL: no occurrence of %q after cursor", v.Until.Serialize())
			}
			limit = idx
		}
		pos := state.cursor
		found := false
		for {
			idx, ok := findSeq(state.elems[:limit], v.Needle.Elems, pos)
			if !ok {
				break
			}
			found = true
			state.removeRange(idx, idx+len(v.Needle.Elems))
			state.insert(idx, v.With.Elems)
			limit += len(v.With.Elems) - len(v.Needle.Elems)
			pos = idx + len(v.With.Elems)
		}
		if !found {
			return fmt.Errorf("applier: REPLACE: no occurrence of %q", v.Needle.Serialize())
		}
		state.cursor = pos
		return nil

	case *diffsyntax.RWArgument:
		return runArgument(v, args)

	default:
		return fmt.Errorf("applier: unhandled rewrite statement %T", stmt)
	}
}

func runArgument(v *diffsyntax.RWArgument, args *[]qmlast.Arg) error {
	if args == nil {
		return fmt.Errorf("applier: ARGUMENT: only valid inside a function's REBUILD/REDEFINE")
	}
	switch v.Op {
	case diffsyntax.ArgInsert:
		at := v.At
		if at < 0 || at > len(*args) {
			at = len(*args)
		}
		out := make([]qmlast.Arg, 0, len(*args)+1)
		out = append(out, (*args)[:at]...)
		out = append(out, qmlast.Arg{Name: v.Name})
		out = append(out, (*args)[at:]...)
		*args = out
		return nil
	case diffsyntax.ArgRemove:
		for i, a := range *args {
			if a.Name == v.Name {
				*args = append((*args)[:i], (*args)[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("applier: ARGUMENT REMOVE: no argument named %q", v.Name)
	case diffsyntax.ArgRename:
		for i, a := range *args {
			if a.Name == v.Name {
				(*args)[i].Name = v.NewName
				return nil
			}
		}
		return fmt.Errorf("applier: ARGUMENT RENAME: no argument named %q", v.Name)
	default:
		return fmt.Errorf("applier: unhandled argument op %v", v.Op)
	}
}
