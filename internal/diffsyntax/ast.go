package diffsyntax

import "github.com/oxhq/qmldiff/internal/qmlast"

// Program is the root of a parsed patch source. LOAD directives are inlined during parse and never appear
// here: their referenced file's directives are spliced in at the LOAD
// site's position.
type Program struct {
	Version   *VersionDecl
	Affects   []*AffectBlock
	Slots     []*SlotDefinition
	Templates []*TemplateDefinition
}

// VersionDecl records the "VERSION <n>" directive. A patch program missing
// one, or naming a version this build does not support, is a
// VersionUnsupported diagnostic (internal/diag), not a parse error.
type VersionDecl struct {
	Version string
}

// AffectSelector names the QML file a block of statements applies to,
// either literally or by identifier hash (so a patch can target a file
// whose name has itself been obfuscated).
type AffectSelector struct {
	Literal string
	Hashed  bool
	Hash    uint64
}

// AffectBlock is "AFFECT <file> ... END AFFECT": an ordered list of
// statements applied to one target file's AST.
type AffectBlock struct {
	File       AffectSelector
	Statements []Statement
}

// SlotDefinition is a top-level "SLOT <name> ... END SLOT": QML source
// appended to the named slot's child list. QML is kept as raw source text
// and parsed lazily (as a bare child list, not a full File) by whichever
// package resolves the slot, since a slot body may reference hash/slot
// forms that only resolve against the target hashtab.
type SlotDefinition struct {
	Name string
	QML  string
}

// TemplateDefinition is a top-level "TEMPLATE <name> ... END TEMPLATE": a
// QML fragment, parsed lazily, that may itself contain slot references
// bound from INSERT TEMPLATE arguments at instantiation time.
type TemplateDefinition struct {
	Name string
	QML  string
}

// Statement is any directive valid inside a TRAVERSE or REPLICATE block.
type Statement interface{ isStatement() }

// Selector is a '>'-separated chain of NodeSelectors,
// matched against AST children in source order with no backtracking: each
// step keeps every child that matches it, in source order, and the next
// step searches inside those children.
type Selector struct {
	Steps []NodeSelector
}

// NodeSelector is one step of a Selector: an optional type-name filter
// plus an ordered list of predicates, all of which must hold.
type NodeSelector struct {
	TypeName   string // empty means "any type"
	Predicates []Predicate
}

// PredicateKind distinguishes the four predicate forms names.
type PredicateKind int

const (
	// PredName matches a NamedObjectDecl/PropertyDecl/Function/Signal/Enum
	// whose declared identifier equals Name ( ":name" ).
	PredName PredicateKind = iota
	// PredHasProp matches an object that declares a property named Name,
	// regardless of its value ( "!prop" ).
	PredHasProp
	// PredPropEquals matches a property whose value's verbatim
	// token-stream serialization equals Value ( ".prop=value" ).
	PredPropEquals
	// PredPropContains matches a property whose value contains Value as a
	// substring ( ".prop~value" ). A value that is a single string literal
	// is compared by its unquoted content; any other value by its verbatim
	// token-stream serialization.
	PredPropContains
)

// Predicate is one bracketed/suffixed constraint on a NodeSelector step.
// Name holds the target identifier (the :name given, the !prop/.prop
// property name). Value holds the token stream to compare against for
// PredPropEquals/PredPropContains; "#id" sugar desugars to
// {Kind: PredPropEquals, Name: "id", Value: <id's token stream>}.
type Predicate struct {
	Kind  PredicateKind
	Name  string
	Value qmlast.TokenStream
}

// ImportDirective is "IMPORT <module> <version> [AS alias]" inside an
// AffectBlock, mirroring qmlast.Import.
type ImportDirective struct {
	Name    string
	Version string
	Alias   string
}

func (*ImportDirective) isStatement() {}

// TraverseBlock is "TRAVERSE <selector> ... END TRAVERSE". It may nest
// (a TraverseBlock is itself a Statement), and its selector is resolved
// relative to the cursor's current position at entry.
type TraverseBlock struct {
	Selector   Selector
	Statements []Statement
}

func (*TraverseBlock) isStatement() {}

// AssertStmt is "ASSERT <selector>": narrows the cursor's candidate set
// without committing to a single match until the first mutating
// directive runs.
type AssertStmt struct {
	Selector Selector
}

func (*AssertStmt) isStatement() {}

// LocateStmt is "LOCATE BEFORE|AFTER <selector>" or "LOCATE BEFORE|AFTER ALL",
// repositioning the cursor among the current object's children without
// mutating the tree.
type LocateStmt struct {
	Before   bool
	All      bool
	Selector Selector
}

func (*LocateStmt) isStatement() {}

// InsertKind distinguishes the three INSERT forms.
type InsertKind int

const (
	InsertQML InsertKind = iota
	InsertSlot
	InsertTemplate
)

// TemplateArg binds one of a template's internal slot holes to a literal
// QML fragment, given as "<name> = { ... }" inside "INSERT TEMPLATE".
type TemplateArg struct {
	Name string
	QML  string
}

// InsertStmt is "INSERT { ... }", "INSERT SLOT <name>", or
// "INSERT TEMPLATE <name> [WITH <args>]", spliced at the cursor.
type InsertStmt struct {
	Kind         InsertKind
	QML          string // InsertQML
	SlotName     string // InsertSlot
	TemplateName string // InsertTemplate
	TemplateArgs []TemplateArg
}

func (*InsertStmt) isStatement() {}

// RemoveStmt is "REMOVE <selector>": deletes the matched child/children.
type RemoveStmt struct {
	Selector Selector
}

func (*RemoveStmt) isStatement() {}

// ReplaceStmt is "REPLACE <selector> WITH { ... }".
type ReplaceStmt struct {
	Selector Selector
	QML      string
}

func (*ReplaceStmt) isStatement() {}

// ReplicateBlock is "REPLICATE <selector> ... END REPLICATE": clones the
// matched node, runs the nested statements against the clone, then splices
// the result into the parent at the cursor on END REPLICATE.
type ReplicateBlock struct {
	Selector   Selector
	Statements []Statement
}

func (*ReplicateBlock) isStatement() {}

// RenameStmt is "RENAME <selector> TO <name>".
type RenameStmt struct {
	Selector Selector
	NewName  string
}

func (*RenameStmt) isStatement() {}

// RewriteStmt is one directive of the inner token-stream rewriter used by
// REBUILD/REDEFINE bodies. It operates on a flat token
// stream rather than the object-children AST.
type RewriteStmt interface{ isRewriteStmt() }

// RWLocate is "LOCATE BEFORE|AFTER <stream>" or "LOCATE BEFORE|AFTER ALL" within
// a token-stream rewrite, positioning the inner cursor and setting the
// LOCATED slot used by RWRemove/RWReplace.
type RWLocate struct {
	Before bool
	All    bool
	Stream qmlast.TokenStream
}

func (*RWLocate) isRewriteStmt() {}

// RWInsert splices a literal token stream at the inner cursor.
type RWInsert struct {
	Stream qmlast.TokenStream
}

func (*RWInsert) isRewriteStmt() {}

// RWRemove is "REMOVE LOCATED" (removes the span set by the last LOCATE)
// or "REMOVE <stream>" (removes the first literal occurrence).
type RWRemove struct {
	Located bool
	Stream  qmlast.TokenStream
}

func (*RWRemove) isRewriteStmt() {}

// RWRemoveUntil is "REMOVE UNTIL <stream>" or "REMOVE UNTIL END": deletes
// from the cursor up to (not including) the next occurrence of Stream, or
// to the end of the enclosing stream.
type RWRemoveUntil struct {
	End    bool
	Stream qmlast.TokenStream
}

func (*RWRemoveUntil) isRewriteStmt() {}

// RWReplace is "REPLACE LOCATED WITH <stream>" or
// "REPLACE <stream> [UNTIL <stream>|UNTIL END] WITH <stream>": replaces
// every structural occurrence of Needle found from the cursor onward,
// scoped to [cursor, Until) when UntilSet, or to the end of the enclosing
// stream otherwise (the default, and what an explicit "UNTIL END" means).
type RWReplace struct {
	Located  bool
	Needle   qmlast.TokenStream
	UntilSet bool
	Until    qmlast.TokenStream
	With     qmlast.TokenStream
}

func (*RWReplace) isRewriteStmt() {}

// ArgOp distinguishes the ARGUMENT sub-directive forms used to edit a
// function's argument list from within REBUILD/REDEFINE.
type ArgOp int

const (
	ArgInsert ArgOp = iota
	ArgRemove
	ArgRename
)

// RWArgument is "ARGUMENT INSERT <name> AT <n>", "ARGUMENT REMOVE <name>",
// or "ARGUMENT RENAME <name> TO <newname>".
type RWArgument struct {
	Op      ArgOp
	Name    string
	At      int
	NewName string
}

func (*RWArgument) isRewriteStmt() {}

// StreamRewriteStmt is "REBUILD <prop> ... END REBUILD" or
// "REDEFINE <prop> ... END REDEFINE": REBUILD edits the existing stream in
// place via the inner rewriter directives; REDEFINE discards it and runs
// the inner directives against an empty stream.
type StreamRewriteStmt struct {
	Redefine bool
	Property string
	Inner    []RewriteStmt
}

func (*StreamRewriteStmt) isStatement() {}
