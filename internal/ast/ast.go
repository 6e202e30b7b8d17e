// Package ast defines the normalized expression IR consumed by the code
// generator.
//
// The normalizer lowers raw parser trees into this closed set of shapes.
// Every consumer switches exhaustively over the variants below; a shape
// with no matching rule is always an explicit unsupported-construct
// error, never a best-guess emission. Adding a variant here forces every
// switch in the generator to be revisited.
//
// Node hierarchy:
//
//	Node (interface)
//	├── NumberLit, StringLit, Undef - literals
//	├── ValRef, SelfField - references
//	├── BinaryOp, Ternary, SafeDivision - operations
//	├── StringConcat, StringRepeat - string composition
//	├── FunctionCall, FormattedPrint - runtime-support calls
//	└── PostfixConditional, ConditionalAssignment - statement forms
package ast

// Node is the interface implemented by all normalized nodes.
type Node interface {
	node() // marker method to keep the variant set closed
}

// -----------------------------------------------------------------------------
// Literals and references
// -----------------------------------------------------------------------------

// NumberLit is a numeric literal.
// Examples: 25, 0.5, 0x10
type NumberLit struct {
	Value float64
	Raw   string // original source text, kept for exact emission
}

// StringLit is a string literal with quotes stripped.
type StringLit struct {
	Value string
}

// Undef is the Perl undef bareword.
type Undef struct{}

// ValRef references the tag value being converted ($val).
type ValRef struct{}

// SelfField references a processing-state field ($$self{Make}).
// Only boolean gates receive an evaluation context, so this shape is
// unsupported in the other two calling conventions.
type SelfField struct {
	Field string
}

// -----------------------------------------------------------------------------
// Operations
// -----------------------------------------------------------------------------

// BinaryOp is a binary operation with Perl operator semantics.
// Op is the Perl operator text: "+", "==", "eq", "**", "&&", ...
type BinaryOp struct {
	Op    string
	Left  Node
	Right Node
}

// Ternary is a conditional expression: Cond ? Then : Else.
type Ternary struct {
	Cond Node
	Then Node
	Else Node
}

// SafeDivision is the guarded division idiom $val ? N/$val : 0.
// The guard is structural: generated code tests the denominator before
// dividing, so division by zero on the true branch is unreachable.
type SafeDivision struct {
	Numer Node
	Denom Node
}

// -----------------------------------------------------------------------------
// String composition
// -----------------------------------------------------------------------------

// StringConcat is an n-way concatenation chain ("a" . "b" . "c").
// A chain of dots always collapses to a single node with all operands.
type StringConcat struct {
	Parts []Node
}

// StringRepeat is string repetition: Str x Count.
type StringRepeat struct {
	Str   Node
	Count Node
}

// -----------------------------------------------------------------------------
// Calls
// -----------------------------------------------------------------------------

// FunctionCall is a call into the runtime-support library.
// Name is the Perl-level function name (length, join, unpack, ...);
// the generator maps it onto an rt primitive.
type FunctionCall struct {
	Name string
	Args []Node
}

// FormattedPrint is a sprintf application.
// When RepeatCount is nonzero the format string is Format followed by
// RepeatPart repeated RepeatCount times (the "%19d" . " %3d" x 8 idiom).
type FormattedPrint struct {
	Format      Node   // format argument (usually StringLit)
	RepeatPart  string // optional repeated format suffix
	RepeatCount int    // 0 means plain sprintf
	Args        []Node
}

// -----------------------------------------------------------------------------
// Statement forms
// -----------------------------------------------------------------------------

// PostfixConditional is the two-statement idiom
// "return Value if Cond; Rest".
type PostfixConditional struct {
	Value Node
	Cond  Node
	Rest  Node
}

// ConditionalAssignment is the side-effecting idiom
// "Cond and $val OP= Amount; Result".
// Op is the compound assignment operator without "=": "-", "+", "*", "/".
type ConditionalAssignment struct {
	Cond   Node
	Op     string
	Amount Node
	Result Node
}

func (*NumberLit) node()             {}
func (*StringLit) node()             {}
func (*Undef) node()                 {}
func (*ValRef) node()                {}
func (*SelfField) node()             {}
func (*BinaryOp) node()              {}
func (*Ternary) node()               {}
func (*SafeDivision) node()          {}
func (*StringConcat) node()          {}
func (*StringRepeat) node()          {}
func (*FunctionCall) node()          {}
func (*FormattedPrint) node()        {}
func (*PostfixConditional) node()    {}
func (*ConditionalAssignment) node() {}

// Compile-time checks that every variant satisfies Node.
var (
	_ Node = (*NumberLit)(nil)
	_ Node = (*StringLit)(nil)
	_ Node = (*Undef)(nil)
	_ Node = (*ValRef)(nil)
	_ Node = (*SelfField)(nil)
	_ Node = (*BinaryOp)(nil)
	_ Node = (*Ternary)(nil)
	_ Node = (*SafeDivision)(nil)
	_ Node = (*StringConcat)(nil)
	_ Node = (*StringRepeat)(nil)
	_ Node = (*FunctionCall)(nil)
	_ Node = (*FormattedPrint)(nil)
	_ Node = (*PostfixConditional)(nil)
	_ Node = (*ConditionalAssignment)(nil)
)
