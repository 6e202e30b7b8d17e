// Package codegen emits Go source for normalized expressions.
//
// One expression becomes one function. The calling convention is fixed
// by the expression's usage context:
//
//	value transform  func(val rt.Value) (rt.Value, error)
//	display format   func(val rt.Value) string
//	boolean gate     func(val rt.Value, ctx *rt.EvalContext) bool
//
// Transforms propagate runtime failures to the caller. Formats and
// gates absorb them: a format falls back to raw stringification of the
// input and a gate evaluates to false, so display and dispatch never
// abort a file.
package codegen

// ExprType is the usage context of an expression, which selects the
// calling convention of the generated function.
type ExprType uint8

const (
	// ValueTransform converts a raw tag value into a logical one.
	ValueTransform ExprType = iota
	// DisplayFormat renders a logical value for humans.
	DisplayFormat
	// BooleanGate selects a variant tag definition during dispatch.
	BooleanGate
)

var exprTypeNames = [...]string{
	ValueTransform: "ValueConv",
	DisplayFormat:  "PrintConv",
	BooleanGate:    "Condition",
}

// String returns the upstream tag-table name of the context.
func (t ExprType) String() string {
	if int(t) < len(exprTypeNames) {
		return exprTypeNames[t]
	}
	return "Unknown"
}

// Signature returns the Go parameter and result list of the context's
// calling convention.
func (t ExprType) Signature() string {
	switch t {
	case ValueTransform:
		return "(val rt.Value) (rt.Value, error)"
	case DisplayFormat:
		return "(val rt.Value) string"
	default:
		return "(val rt.Value, ctx *rt.EvalContext) bool"
	}
}
