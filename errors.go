package uexpr

import (
	"fmt"
)

// ParseError represents an invalid input record: unknown usage
// context or malformed expression JSON.
type ParseError struct {
	Index   int    // position of the record in the input
	Expr    string // original expression text, may be empty
	Message string // error description
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in record %d: %s", e.Index, e.Message)
}

// CompileError represents a fatal compiler defect: a precedence
// invariant violation or a function name collision. Unlike unsupported
// expressions, which degrade to fallbacks, these abort the whole run
// because continuing would emit wrong code for every record.
type CompileError struct {
	Message string
	Cause   error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile error: %s", e.Message)
}

// Unwrap returns the underlying defect error.
func (e *CompileError) Unwrap() error { return e.Cause }
