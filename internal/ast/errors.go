package ast

import "fmt"

// UnsupportedError reports an expression shape with no normalization or
// generation rule. It is never fatal: the registry converts it into a
// context-appropriate fallback function and a coverage statistic.
type UnsupportedError struct {
	Construct string // human-readable description of the shape
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported construct: %s", e.Construct)
}

// Unsupported builds an UnsupportedError with printf formatting.
func Unsupported(format string, args ...any) error {
	return &UnsupportedError{Construct: fmt.Sprintf(format, args...)}
}
