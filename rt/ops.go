package rt

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrDivisionByZero is returned by Div and Mod for a zero denominator.
var ErrDivisionByZero = errors.New("rt: division by zero")

// ErrNotImplemented is returned by fallback value transforms emitted
// for expressions the compiler has no generation rule for.
var ErrNotImplemented = errors.New("rt: conversion not implemented")

// NumError reports an operand that cannot participate in arithmetic.
// Value-transform functions surface it to the dispatcher instead of
// silently coercing the way Perl would.
type NumError struct {
	Op  string // operator text, e.g. "*"
	Val Value  // offending operand
}

func (e *NumError) Error() string {
	return fmt.Sprintf("rt: %s: operand is not numeric: %s", e.Op, e.Val)
}

func numOperand(op string, v Value) (float64, error) {
	if !v.IsNumeric() {
		return 0, &NumError{Op: op, Val: v}
	}
	return v.AsNum(), nil
}

// Arithmetic. Each operation checks both operands and returns an
// explicit error for non-numeric input; generated value transforms
// must never panic or silently default.

// Add returns a + b.
func Add(a, b Value) (Value, error) { return arith("+", a, b) }

// Sub returns a - b.
func Sub(a, b Value) (Value, error) { return arith("-", a, b) }

// Mul returns a * b.
func Mul(a, b Value) (Value, error) { return arith("*", a, b) }

func arith(op string, a, b Value) (Value, error) {
	x, err := numOperand(op, a)
	if err != nil {
		return Value{}, err
	}
	y, err := numOperand(op, b)
	if err != nil {
		return Value{}, err
	}
	switch op {
	case "+":
		return Num(x + y), nil
	case "-":
		return Num(x - y), nil
	default:
		return Num(x * y), nil
	}
}

// Div returns a / b, or ErrDivisionByZero when b is zero.
func Div(a, b Value) (Value, error) {
	x, err := numOperand("/", a)
	if err != nil {
		return Value{}, err
	}
	y, err := numOperand("/", b)
	if err != nil {
		return Value{}, err
	}
	if y == 0 {
		return Value{}, ErrDivisionByZero
	}
	return Num(x / y), nil
}

// Mod returns a % b with Perl integer modulus semantics
// (result takes the sign of the right operand).
func Mod(a, b Value) (Value, error) {
	x, err := numOperand("%", a)
	if err != nil {
		return Value{}, err
	}
	y, err := numOperand("%", b)
	if err != nil {
		return Value{}, err
	}
	yi := int64(y)
	if yi == 0 {
		return Value{}, ErrDivisionByZero
	}
	r := int64(x) % yi
	if r != 0 && (r < 0) != (yi < 0) {
		r += yi
	}
	return Num(float64(r)), nil
}

// Pow returns a ** b.
func Pow(a, b Value) (Value, error) {
	x, err := numOperand("**", a)
	if err != nil {
		return Value{}, err
	}
	y, err := numOperand("**", b)
	if err != nil {
		return Value{}, err
	}
	return Num(math.Pow(x, y)), nil
}

// Neg returns -a.
func Neg(a Value) (Value, error) {
	x, err := numOperand("unary -", a)
	if err != nil {
		return Value{}, err
	}
	return Num(-x), nil
}

// Bitwise operations coerce to 64-bit integers, Perl style.

// BitAnd returns a & b.
func BitAnd(a, b Value) (Value, error) { return bitop("&", a, b) }

// BitOr returns a | b.
func BitOr(a, b Value) (Value, error) { return bitop("|", a, b) }

// BitXor returns a ^ b.
func BitXor(a, b Value) (Value, error) { return bitop("^", a, b) }

// Shl returns a << b.
func Shl(a, b Value) (Value, error) { return bitop("<<", a, b) }

// Shr returns a >> b.
func Shr(a, b Value) (Value, error) { return bitop(">>", a, b) }

func bitop(op string, a, b Value) (Value, error) {
	x, err := numOperand(op, a)
	if err != nil {
		return Value{}, err
	}
	y, err := numOperand(op, b)
	if err != nil {
		return Value{}, err
	}
	xi, yi := uint64(int64(x)), uint64(int64(y))
	var r uint64
	switch op {
	case "&":
		r = xi & yi
	case "|":
		r = xi | yi
	case "^":
		r = xi ^ yi
	case "<<":
		r = xi << (yi & 63)
	default:
		r = xi >> (yi & 63)
	}
	return Num(float64(r)), nil
}

// Numeric comparisons (== != < > <= >=). These follow Perl coercion:
// non-numeric strings compare as 0, no error. Conditions control
// branching, not results, so permissiveness is the correct behavior.

// NumEq reports a == b numerically.
func NumEq(a, b Value) bool { return a.AsNum() == b.AsNum() }

// NumNe reports a != b numerically.
func NumNe(a, b Value) bool { return a.AsNum() != b.AsNum() }

// NumLt reports a < b numerically.
func NumLt(a, b Value) bool { return a.AsNum() < b.AsNum() }

// NumGt reports a > b numerically.
func NumGt(a, b Value) bool { return a.AsNum() > b.AsNum() }

// NumLe reports a <= b numerically.
func NumLe(a, b Value) bool { return a.AsNum() <= b.AsNum() }

// NumGe reports a >= b numerically.
func NumGe(a, b Value) bool { return a.AsNum() >= b.AsNum() }

// String comparisons (eq ne lt gt le ge).

// StrEq reports a eq b.
func StrEq(a, b Value) bool { return a.AsStr() == b.AsStr() }

// StrNe reports a ne b.
func StrNe(a, b Value) bool { return a.AsStr() != b.AsStr() }

// StrLt reports a lt b.
func StrLt(a, b Value) bool { return a.AsStr() < b.AsStr() }

// StrGt reports a gt b.
func StrGt(a, b Value) bool { return a.AsStr() > b.AsStr() }

// StrLe reports a le b.
func StrLe(a, b Value) bool { return a.AsStr() <= b.AsStr() }

// StrGe reports a ge b.
func StrGe(a, b Value) bool { return a.AsStr() >= b.AsStr() }

// IsTruthy reports Perl truthiness of v. Exported free function so
// generated code reads naturally at call sites.
func IsTruthy(v Value) bool { return v.IsTruthy() }

// IsDefined reports whether v is defined.
func IsDefined(v Value) bool { return !v.IsUndef() }

// String composition

// Concat concatenates all parts as strings, as a single fold rather
// than repeated pairwise allocation.
func Concat(parts ...Value) Value {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(p.AsStr())
	}
	return Str(b.String())
}

// RepeatStr returns s repeated count times (the Perl x operator).
// A count below one yields the empty string.
func RepeatStr(s, count Value) Value {
	n := int(count.AsNum())
	if n <= 0 {
		return Str("")
	}
	return Str(strings.Repeat(s.AsStr(), n))
}

// Guarded arithmetic idioms

// SafeDivision evaluates numer/denom with the structural zero guard of
// the Perl idiom "$val ? N / $val : 0": a falsy denominator yields 0
// without ever dividing.
func SafeDivision(numer, denom Value) Value {
	if !denom.IsTruthy() {
		return Num(0)
	}
	return Num(numer.AsNum() / denom.AsNum())
}

// SafeReciprocal is SafeDivision with a numerator of 1.
func SafeReciprocal(denom Value) Value {
	return SafeDivision(Num(1), denom)
}
