// Package rt is the runtime-support library for generated conversion
// functions.
//
// Generated code never re-implements Perl semantics inline: every
// language-level primitive (scalar coercion, string functions, sprintf,
// pack/unpack, regex substitution) is a call into this package. The
// package is public because emitted modules import it.
package rt

import (
	"math"
	"strconv"
	"strings"
)

// Kind represents the type of a runtime value.
type Kind uint8

const (
	KindUndef  Kind = iota // Perl undef; also the zero Value
	KindNum                // numeric scalar
	KindStr                // string scalar
	KindNumStr             // numeric string from binary extraction
	KindList               // flattened list (split/unpack results)
)

// String returns a string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindUndef:
		return "undef"
	case KindNum:
		return "num"
	case KindStr:
		return "str"
	case KindNumStr:
		return "numstr"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Value represents a Perl scalar (or flattened list) at runtime.
// Uses the tagged union pattern; values are passed by value.
// The zero Value is undef.
type Value struct {
	kind Kind
	num  float64
	str  string
	list []Value
}

// Constructors

// Undef returns the undefined value.
func Undef() Value {
	return Value{kind: KindUndef}
}

// Num creates a numeric value.
func Num(n float64) Value {
	return Value{kind: KindNum, num: n}
}

// Str creates a string value.
func Str(s string) Value {
	return Value{kind: KindStr, str: s}
}

// NumStr creates a numeric string value.
// Extracted tag bytes arrive as strings that behave numerically on
// demand; the numeric value is parsed lazily on first AsNum call.
func NumStr(s string) Value {
	return Value{kind: KindNumStr, str: s}
}

// List creates a list value from the given items.
func List(items ...Value) Value {
	return Value{kind: KindList, list: items}
}

// Bool creates a numeric value from a boolean, Perl style
// (1 for true, "" for false; the empty string is falsy and
// stringifies to nothing, matching Perl's boolean results).
func Bool(b bool) Value {
	if b {
		return Num(1)
	}
	return Str("")
}

// Accessors

// Kind returns the value's type.
func (v Value) Kind() Kind { return v.kind }

// IsUndef reports whether the value is undef.
func (v Value) IsUndef() bool { return v.kind == KindUndef }

// IsNum reports whether the value is a pure number.
func (v Value) IsNum() bool { return v.kind == KindNum }

// Items returns the elements of a list value, or a single-element
// slice holding v itself for scalars. Undef yields an empty slice.
func (v Value) Items() []Value {
	switch v.kind {
	case KindList:
		return v.list
	case KindUndef:
		return nil
	default:
		return []Value{v}
	}
}

// Conversions

// AsNum returns the numeric representation of the value.
// Strings are parsed with Perl prefix rules ("12 mm" -> 12).
func (v Value) AsNum() float64 {
	switch v.kind {
	case KindNum:
		return v.num
	case KindStr, KindNumStr:
		return ParseNumPrefix(v.str)
	default: // KindUndef, KindList
		return 0
	}
}

// AsStr returns the string representation of the value.
// Numbers format the way Perl prints them (100, 0.5, 1e+20);
// lists join with spaces; undef stringifies to "".
func (v Value) AsStr() string {
	switch v.kind {
	case KindNum:
		return FormatNum(v.num)
	case KindStr, KindNumStr:
		return v.str
	case KindList:
		parts := make([]string, len(v.list))
		for i, item := range v.list {
			parts[i] = item.AsStr()
		}
		return strings.Join(parts, " ")
	default:
		return ""
	}
}

// IsTruthy reports Perl truthiness: undef, 0, "" and "0" are false,
// everything else is true.
func (v Value) IsTruthy() bool {
	switch v.kind {
	case KindNum:
		return v.num != 0
	case KindStr, KindNumStr:
		return v.str != "" && v.str != "0"
	case KindList:
		return len(v.list) > 0
	default:
		return false
	}
}

// IsNumeric reports whether the value can participate in arithmetic
// without coercion loss: numbers always, strings only when they parse
// cleanly as a number. Undef and lists are not numeric.
func (v Value) IsNumeric() bool {
	switch v.kind {
	case KindNum:
		return true
	case KindStr, KindNumStr:
		_, err := ParseNum(v.str)
		return err == nil && strings.TrimSpace(v.str) != ""
	default:
		return false
	}
}

// String returns a debug representation of the value.
func (v Value) String() string {
	switch v.kind {
	case KindNum:
		return "Num(" + FormatNum(v.num) + ")"
	case KindStr:
		return "Str(" + strconv.Quote(v.str) + ")"
	case KindNumStr:
		return "NumStr(" + strconv.Quote(v.str) + ")"
	case KindList:
		return "List(" + v.AsStr() + ")"
	default:
		return "Undef()"
	}
}

// Number parsing and formatting

// ParseNum parses a string as a number (strict parsing).
// Empty or non-numeric strings return an error.
func ParseNum(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, strconv.ErrSyntax
	}

	// Perl accepts 0x1f and 0o17 only through hex()/oct(), not numeric
	// coercion, but tag tables write plain hex literals; accept them.
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		n, err := strconv.ParseUint(s[2:], 16, 64)
		if err != nil {
			return 0, err
		}
		return float64(n), nil
	}

	if strings.Contains(s, "_") {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseFloat(s, 64)
}

// ParseNumPrefix parses a number from the beginning of a string,
// ignoring trailing garbage: "12.5 mm" -> 12.5, "abc" -> 0.
// This is Perl's numeric coercion rule.
func ParseNumPrefix(s string) float64 {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	start := i
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	gotDigit := false
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		gotDigit = true
		i++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			gotDigit = true
			i++
		}
	}
	if !gotDigit {
		return 0
	}

	end := i
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			end = i + 1
			i++
		}
	}

	n, _ := strconv.ParseFloat(s[start:end], 64)
	return n
}

// FormatNum formats a number the way Perl stringifies it.
func FormatNum(n float64) string {
	if math.IsNaN(n) {
		return "NaN"
	}
	if math.IsInf(n, 1) {
		return "Inf"
	}
	if math.IsInf(n, -1) {
		return "-Inf"
	}
	if n == math.Trunc(n) && math.Abs(n) < 1e15 {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}

// Stringify is the permissive display conversion: any value becomes a
// string, mirroring Perl's stringification. Display-format functions
// fall back to this when a construct cannot be evaluated.
func Stringify(v Value) string {
	return v.AsStr()
}
