package rt

import (
	"math"
	"strconv"
	"strings"
)

// Perl builtin primitives called by generated code. All of these are
// infallible: display formatting and boolean gates must never see an
// error escape, and the value-transform wrappers handle failure at the
// operator level before these are reached.

// Length returns the byte length of the value's string form.
// length(undef) is undef, as in Perl.
func Length(v Value) Value {
	if v.IsUndef() {
		return Undef()
	}
	return Num(float64(len(v.AsStr())))
}

// Int truncates toward zero.
func Int(v Value) Value {
	return Num(math.Trunc(v.AsNum()))
}

// Abs returns the absolute value.
func Abs(v Value) Value {
	return Num(math.Abs(v.AsNum()))
}

// Sqrt returns the square root.
func Sqrt(v Value) Value {
	return Num(math.Sqrt(v.AsNum()))
}

// Exp returns e**v.
func Exp(v Value) Value {
	return Num(math.Exp(v.AsNum()))
}

// Log returns the natural logarithm.
func Log(v Value) Value {
	return Num(math.Log(v.AsNum()))
}

// Sin returns the sine of v (radians).
func Sin(v Value) Value {
	return Num(math.Sin(v.AsNum()))
}

// Cos returns the cosine of v (radians).
func Cos(v Value) Value {
	return Num(math.Cos(v.AsNum()))
}

// Atan2 returns the arc tangent of y/x.
func Atan2(y, x Value) Value {
	return Num(math.Atan2(y.AsNum(), x.AsNum()))
}

// Hex interprets the string form as a hex number ("ff" or "0xff").
func Hex(v Value) Value {
	s := strings.TrimPrefix(strings.TrimPrefix(v.AsStr(), "0x"), "0X")
	n, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return Num(0)
	}
	return Num(float64(n))
}

// Oct interprets the string form as octal, or hex/binary with a
// 0x/0b prefix, following Perl's oct().
func Oct(v Value) Value {
	s := strings.TrimSpace(v.AsStr())
	base := 8
	switch {
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		s, base = s[2:], 16
	case strings.HasPrefix(s, "0b"), strings.HasPrefix(s, "0B"):
		s, base = s[2:], 2
	}
	n, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		return Num(0)
	}
	return Num(float64(n))
}

// Ord returns the code of the first character, or 0 for "".
func Ord(v Value) Value {
	s := v.AsStr()
	if s == "" {
		return Num(0)
	}
	return Num(float64(s[0]))
}

// Chr returns the character with the given code.
func Chr(v Value) Value {
	n := int(v.AsNum())
	if n < 0 {
		n = 0
	}
	return Str(string(rune(n)))
}

// Uc upper-cases the string form.
func Uc(v Value) Value { return Str(strings.ToUpper(v.AsStr())) }

// Lc lower-cases the string form.
func Lc(v Value) Value { return Str(strings.ToLower(v.AsStr())) }

// Ucfirst upper-cases the first character.
func Ucfirst(v Value) Value {
	s := v.AsStr()
	if s == "" {
		return Str("")
	}
	return Str(strings.ToUpper(s[:1]) + s[1:])
}

// Substr returns the substring at offset off with length n.
// Negative offsets count from the end; the length argument is
// optional, Perl style.
func Substr(v Value, args ...Value) Value {
	s := v.AsStr()
	if len(args) == 0 {
		return Str(s)
	}
	off := int(args[0].AsNum())
	if off < 0 {
		off += len(s)
	}
	if off < 0 {
		off = 0
	}
	if off > len(s) {
		return Str("")
	}
	end := len(s)
	if len(args) > 1 {
		n := int(args[1].AsNum())
		if n < 0 {
			end += n
		} else {
			end = off + n
		}
		if end > len(s) {
			end = len(s)
		}
		if end < off {
			end = off
		}
	}
	return Str(s[off:end])
}

// IndexOf returns the position of needle in haystack, or -1.
func IndexOf(haystack, needle Value) Value {
	return Num(float64(strings.Index(haystack.AsStr(), needle.AsStr())))
}

// Join joins list arguments with the separator. List-valued arguments
// are flattened, so join " ", unpack(...) behaves as in Perl.
func Join(sep Value, args ...Value) Value {
	var parts []string
	for _, a := range args {
		for _, item := range a.Items() {
			parts = append(parts, item.AsStr())
		}
	}
	return Str(strings.Join(parts, sep.AsStr()))
}

// Split splits the string form of v on the separator pattern.
// A single-space separator splits on whitespace runs, Perl style.
func Split(sep, v Value) Value {
	s := v.AsStr()
	p := sep.AsStr()
	var fields []string
	if p == " " {
		fields = strings.Fields(s)
	} else {
		fields = strings.Split(s, p)
	}
	items := make([]Value, len(fields))
	for i, f := range fields {
		items[i] = NumStr(f)
	}
	return List(items...)
}

// Tr transliterates characters of v: tr/from/to/. Character ranges
// (a-z) are expanded; when to is shorter than from its last character
// repeats, as in Perl.
func Tr(v Value, from, to string) Value {
	fromSet := expandRanges(from)
	toSet := expandRanges(to)
	if len(fromSet) == 0 {
		return v
	}
	for len(toSet) < len(fromSet) {
		if len(toSet) == 0 {
			break
		}
		toSet = append(toSet, toSet[len(toSet)-1])
	}
	table := make(map[rune]rune, len(fromSet))
	for i, r := range fromSet {
		if i < len(toSet) {
			table[r] = toSet[i]
		}
	}
	mapped := strings.Map(func(r rune) rune {
		if out, ok := table[r]; ok {
			return out
		}
		return r
	}, v.AsStr())
	return Str(mapped)
}

func expandRanges(spec string) []rune {
	var out []rune
	runes := []rune(spec)
	for i := 0; i < len(runes); i++ {
		if i+2 < len(runes) && runes[i+1] == '-' && runes[i+2] >= runes[i] {
			for r := runes[i]; r <= runes[i+2]; r++ {
				out = append(out, r)
			}
			i += 2
			continue
		}
		out = append(out, runes[i])
	}
	return out
}
