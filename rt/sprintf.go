package rt

import (
	"fmt"
	"strconv"
	"strings"
)

// Sprintf formats args according to a Perl format string.
// List-valued arguments are flattened before consumption, so
// sprintf("%d %d", split(" ", $val)) works as in Perl. Missing
// arguments format as empty/zero rather than failing: formatting is a
// display operation and must always produce output.
func Sprintf(format Value, args ...Value) Value {
	flat := flatten(args)
	var out strings.Builder
	f := format.AsStr()
	argIdx := 0

	next := func() Value {
		if argIdx < len(flat) {
			v := flat[argIdx]
			argIdx++
			return v
		}
		return Undef()
	}

	for i := 0; i < len(f); i++ {
		c := f[i]
		if c != '%' {
			out.WriteByte(c)
			continue
		}
		if i+1 >= len(f) {
			out.WriteByte('%')
			break
		}

		// Scan directive: flags, width, precision, conversion.
		j := i + 1
		for j < len(f) && strings.IndexByte("-+ 0#", f[j]) >= 0 {
			j++
		}
		for j < len(f) && f[j] >= '0' && f[j] <= '9' {
			j++
		}
		if j < len(f) && f[j] == '.' {
			j++
			for j < len(f) && f[j] >= '0' && f[j] <= '9' {
				j++
			}
		}
		if j >= len(f) {
			out.WriteString(f[i:])
			break
		}

		spec := f[i+1 : j]
		conv := f[j]
		i = j

		switch conv {
		case '%':
			out.WriteByte('%')
		case 'd', 'i':
			fmt.Fprintf(&out, "%"+spec+"d", int64(next().AsNum()))
		case 'u':
			fmt.Fprintf(&out, "%"+spec+"d", uint64(int64(next().AsNum())))
		case 'o':
			fmt.Fprintf(&out, "%"+spec+"o", uint64(int64(next().AsNum())))
		case 'x':
			fmt.Fprintf(&out, "%"+spec+"x", uint64(int64(next().AsNum())))
		case 'X':
			fmt.Fprintf(&out, "%"+spec+"X", uint64(int64(next().AsNum())))
		case 'b', 'B':
			// Perl binary conversion has no direct Go equivalent spec;
			// strconv produces the digits, width/flags apply via %s.
			bits := strconv.FormatUint(uint64(int64(next().AsNum())), 2)
			fmt.Fprintf(&out, "%"+spec+"s", bits)
		case 'e', 'E', 'f', 'F', 'g', 'G':
			fmt.Fprintf(&out, "%"+spec+string(conv), next().AsNum())
		case 'c':
			out.WriteString(Chr(next()).AsStr())
		case 's':
			fmt.Fprintf(&out, "%"+spec+"s", next().AsStr())
		default:
			// Unknown conversion: emit verbatim, Perl warns but prints.
			out.WriteByte('%')
			out.WriteString(spec)
			out.WriteByte(conv)
		}
	}

	return Str(out.String())
}

// SprintfConcatRepeat formats with a composed format string: base
// followed by part repeated count times. This is the canonical form of
// sprintf("%19d %4d" . " %3d" x 8, ...) from tag tables; building the
// format once avoids re-deriving it per argument.
func SprintfConcatRepeat(base, part string, count int, args ...Value) Value {
	var f strings.Builder
	f.WriteString(base)
	for i := 0; i < count; i++ {
		f.WriteString(part)
	}
	return Sprintf(Str(f.String()), args...)
}

func flatten(args []Value) []Value {
	flat := make([]Value, 0, len(args))
	for _, a := range args {
		flat = append(flat, a.Items()...)
	}
	return flat
}
