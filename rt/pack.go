package rt

import (
	"strconv"
	"strings"
)

// Unpack implements the subset of Perl unpack templates that appears
// in tag tables: H (hex nibbles), C/c (bytes), n/N (big-endian 16/32),
// v/V (little-endian 16/32), a/A (raw/trimmed strings), each with an
// optional count or *. Unknown template letters consume nothing and
// yield no fields, matching the permissive behavior of the runtime
// this replaces.
func Unpack(template, v Value) Value {
	data := []byte(v.AsStr())
	var out []Value
	pos := 0

	t := template.AsStr()
	for i := 0; i < len(t); i++ {
		letter := t[i]
		count, star, skip := templateCount(t[i+1:])
		i += skip

		switch letter {
		case 'H':
			n := count
			if star {
				n = (len(data) - pos) * 2
			}
			var hex strings.Builder
			for k := 0; k < n; k++ {
				byteIdx := pos + k/2
				if byteIdx >= len(data) {
					break
				}
				b := data[byteIdx]
				var nib byte
				if k%2 == 0 {
					nib = b >> 4
				} else {
					nib = b & 0x0f
				}
				hex.WriteString(strconv.FormatUint(uint64(nib), 16))
			}
			pos += (n + 1) / 2
			out = append(out, Str(hex.String()))
		case 'C', 'c':
			n := count
			if star {
				n = len(data) - pos
			}
			for k := 0; k < n && pos < len(data); k++ {
				b := data[pos]
				pos++
				if letter == 'c' {
					out = append(out, Num(float64(int8(b))))
				} else {
					out = append(out, Num(float64(b)))
				}
			}
		case 'n', 'v':
			n := count
			if star {
				n = (len(data) - pos) / 2
			}
			for k := 0; k < n && pos+1 < len(data); k++ {
				var u uint16
				if letter == 'n' {
					u = uint16(data[pos])<<8 | uint16(data[pos+1])
				} else {
					u = uint16(data[pos+1])<<8 | uint16(data[pos])
				}
				pos += 2
				out = append(out, Num(float64(u)))
			}
		case 'N', 'V':
			n := count
			if star {
				n = (len(data) - pos) / 4
			}
			for k := 0; k < n && pos+3 < len(data); k++ {
				var u uint32
				if letter == 'N' {
					u = uint32(data[pos])<<24 | uint32(data[pos+1])<<16 |
						uint32(data[pos+2])<<8 | uint32(data[pos+3])
				} else {
					u = uint32(data[pos+3])<<24 | uint32(data[pos+2])<<16 |
						uint32(data[pos+1])<<8 | uint32(data[pos])
				}
				pos += 4
				out = append(out, Num(float64(u)))
			}
		case 'a', 'A':
			n := count
			if star {
				n = len(data) - pos
			}
			end := pos + n
			if end > len(data) {
				end = len(data)
			}
			s := string(data[pos:end])
			pos = end
			if letter == 'A' {
				s = strings.TrimRight(s, " \x00")
			}
			out = append(out, Str(s))
		case 'x':
			if star {
				pos = len(data)
			} else {
				pos += count
			}
		case ' ':
			// template whitespace separates fields
		}
	}

	return List(out...)
}

// Pack implements the inverse subset of templates for Pack.
func Pack(template Value, args ...Value) Value {
	flat := flatten(args)
	argIdx := 0
	next := func() Value {
		if argIdx < len(flat) {
			v := flat[argIdx]
			argIdx++
			return v
		}
		return Undef()
	}

	var out []byte
	t := template.AsStr()
	for i := 0; i < len(t); i++ {
		letter := t[i]
		count, star, skip := templateCount(t[i+1:])
		i += skip

		switch letter {
		case 'C', 'c':
			n := count
			if star {
				n = len(flat) - argIdx
			}
			for k := 0; k < n; k++ {
				out = append(out, byte(int64(next().AsNum())))
			}
		case 'n':
			n := count
			if star {
				n = len(flat) - argIdx
			}
			for k := 0; k < n; k++ {
				u := uint16(int64(next().AsNum()))
				out = append(out, byte(u>>8), byte(u))
			}
		case 'N':
			n := count
			if star {
				n = len(flat) - argIdx
			}
			for k := 0; k < n; k++ {
				u := uint32(int64(next().AsNum()))
				out = append(out, byte(u>>24), byte(u>>16), byte(u>>8), byte(u))
			}
		case 'a', 'A':
			s := next().AsStr()
			n := count
			if star {
				n = len(s)
			}
			pad := byte(0)
			if letter == 'A' {
				pad = ' '
			}
			for k := 0; k < n; k++ {
				if k < len(s) {
					out = append(out, s[k])
				} else {
					out = append(out, pad)
				}
			}
		case ' ':
		}
	}

	return Str(string(out))
}

// templateCount parses the count suffix of a template letter.
// Returns the count (default 1), whether it was *, and how many bytes
// of the template were consumed.
func templateCount(rest string) (count int, star bool, skip int) {
	if rest == "" {
		return 1, false, 0
	}
	if rest[0] == '*' {
		return 0, true, 1
	}
	n := 0
	for n < len(rest) && rest[n] >= '0' && rest[n] <= '9' {
		n++
	}
	if n == 0 {
		return 1, false, 0
	}
	c, _ := strconv.Atoi(rest[:n])
	return c, false, n
}
