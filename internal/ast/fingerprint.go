package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Fingerprint returns a canonical textual serialization of the node tree.
// Two trees serialize identically iff they are structurally identical, so
// the registry can hash fingerprints to deduplicate equivalent
// expressions regardless of the whitespace in their source text.
func Fingerprint(n Node) string {
	var b strings.Builder
	writeFingerprint(&b, n)
	return b.String()
}

func writeFingerprint(b *strings.Builder, node Node) {
	switch n := node.(type) {
	case nil:
		b.WriteString("nil")
	case *NumberLit:
		// Raw text is excluded: 0.5 and .5 are the same expression.
		b.WriteString("num(")
		b.WriteString(strconv.FormatFloat(n.Value, 'g', -1, 64))
		b.WriteByte(')')
	case *StringLit:
		fmt.Fprintf(b, "str(%q)", n.Value)
	case *Undef:
		b.WriteString("undef")
	case *ValRef:
		b.WriteString("val")
	case *SelfField:
		fmt.Fprintf(b, "self(%q)", n.Field)
	case *BinaryOp:
		fmt.Fprintf(b, "bin(%q ", n.Op)
		writeFingerprint(b, n.Left)
		b.WriteByte(' ')
		writeFingerprint(b, n.Right)
		b.WriteByte(')')
	case *Ternary:
		b.WriteString("ternary(")
		writeFingerprint(b, n.Cond)
		b.WriteByte(' ')
		writeFingerprint(b, n.Then)
		b.WriteByte(' ')
		writeFingerprint(b, n.Else)
		b.WriteByte(')')
	case *SafeDivision:
		b.WriteString("safediv(")
		writeFingerprint(b, n.Numer)
		b.WriteByte(' ')
		writeFingerprint(b, n.Denom)
		b.WriteByte(')')
	case *StringConcat:
		b.WriteString("concat(")
		for i, p := range n.Parts {
			if i > 0 {
				b.WriteByte(' ')
			}
			writeFingerprint(b, p)
		}
		b.WriteByte(')')
	case *StringRepeat:
		b.WriteString("repeat(")
		writeFingerprint(b, n.Str)
		b.WriteByte(' ')
		writeFingerprint(b, n.Count)
		b.WriteByte(')')
	case *FunctionCall:
		fmt.Fprintf(b, "call(%q", n.Name)
		for _, a := range n.Args {
			b.WriteByte(' ')
			writeFingerprint(b, a)
		}
		b.WriteByte(')')
	case *FormattedPrint:
		fmt.Fprintf(b, "sprintf(%q %d ", n.RepeatPart, n.RepeatCount)
		writeFingerprint(b, n.Format)
		for _, a := range n.Args {
			b.WriteByte(' ')
			writeFingerprint(b, a)
		}
		b.WriteByte(')')
	case *PostfixConditional:
		b.WriteString("postfix(")
		writeFingerprint(b, n.Value)
		b.WriteByte(' ')
		writeFingerprint(b, n.Cond)
		b.WriteByte(' ')
		writeFingerprint(b, n.Rest)
		b.WriteByte(')')
	case *ConditionalAssignment:
		fmt.Fprintf(b, "condassign(%q ", n.Op)
		writeFingerprint(b, n.Cond)
		b.WriteByte(' ')
		writeFingerprint(b, n.Amount)
		b.WriteByte(' ')
		writeFingerprint(b, n.Result)
		b.WriteByte(')')
	default:
		fmt.Fprintf(b, "unknown(%T)", node)
	}
}
