package ast

import (
	"fmt"
	"io"
	"strconv"
)

// Printer pretty-prints normalized nodes for debugging (-d output).
type Printer struct {
	w      io.Writer
	indent int
	err    error
}

// NewPrinter creates a Printer that writes to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Print writes an indented representation of the node tree.
func (p *Printer) Print(node Node) error {
	p.printNode(node)
	return p.err
}

func (p *Printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	for i := 0; i < p.indent; i++ {
		if _, p.err = io.WriteString(p.w, "    "); p.err != nil {
			return
		}
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *Printer) printChildren(nodes ...Node) {
	p.indent++
	for _, n := range nodes {
		p.printNode(n)
	}
	p.indent--
}

func (p *Printer) printNode(node Node) {
	switch n := node.(type) {
	case nil:
		p.printf("<nil>")
	case *NumberLit:
		p.printf("Number %s", numberText(n))
	case *StringLit:
		p.printf("String %q", n.Value)
	case *Undef:
		p.printf("Undef")
	case *ValRef:
		p.printf("ValRef")
	case *SelfField:
		p.printf("SelfField %s", n.Field)
	case *BinaryOp:
		p.printf("BinaryOp %q", n.Op)
		p.printChildren(n.Left, n.Right)
	case *Ternary:
		p.printf("Ternary")
		p.printChildren(n.Cond, n.Then, n.Else)
	case *SafeDivision:
		p.printf("SafeDivision")
		p.printChildren(n.Numer, n.Denom)
	case *StringConcat:
		p.printf("StringConcat (%d parts)", len(n.Parts))
		p.printChildren(n.Parts...)
	case *StringRepeat:
		p.printf("StringRepeat")
		p.printChildren(n.Str, n.Count)
	case *FunctionCall:
		p.printf("FunctionCall %s", n.Name)
		p.printChildren(n.Args...)
	case *FormattedPrint:
		if n.RepeatCount > 0 {
			p.printf("FormattedPrint repeat=%q x %d", n.RepeatPart, n.RepeatCount)
		} else {
			p.printf("FormattedPrint")
		}
		p.printChildren(append([]Node{n.Format}, n.Args...)...)
	case *PostfixConditional:
		p.printf("PostfixConditional")
		p.printChildren(n.Value, n.Cond, n.Rest)
	case *ConditionalAssignment:
		p.printf("ConditionalAssignment $val %s=", n.Op)
		p.printChildren(n.Cond, n.Amount, n.Result)
	default:
		p.printf("<unknown %T>", node)
	}
}

func numberText(n *NumberLit) string {
	if n.Raw != "" {
		return n.Raw
	}
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}
