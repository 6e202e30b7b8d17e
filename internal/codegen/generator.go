package codegen

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kolkov/uexpr/internal/ast"
)

// Generate emits one Go function named name implementing the
// expression under typ's calling convention. The returned source has
// no surrounding doc comment; the registry attaches one carrying the
// original expression text.
//
// Shapes with no generation rule return an *ast.UnsupportedError and
// nothing is emitted.
func Generate(root ast.Node, typ ExprType, name string) (string, error) {
	g := &generator{typ: typ}
	g.line("func %s%s {", name, typ.Signature())
	g.indent++

	var err error
	switch typ {
	case BooleanGate:
		var cond string
		cond, err = g.genCond(root)
		if err == nil {
			g.line("return %s", cond)
		}
	case DisplayFormat:
		var expr string
		expr, err = g.genValue(root)
		if err == nil {
			g.line("return rt.Stringify(%s)", expr)
		}
	default:
		var expr string
		expr, err = g.genValue(root)
		if err == nil {
			g.line("return %s, nil", expr)
		}
	}
	if err != nil {
		return "", err
	}

	g.indent--
	g.line("}")
	return g.buf.String(), nil
}

// generator accumulates emitted lines for one function.
type generator struct {
	buf    strings.Builder
	indent int
	tmp    int
	typ    ExprType
}

func (g *generator) line(format string, args ...any) {
	for i := 0; i < g.indent; i++ {
		g.buf.WriteByte('\t')
	}
	fmt.Fprintf(&g.buf, format, args...)
	g.buf.WriteByte('\n')
}

func (g *generator) newTmp() string {
	t := fmt.Sprintf("v%d", g.tmp)
	g.tmp++
	return t
}

// failCheck emits the error exit for a fallible runtime call, in the
// form the current calling convention allows.
func (g *generator) failCheck() {
	g.line("if err != nil {")
	g.indent++
	switch g.typ {
	case ValueTransform:
		g.line("return rt.Value{}, err")
	case DisplayFormat:
		g.line("return rt.Stringify(val)")
	default:
		g.line("return false")
	}
	g.indent--
	g.line("}")
}

// emitReturn emits an early return of expr under the current
// convention. Used by the postfix-conditional form.
func (g *generator) emitReturn(expr string) {
	switch g.typ {
	case ValueTransform:
		g.line("return %s, nil", expr)
	case DisplayFormat:
		g.line("return rt.Stringify(%s)", expr)
	default:
		g.line("return rt.IsTruthy(%s)", expr)
	}
}

// fallible emits a runtime call returning (Value, error) followed by
// the convention's error exit, and returns the result variable.
func (g *generator) fallible(call string, args ...string) string {
	t := g.newTmp()
	g.line("%s, err := rt.%s(%s)", t, call, strings.Join(args, ", "))
	g.failCheck()
	return t
}

// binaryFuncs maps fallible Perl operators onto runtime calls.
var binaryFuncs = map[string]string{
	"+": "Add", "-": "Sub", "*": "Mul", "/": "Div", "%": "Mod", "**": "Pow",
	"&": "BitAnd", "|": "BitOr", "^": "BitXor", "<<": "Shl", ">>": "Shr",
}

// numCmpFuncs and strCmpFuncs map comparison operators onto the
// infallible boolean runtime calls.
var numCmpFuncs = map[string]string{
	"==": "NumEq", "!=": "NumNe", "<": "NumLt", ">": "NumGt",
	"<=": "NumLe", ">=": "NumGe",
}

var strCmpFuncs = map[string]string{
	"eq": "StrEq", "ne": "StrNe", "lt": "StrLt", "gt": "StrGt",
	"le": "StrLe", "ge": "StrGe",
}

// genValue emits statements computing n and returns a Go expression of
// type rt.Value.
func (g *generator) genValue(n ast.Node) (string, error) {
	switch n := n.(type) {
	case *ast.NumberLit:
		return fmt.Sprintf("rt.Num(%s)", numLit(n.Value)), nil

	case *ast.StringLit:
		return fmt.Sprintf("rt.Str(%q)", n.Value), nil

	case *ast.Undef:
		return "rt.Undef()", nil

	case *ast.ValRef:
		return "val", nil

	case *ast.SelfField:
		if g.typ != BooleanGate {
			return "", ast.Unsupported("processing-state reference $$self{%s} in %s", n.Field, g.typ)
		}
		return fmt.Sprintf("ctx.Get(%q)", n.Field), nil

	case *ast.BinaryOp:
		return g.genBinaryValue(n)

	case *ast.Ternary:
		cond, err := g.genCond(n.Cond)
		if err != nil {
			return "", err
		}
		t := g.newTmp()
		g.line("var %s rt.Value", t)
		g.line("if %s {", cond)
		g.indent++
		then, err := g.genValue(n.Then)
		if err != nil {
			return "", err
		}
		g.line("%s = %s", t, then)
		g.indent--
		g.line("} else {")
		g.indent++
		alt, err := g.genValue(n.Else)
		if err != nil {
			return "", err
		}
		g.line("%s = %s", t, alt)
		g.indent--
		g.line("}")
		return t, nil

	case *ast.SafeDivision:
		denom, err := g.genValue(n.Denom)
		if err != nil {
			return "", err
		}
		if num, ok := n.Numer.(*ast.NumberLit); ok && num.Value == 1 {
			return fmt.Sprintf("rt.SafeReciprocal(%s)", denom), nil
		}
		numer, err := g.genValue(n.Numer)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("rt.SafeDivision(%s, %s)", numer, denom), nil

	case *ast.StringConcat:
		parts, err := g.genValues(n.Parts)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("rt.Concat(%s)", strings.Join(parts, ", ")), nil

	case *ast.StringRepeat:
		s, err := g.genValue(n.Str)
		if err != nil {
			return "", err
		}
		count, err := g.genValue(n.Count)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("rt.RepeatStr(%s, %s)", s, count), nil

	case *ast.FormattedPrint:
		return g.genSprintf(n)

	case *ast.FunctionCall:
		return g.genCall(n)

	case *ast.PostfixConditional:
		cond, err := g.genCond(n.Cond)
		if err != nil {
			return "", err
		}
		g.line("if %s {", cond)
		g.indent++
		value, err := g.genValue(n.Value)
		if err != nil {
			return "", err
		}
		g.emitReturn(value)
		g.indent--
		g.line("}")
		return g.genValue(n.Rest)

	case *ast.ConditionalAssignment:
		fn, ok := binaryFuncs[n.Op]
		if !ok {
			return "", ast.Unsupported("conditional assignment operator %q=", n.Op)
		}
		cond, err := g.genCond(n.Cond)
		if err != nil {
			return "", err
		}
		g.line("if %s {", cond)
		g.indent++
		amount, err := g.genValue(n.Amount)
		if err != nil {
			return "", err
		}
		adjusted := g.fallible(fn, "val", amount)
		g.line("val = %s", adjusted)
		g.indent--
		g.line("}")
		return g.genValue(n.Result)

	default:
		return "", ast.Unsupported("%T in value position", n)
	}
}

func (g *generator) genValues(nodes []ast.Node) ([]string, error) {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		expr, err := g.genValue(n)
		if err != nil {
			return nil, err
		}
		out[i] = expr
	}
	return out, nil
}

func (g *generator) genBinaryValue(n *ast.BinaryOp) (string, error) {
	// Comparisons and logical connectives produce Perl booleans when
	// used as values.
	if numCmpFuncs[n.Op] != "" || strCmpFuncs[n.Op] != "" ||
		n.Op == "&&" || n.Op == "||" || n.Op == "and" || n.Op == "or" {
		cond, err := g.genCond(n)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("rt.Bool(%s)", cond), nil
	}

	fn, ok := binaryFuncs[n.Op]
	if !ok {
		return "", ast.Unsupported("binary operator %q", n.Op)
	}
	left, err := g.genValue(n.Left)
	if err != nil {
		return "", err
	}
	right, err := g.genValue(n.Right)
	if err != nil {
		return "", err
	}
	return g.fallible(fn, left, right), nil
}

// genCond emits statements computing n and returns a Go expression of
// type bool.
func (g *generator) genCond(n ast.Node) (string, error) {
	switch n := n.(type) {
	case *ast.BinaryOp:
		if fn := numCmpFuncs[n.Op]; fn != "" {
			return g.genCmp(fn, n.Left, n.Right)
		}
		if fn := strCmpFuncs[n.Op]; fn != "" {
			return g.genCmp(fn, n.Left, n.Right)
		}
		switch n.Op {
		case "&&", "and":
			return g.genLogical("&&", n.Left, n.Right)
		case "||", "or":
			return g.genLogical("||", n.Left, n.Right)
		}

	case *ast.FunctionCall:
		switch n.Name {
		case "regex_match", "regex_nomatch":
			return g.genRegexMatch(n)
		case "defined":
			if len(n.Args) != 1 {
				return "", ast.Unsupported("defined with %d arguments", len(n.Args))
			}
			arg, err := g.genValue(n.Args[0])
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("rt.IsDefined(%s)", arg), nil
		case "not":
			if len(n.Args) != 1 {
				return "", ast.Unsupported("not with %d arguments", len(n.Args))
			}
			cond, err := g.genCond(n.Args[0])
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("!(%s)", cond), nil
		}

	case *ast.PostfixConditional, *ast.ConditionalAssignment:
		return "", ast.Unsupported("statement form in boolean position")
	}

	expr, err := g.genValue(n)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("rt.IsTruthy(%s)", expr), nil
}

func (g *generator) genCmp(fn string, left, right ast.Node) (string, error) {
	l, err := g.genValue(left)
	if err != nil {
		return "", err
	}
	r, err := g.genValue(right)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("rt.%s(%s, %s)", fn, l, r), nil
}

// genLogical emits short-circuit connectives. Both sides are emitted
// eagerly; statement-emitting operands would break short-circuiting,
// so those fall back to nested conditionals via IsTruthy instead.
func (g *generator) genLogical(op string, left, right ast.Node) (string, error) {
	l, err := g.genCond(left)
	if err != nil {
		return "", err
	}
	r, err := g.genCond(right)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(%s %s %s)", l, op, r), nil
}

func (g *generator) genRegexMatch(n *ast.FunctionCall) (string, error) {
	if len(n.Args) != 2 {
		return "", ast.Unsupported("regex match with %d arguments", len(n.Args))
	}
	target, err := g.genValue(n.Args[0])
	if err != nil {
		return "", err
	}
	pattern, ok := n.Args[1].(*ast.StringLit)
	if !ok {
		return "", ast.Unsupported("non-literal regex pattern")
	}
	expr := fmt.Sprintf("rt.RegexMatch(%s, %q)", target, pattern.Value)
	if n.Name == "regex_nomatch" {
		expr = "!" + expr
	}
	return expr, nil
}

func (g *generator) genSprintf(n *ast.FormattedPrint) (string, error) {
	args, err := g.genValues(n.Args)
	if err != nil {
		return "", err
	}
	if n.RepeatCount > 0 {
		format, ok := n.Format.(*ast.StringLit)
		if !ok {
			return "", ast.Unsupported("non-literal repeated format")
		}
		callArgs := append([]string{
			fmt.Sprintf("%q", format.Value),
			fmt.Sprintf("%q", n.RepeatPart),
			strconv.Itoa(n.RepeatCount),
		}, args...)
		return fmt.Sprintf("rt.SprintfConcatRepeat(%s)", strings.Join(callArgs, ", ")), nil
	}
	format, err := g.genValue(n.Format)
	if err != nil {
		return "", err
	}
	callArgs := append([]string{format}, args...)
	return fmt.Sprintf("rt.Sprintf(%s)", strings.Join(callArgs, ", ")), nil
}

// unaryFuncs maps one-argument Perl builtins onto infallible runtime
// calls.
var unaryFuncs = map[string]string{
	"length": "Length", "int": "Int", "abs": "Abs", "sqrt": "Sqrt",
	"exp": "Exp", "log": "Log", "sin": "Sin", "cos": "Cos",
	"hex": "Hex", "oct": "Oct", "ord": "Ord", "chr": "Chr",
	"uc": "Uc", "lc": "Lc", "ucfirst": "Ucfirst",
}

func (g *generator) genCall(n *ast.FunctionCall) (string, error) {
	if fn := unaryFuncs[n.Name]; fn != "" {
		if len(n.Args) != 1 {
			return "", ast.Unsupported("%s with %d arguments", n.Name, len(n.Args))
		}
		arg, err := g.genValue(n.Args[0])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("rt.%s(%s)", fn, arg), nil
	}

	switch n.Name {
	case "neg":
		if len(n.Args) != 1 {
			return "", ast.Unsupported("neg with %d arguments", len(n.Args))
		}
		arg, err := g.genValue(n.Args[0])
		if err != nil {
			return "", err
		}
		return g.fallible("Neg", arg), nil

	case "not", "defined", "regex_match", "regex_nomatch":
		cond, err := g.genCond(n)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("rt.Bool(%s)", cond), nil

	case "atan2":
		return g.genFixedCall("Atan2", n, 2)

	case "index":
		return g.genFixedCall("IndexOf", n, 2)

	case "split":
		return g.genFixedCall("Split", n, 2)

	case "unpack":
		return g.genFixedCall("Unpack", n, 2)

	case "substr":
		if len(n.Args) < 2 || len(n.Args) > 3 {
			return "", ast.Unsupported("substr with %d arguments", len(n.Args))
		}
		args, err := g.genValues(n.Args)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("rt.Substr(%s)", strings.Join(args, ", ")), nil

	case "join", "pack":
		if len(n.Args) < 2 {
			return "", ast.Unsupported("%s with %d arguments", n.Name, len(n.Args))
		}
		fn := "Join"
		if n.Name == "pack" {
			fn = "Pack"
		}
		args, err := g.genValues(n.Args)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("rt.%s(%s)", fn, strings.Join(args, ", ")), nil

	case "sprintf":
		// Parenthesized sprintf lowers to FormattedPrint; a stray call
		// node here means the argument list was malformed.
		return "", ast.Unsupported("sprintf call with unreduced arguments")

	case "tr":
		if len(n.Args) != 3 {
			return "", ast.Unsupported("tr with %d arguments", len(n.Args))
		}
		target, err := g.genValue(n.Args[0])
		if err != nil {
			return "", err
		}
		from, ok1 := n.Args[1].(*ast.StringLit)
		to, ok2 := n.Args[2].(*ast.StringLit)
		if !ok1 || !ok2 {
			return "", ast.Unsupported("non-literal tr character sets")
		}
		return fmt.Sprintf("rt.Tr(%s, %q, %q)", target, from.Value, to.Value), nil

	case "regex_replace", "regex_replace_all":
		if len(n.Args) != 3 {
			return "", ast.Unsupported("substitution with %d arguments", len(n.Args))
		}
		target, err := g.genValue(n.Args[0])
		if err != nil {
			return "", err
		}
		pattern, ok1 := n.Args[1].(*ast.StringLit)
		repl, ok2 := n.Args[2].(*ast.StringLit)
		if !ok1 || !ok2 {
			return "", ast.Unsupported("non-literal substitution parts")
		}
		fn := "RegexReplace"
		if n.Name == "regex_replace_all" {
			fn = "RegexReplaceAll"
		}
		return fmt.Sprintf("rt.%s(%s, %q, %q)", fn, target, pattern.Value, repl.Value), nil

	default:
		return "", ast.Unsupported("function %q", n.Name)
	}
}

func (g *generator) genFixedCall(fn string, n *ast.FunctionCall, arity int) (string, error) {
	if len(n.Args) != arity {
		return "", ast.Unsupported("%s with %d arguments", n.Name, len(n.Args))
	}
	args, err := g.genValues(n.Args)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("rt.%s(%s)", fn, strings.Join(args, ", ")), nil
}

// numLit formats a float literal for emission. Integral values print
// without exponent so constants stay readable in generated code.
func numLit(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
