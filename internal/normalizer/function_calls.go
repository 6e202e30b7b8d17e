package normalizer

import (
	"strings"

	"github.com/kolkov/uexpr/internal/ppi"
)

// namedUnary are Perl named unary operators: they take exactly one
// following term and bind almost as tightly as a parenthesized call.
var namedUnary = map[string]bool{
	"length": true, "int": true, "abs": true, "sqrt": true,
	"exp": true, "log": true, "hex": true, "oct": true,
	"ord": true, "chr": true, "uc": true, "lc": true,
	"ucfirst": true, "defined": true, "not": true,
}

// listOps are rightward list operators: without parentheses they
// consume everything to their right.
var listOps = map[string]bool{
	"join": true, "split": true, "unpack": true, "pack": true,
	"sprintf": true, "substr": true, "index": true, "atan2": true,
}

func knownFunction(name string) bool {
	return namedUnary[name] || listOps[name]
}

// FunctionCallsPass turns bareword and parenthesized function calls
// into canonical call nodes, and folds regex bindings ($v =~ s/a/b/)
// into calls on the runtime-support regex primitives.
//
// This pass is TierHigh on purpose: function calls bind as tightly as
// terms. An earlier revision tiered it low and "length $val ? A : B"
// came out as length($val ? A : B).
type FunctionCallsPass struct{}

// Name implements Pass.
func (*FunctionCallsPass) Name() string { return "FunctionCalls" }

// Tier implements Pass.
func (*FunctionCallsPass) Tier() Tier { return TierHigh }

// Transform implements Pass.
func (p *FunctionCallsPass) Transform(node *ppi.Node) *ppi.Node {
	if node.Kind != ppi.KindStatement && node.Kind != ppi.KindExpression {
		return node
	}
	if len(node.Children) < 2 {
		return node
	}

	out, changed := rewriteCalls(node.Children)
	if !changed {
		return node
	}
	return node.WithChildren(out)
}

// rewriteCalls scans a flat child list left to right, replacing call
// patterns. It returns the rewritten list and whether anything fired.
func rewriteCalls(children []*ppi.Node) ([]*ppi.Node, bool) {
	out := make([]*ppi.Node, 0, len(children))
	changed := false

	for i := 0; i < len(children); i++ {
		c := children[i]

		// operand =~ REGEXP (and !~) become regex primitive calls.
		if i+2 < len(children) &&
			(children[i+1].IsOperator("=~") || children[i+1].IsOperator("!~")) &&
			children[i+2].Kind == ppi.KindRegexp {
			if call := regexCall(c, children[i+1].Content, children[i+2]); call != nil {
				out = append(out, call)
				i += 2
				changed = true
				continue
			}
		}

		if c.Kind != ppi.KindWord || c.Content == "return" || c.Content == "if" {
			out = append(out, c)
			continue
		}

		name := c.Content

		// Word followed by a parenthesized list: sprintf("%x", $val).
		if i+1 < len(children) && children[i+1].Kind == ppi.KindList {
			out = append(out, makeCall(name, listArgs(children[i+1])))
			i++
			changed = true
			continue
		}

		if namedUnary[name] && i+1 < len(children) && isOperand(children[i+1]) {
			// Named unary: exactly one following term.
			out = append(out, makeCall(name, []*ppi.Node{children[i+1]}))
			i++
			changed = true
			continue
		}

		if listOps[name] && i+1 < len(children) {
			// Rightward list operator: everything to the right is the
			// argument list. Nested list operators inside arguments
			// are built right there from the remaining slice.
			args := callArgs(children[i+1:])
			out = append(out, makeCall(name, args))
			i = len(children)
			changed = true
			continue
		}

		out = append(out, c)
	}

	return out, changed
}

// callArgs splits the flat tail of a list-operator call on top-level
// commas. A segment that itself starts with a list operator becomes a
// nested call consuming the rest of the tail, which is how
// "join ' ', unpack 'H2H2', $val" nests.
func callArgs(rest []*ppi.Node) []*ppi.Node {
	var args []*ppi.Node
	seg := []*ppi.Node{}

	flush := func() {
		if len(seg) == 0 {
			return
		}
		args = append(args, argNode(seg))
		seg = nil
	}

	for i := 0; i < len(rest); i++ {
		c := rest[i]
		if c.IsOperator(",") || c.IsOperator("=>") {
			flush()
			continue
		}
		if c.IsStructure(";") {
			break
		}
		if c.Kind == ppi.KindWord && listOps[c.Content] && len(seg) == 0 {
			args = append(args, makeCall(c.Content, callArgs(rest[i+1:])))
			return args
		}
		if c.Kind == ppi.KindWord && namedUnary[c.Content] && len(seg) == 0 &&
			i+1 < len(rest) && isOperand(rest[i+1]) {
			seg = append(seg, makeCall(c.Content, []*ppi.Node{rest[i+1]}))
			i++
			continue
		}
		seg = append(seg, c)
	}
	flush()
	return args
}

// listArgs extracts call arguments from a parenthesized list node.
func listArgs(list *ppi.Node) []*ppi.Node {
	if len(list.Children) == 0 {
		return nil
	}
	// PPI wraps list contents in a single expression node.
	inner := list.Children
	if len(inner) == 1 && inner[0].Kind == ppi.KindExpression {
		inner = inner[0].Children
	}
	return callArgs(inner)
}

// argNode collapses an argument segment to one node.
func argNode(seg []*ppi.Node) *ppi.Node {
	if len(seg) == 1 {
		return seg[0]
	}
	return &ppi.Node{Kind: ppi.KindExpression, Children: seg}
}

func makeCall(name string, args []*ppi.Node) *ppi.Node {
	return &ppi.Node{Kind: ppi.KindCall, Content: name, Children: args}
}

// isOperand reports whether n can be a function argument term.
func isOperand(n *ppi.Node) bool {
	switch n.Kind {
	case ppi.KindSymbol, ppi.KindNumber, ppi.KindString, ppi.KindList,
		ppi.KindCall, ppi.KindBinary, ppi.KindConcat, ppi.KindRepeat,
		ppi.KindTernary:
		return true
	default:
		return false
	}
}

// regexCall converts a =~/!~ binding against a regex token into a
// canonical call. Returns nil when the regex token cannot be parsed.
func regexCall(target *ppi.Node, binding string, re *ppi.Node) *ppi.Node {
	content := re.Content
	strArg := func(s string) *ppi.Node {
		return &ppi.Node{Kind: ppi.KindString, StrVal: s, Content: s}
	}

	switch {
	case strings.HasPrefix(content, "s"):
		pattern, repl, flags, ok := splitRegexParts(content[1:], 3)
		if !ok || binding == "!~" {
			return nil
		}
		name := "regex_replace"
		if strings.Contains(flags, "g") {
			name = "regex_replace_all"
		}
		return makeCall(name, []*ppi.Node{target, strArg(pattern), strArg(repl)})

	case strings.HasPrefix(content, "tr") || strings.HasPrefix(content, "y"):
		body := strings.TrimPrefix(strings.TrimPrefix(content, "tr"), "y")
		from, to, _, ok := splitRegexParts(body, 3)
		if !ok || binding == "!~" {
			return nil
		}
		return makeCall("tr", []*ppi.Node{target, strArg(from), strArg(to)})

	default:
		body := strings.TrimPrefix(content, "m")
		pattern, _, _, ok := splitRegexParts(body, 2)
		if !ok {
			return nil
		}
		name := "regex_match"
		if binding == "!~" {
			name = "regex_nomatch"
		}
		return makeCall(name, []*ppi.Node{target, strArg(pattern)})
	}
}

// splitRegexParts splits "/a/b/flags" style regex bodies on the
// delimiter, honoring backslash escapes. want is the expected number
// of delimiters (3 for substitutions, 2 for matches).
func splitRegexParts(body string, want int) (pattern, repl, flags string, ok bool) {
	if body == "" {
		return "", "", "", false
	}
	delim := body[0]
	var parts []string
	var cur strings.Builder
	for i := 1; i < len(body); i++ {
		c := body[i]
		if c == '\\' && i+1 < len(body) {
			cur.WriteByte(c)
			i++
			cur.WriteByte(body[i])
			continue
		}
		if c == delim {
			parts = append(parts, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteByte(c)
	}
	parts = append(parts, cur.String())

	if len(parts) < want-1 {
		return "", "", "", false
	}
	pattern = parts[0]
	if len(parts) > 1 {
		repl = parts[1]
	}
	if want == 3 && len(parts) > 2 {
		flags = parts[2]
	} else if want == 2 && len(parts) > 1 {
		flags = parts[1]
	}
	return pattern, repl, flags, true
}
