package normalizer

import (
	"github.com/kolkov/uexpr/internal/ppi"
)

// StringOpsPass folds concatenation runs into n-ary concat nodes and
// repetition operators into repeat nodes. It runs after the binary
// pass in the same tier, so by the time a dot run is scanned its
// operands are already folded terms; '"%s" . "%d" x 3' arrives as
// [str, ., bin(x, str, num)] and leaves as concat(str, repeat).
//
// Concat is n-ary rather than nested binary because the sprintf rule
// matches on the flat part list and the code generator folds it with
// one builder.
type StringOpsPass struct{}

// Name implements Pass.
func (*StringOpsPass) Name() string { return "StringOps" }

// Tier implements Pass.
func (*StringOpsPass) Tier() Tier { return TierHigh }

// Transform implements Pass.
func (p *StringOpsPass) Transform(node *ppi.Node) *ppi.Node {
	switch node.Kind {
	case ppi.KindStatement, ppi.KindExpression, ppi.KindCall:
	default:
		return node
	}
	if len(node.Children) < 3 {
		return node
	}

	out := make([]*ppi.Node, 0, len(node.Children))
	changed := false
	children := node.Children

	for i := 0; i < len(children); {
		// A concat run is operand (. operand)+ with nothing between.
		if !concatOperand(children[i]) || i+2 >= len(children) ||
			!children[i+1].IsOperator(".") {
			out = append(out, children[i])
			i++
			continue
		}

		parts := []*ppi.Node{repeatForm(children[i])}
		j := i + 1
		for j+1 < len(children) && children[j].IsOperator(".") &&
			concatOperand(children[j+1]) {
			parts = append(parts, repeatForm(children[j+1]))
			j += 2
		}
		if len(parts) < 2 {
			out = append(out, children[i])
			i++
			continue
		}
		out = append(out, &ppi.Node{Kind: ppi.KindConcat, Children: parts})
		changed = true
		i = j
	}

	if !changed {
		return node
	}
	return node.WithChildren(out)
}

// repeatForm rewrites a folded x operator into a repeat node.
func repeatForm(n *ppi.Node) *ppi.Node {
	if n.Kind == ppi.KindBinary && n.Content == "x" && len(n.Children) == 2 {
		return &ppi.Node{Kind: ppi.KindRepeat, Children: n.Children}
	}
	return n
}

func concatOperand(n *ppi.Node) bool {
	return isOperand(n)
}
