package normalizer

import (
	"github.com/kolkov/uexpr/internal/ppi"
)

// TernaryPass folds cond ? then : else token runs into ternary nodes.
// Nesting in the else branch is right-associative, matching Perl:
// "a ? x : b ? y : z" groups as a ? x : (b ? y : z).
type TernaryPass struct{}

// Name implements Pass.
func (*TernaryPass) Name() string { return "Ternary" }

// Tier implements Pass.
func (*TernaryPass) Tier() Tier { return TierMedium }

// Transform implements Pass.
func (p *TernaryPass) Transform(node *ppi.Node) *ppi.Node {
	switch node.Kind {
	case ppi.KindStatement, ppi.KindExpression:
	default:
		return node
	}

	folded, ok := foldTernary(node.Children)
	if !ok {
		return node
	}
	return node.WithChildren([]*ppi.Node{folded})
}

// foldTernary folds one flat run containing ?/: punctuation.
func foldTernary(children []*ppi.Node) (*ppi.Node, bool) {
	q := -1
	for i, c := range children {
		if c.IsOperator("?") {
			q = i
			break
		}
	}
	if q <= 0 {
		return nil, false
	}

	// Matching colon: first ':' at nesting depth zero after the '?'.
	depth := 0
	colon := -1
	for i := q + 1; i < len(children); i++ {
		switch {
		case children[i].IsOperator("?"):
			depth++
		case children[i].IsOperator(":"):
			if depth == 0 {
				colon = i
			} else {
				depth--
			}
		}
		if colon >= 0 {
			break
		}
	}
	if colon < 0 || colon == q+1 || colon == len(children)-1 {
		return nil, false
	}

	cond := argNode(children[:q])
	then := foldOrWrap(children[q+1 : colon])
	alt := foldOrWrap(children[colon+1:])

	return &ppi.Node{
		Kind:     ppi.KindTernary,
		Children: []*ppi.Node{cond, then, alt},
	}, true
}

// foldOrWrap folds a branch segment that is itself a ternary run, and
// otherwise collapses it to a single node.
func foldOrWrap(seg []*ppi.Node) *ppi.Node {
	if nested, ok := foldTernary(seg); ok {
		return nested
	}
	return argNode(seg)
}
