package normalizer

import (
	"github.com/kolkov/uexpr/internal/ppi"
)

// SafeDivisionPass recognizes the division-guard idiom
//
//	$val ? N / $val : 0
//
// and folds it into a guarded-division call before the generic ternary
// rule can claim the shape. The declaration order inside the medium
// tier matters for exactly this reason.
//
// N == 1 becomes the reciprocal form so aperture-style expressions
// share one generated body.
type SafeDivisionPass struct{}

// Name implements Pass.
func (*SafeDivisionPass) Name() string { return "SafeDivision" }

// Tier implements Pass.
func (*SafeDivisionPass) Tier() Tier { return TierMedium }

// Transform implements Pass.
func (p *SafeDivisionPass) Transform(node *ppi.Node) *ppi.Node {
	switch node.Kind {
	case ppi.KindStatement, ppi.KindExpression:
	default:
		return node
	}
	c := node.Children
	if len(c) != 5 {
		return node
	}
	if !c[1].IsOperator("?") || !c[3].IsOperator(":") {
		return node
	}
	cond, then, alt := c[0], c[2], c[4]

	if !alt.IsNumber(0) {
		return node
	}
	if then.Kind != ppi.KindBinary || then.Content != "/" || len(then.Children) != 2 {
		return node
	}
	numer, denom := then.Children[0], then.Children[1]
	if !sameTerm(cond, denom) {
		return node
	}

	var call *ppi.Node
	if numer.IsNumber(1) {
		call = makeCall("safe_reciprocal", []*ppi.Node{denom})
	} else {
		call = makeCall("safe_division", []*ppi.Node{numer, denom})
	}
	return node.WithChildren([]*ppi.Node{call})
}

// sameTerm reports structural equality of two folded terms.
func sameTerm(a, b *ppi.Node) bool {
	if a.Kind != b.Kind || a.Content != b.Content ||
		a.NumVal != b.NumVal || a.StrVal != b.StrVal ||
		len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !sameTerm(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}
