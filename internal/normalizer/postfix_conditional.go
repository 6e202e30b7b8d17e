package normalizer

import (
	"github.com/kolkov/uexpr/internal/ppi"
)

// PostfixConditionalPass recognizes the two-statement early-return
// idiom
//
//	return "inf" if $val >= 4294967295;
//	return $val / 100;
//
// at document level and folds it into a single conditional node with
// the guarded value, the guard and the rest expression as children.
// The rest statement is required; a trailing "return X if C" with
// nothing after it has no defined value on the false path.
type PostfixConditionalPass struct{}

// Name implements Pass.
func (*PostfixConditionalPass) Name() string { return "PostfixConditional" }

// Tier implements Pass.
func (*PostfixConditionalPass) Tier() Tier { return TierLow }

// Transform implements Pass.
func (p *PostfixConditionalPass) Transform(node *ppi.Node) *ppi.Node {
	if node.Kind != ppi.KindDocument || len(node.Children) != 2 {
		return node
	}
	first, rest := node.Children[0], node.Children[1]
	if first.Kind != ppi.KindStatement || rest.Kind != ppi.KindStatement {
		return node
	}

	value, cond, ok := splitPostfix(first.Children)
	if !ok {
		return node
	}

	restBody := stripReturn(rest.Children)
	return &ppi.Node{
		Kind:     ppi.KindPostfixCond,
		Children: []*ppi.Node{value, cond, argNode(restBody)},
	}
}

// splitPostfix splits "return VALUE if COND ;" statement children.
func splitPostfix(children []*ppi.Node) (value, cond *ppi.Node, ok bool) {
	children = stripReturn(children)
	ifAt := -1
	for i, c := range children {
		if c.Kind == ppi.KindWord && c.Content == "if" {
			ifAt = i
			break
		}
	}
	if ifAt <= 0 || ifAt == len(children)-1 {
		return nil, nil, false
	}
	condSeg := trimSemi(children[ifAt+1:])
	if len(condSeg) == 0 {
		return nil, nil, false
	}
	return argNode(children[:ifAt]), argNode(condSeg), true
}

// stripReturn drops a leading return keyword and a trailing semicolon.
func stripReturn(children []*ppi.Node) []*ppi.Node {
	if len(children) > 0 && children[0].Kind == ppi.KindWord &&
		children[0].Content == "return" {
		children = children[1:]
	}
	return trimSemi(children)
}

func trimSemi(children []*ppi.Node) []*ppi.Node {
	for len(children) > 0 && children[len(children)-1].IsStructure(";") {
		children = children[:len(children)-1]
	}
	return children
}
