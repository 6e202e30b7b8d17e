package normalizer

import (
	"strings"

	"github.com/kolkov/uexpr/internal/ppi"
)

// ConditionalAssignmentPass recognizes the two-statement adjust idiom
//
//	$val > 1800 and $val -= 3600;
//	-$val / 10;
//
// where the first statement conditionally mutates the input before the
// second computes the result. It folds the pair into one node carrying
// the condition, the adjustment operator and amount, and the result
// expression, so downstream stages never see mutation.
type ConditionalAssignmentPass struct{}

// Name implements Pass.
func (*ConditionalAssignmentPass) Name() string { return "ConditionalAssignment" }

// Tier implements Pass.
func (*ConditionalAssignmentPass) Tier() Tier { return TierLow }

// Transform implements Pass.
func (p *ConditionalAssignmentPass) Transform(node *ppi.Node) *ppi.Node {
	if node.Kind != ppi.KindDocument || len(node.Children) != 2 {
		return node
	}
	first, second := node.Children[0], node.Children[1]
	if first.Kind != ppi.KindStatement || second.Kind != ppi.KindStatement {
		return node
	}

	cond, op, amount, ok := splitCondAssign(trimSemi(first.Children))
	if !ok {
		return node
	}
	result := argNode(stripReturn(second.Children))

	return &ppi.Node{
		Kind:     ppi.KindCondAssign,
		Content:  op,
		Children: []*ppi.Node{cond, amount, result},
	}
}

// splitCondAssign matches "COND and $val OP= AMOUNT" and returns the
// pieces with OP stripped of its trailing '='.
func splitCondAssign(children []*ppi.Node) (cond *ppi.Node, op string, amount *ppi.Node, ok bool) {
	andAt := -1
	for i, c := range children {
		if c.IsOperator("and") {
			andAt = i
			break
		}
	}
	if andAt <= 0 {
		return nil, "", nil, false
	}

	action := children[andAt+1:]
	// Exactly: $val OP= AMOUNT
	if len(action) != 3 {
		return nil, "", nil, false
	}
	target, assign, amt := action[0], action[1], action[2]
	if !target.IsSymbol() || target.Content != "$val" {
		return nil, "", nil, false
	}
	if assign.Kind != ppi.KindOperator || !strings.HasSuffix(assign.Content, "=") ||
		len(assign.Content) < 2 {
		return nil, "", nil, false
	}
	switch assign.Content {
	case "==", "!=", "<=", ">=", "=~":
		return nil, "", nil, false
	}
	if !isOperand(amt) {
		return nil, "", nil, false
	}

	return argNode(children[:andAt]), strings.TrimSuffix(assign.Content, "="), amt, true
}
