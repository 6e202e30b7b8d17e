package normalizer

import (
	"github.com/kolkov/uexpr/internal/ppi"
)

// binaryPrec is the binding strength of infix operators, from perlop.
// Higher binds tighter. Operators absent from the table are not
// climbable and act as segment boundaries.
var binaryPrec = map[string]int{
	"**": 90,
	"x":  80,
	"*":  70, "/": 70, "%": 70,
	"+": 60, "-": 60,
	"<<": 50, ">>": 50,
	"<": 40, ">": 40, "<=": 40, ">=": 40, "lt": 40, "gt": 40, "le": 40, "ge": 40,
	"==": 35, "!=": 35, "<=>": 35, "eq": 35, "ne": 35, "cmp": 35,
	"&": 30,
	"|": 25, "^": 25,
	"&&": 20,
	"||": 15, "//": 15,
}

// rightAssoc operators group right to left (2**3**2 is 2**(3**2)).
var rightAssoc = map[string]bool{
	"**": true,
}

// BinaryOpsPass folds flat operator runs into left-deep binary trees
// by precedence climbing. The parser emits statements as flat token
// lists, so "$val * 2 + 1" arrives as five siblings; this pass turns
// the run into bin("+", bin("*", $val, 2), 1).
//
// The pass climbs between boundaries only. Concatenation dots stay in
// place for the string pass, and commas, ternary punctuation and
// statement keywords delimit independent runs.
type BinaryOpsPass struct{}

// Name implements Pass.
func (*BinaryOpsPass) Name() string { return "BinaryOps" }

// Tier implements Pass.
func (*BinaryOpsPass) Tier() Tier { return TierHigh }

// Transform implements Pass.
func (p *BinaryOpsPass) Transform(node *ppi.Node) *ppi.Node {
	switch node.Kind {
	case ppi.KindStatement, ppi.KindExpression, ppi.KindList, ppi.KindCall:
	default:
		return node
	}
	if len(node.Children) < 2 {
		return node
	}

	out := make([]*ppi.Node, 0, len(node.Children))
	changed := false

	children := node.Children
	for i := 0; i < len(children); {
		if isBoundary(children[i]) {
			out = append(out, children[i])
			i++
			continue
		}
		// Collect one maximal run up to the next boundary.
		j := i
		for j < len(children) && !isBoundary(children[j]) {
			j++
		}
		seg := children[i:j]
		folded, ok := climbSegment(seg)
		if ok {
			out = append(out, folded)
			changed = true
		} else {
			out = append(out, seg...)
		}
		i = j
	}

	if !changed {
		return node
	}
	return node.WithChildren(out)
}

// isBoundary reports tokens that delimit operator runs.
func isBoundary(n *ppi.Node) bool {
	if n.IsOperator(".") || n.IsOperator(",") || n.IsOperator("=>") ||
		n.IsOperator("?") || n.IsOperator(":") {
		return true
	}
	if n.Kind == ppi.KindWord && (n.Content == "return" || n.Content == "if") {
		return true
	}
	// Low-precedence 'and'/'or' separate clauses; climbing across them
	// would swallow the assignment target in the conditional-assignment
	// idiom ($v > 1800 and $v -= 3600).
	if n.IsOperator("and") || n.IsOperator("or") {
		return true
	}
	if n.Kind == ppi.KindStructure {
		return true
	}
	// Assignment-family operators belong to the conditional-assignment
	// rule; climbing across them would swallow the statement shape.
	if n.Kind == ppi.KindOperator && len(n.Content) >= 2 &&
		n.Content[len(n.Content)-1] == '=' {
		switch n.Content {
		case "==", "!=", "<=", ">=", "=~":
		default:
			return true
		}
	}
	if n.IsOperator("=") {
		return true
	}
	return false
}

// climbSegment folds one boundary-free run into a single node.
// Returns ok=false when the run is not a well-formed operator
// expression (already a single term, or has a shape the climb cannot
// consume, like a regex binding left for the call pass).
func climbSegment(seg []*ppi.Node) (*ppi.Node, bool) {
	if len(seg) < 2 {
		return nil, false
	}
	pos := 0
	result, ok := climbExpr(seg, &pos, 0)
	if !ok || pos != len(seg) {
		return nil, false
	}
	if result == seg[0] {
		return nil, false
	}
	return result, true
}

// climbExpr is standard precedence climbing over the flat slice.
func climbExpr(seg []*ppi.Node, pos *int, minPrec int) (*ppi.Node, bool) {
	left, ok := climbPrimary(seg, pos)
	if !ok {
		return nil, false
	}

	for *pos < len(seg) {
		op := seg[*pos]
		if op.Kind != ppi.KindOperator {
			return nil, false
		}
		prec, known := binaryPrec[op.Content]
		if !known || prec < minPrec {
			break
		}
		*pos++

		next := prec + 1
		if rightAssoc[op.Content] {
			next = prec
		}
		right, ok := climbExpr(seg, pos, next)
		if !ok {
			return nil, false
		}
		left = &ppi.Node{
			Kind:     ppi.KindBinary,
			Content:  op.Content,
			Children: []*ppi.Node{left, right},
		}
	}
	return left, true
}

// climbPrimary consumes one operand, folding prefix - and ! into it.
func climbPrimary(seg []*ppi.Node, pos *int) (*ppi.Node, bool) {
	if *pos >= len(seg) {
		return nil, false
	}
	n := seg[*pos]

	if n.IsOperator("-") || n.IsOperator("!") {
		*pos++
		operand, ok := climbPrimary(seg, pos)
		if !ok {
			return nil, false
		}
		return negateOrNot(n.Content, operand), true
	}

	if !isOperand(n) {
		return nil, false
	}
	*pos++
	return n, true
}

// negateOrNot builds the prefix form. Negated literals fold into the
// literal itself so -$val/10 and (0-$val)/10 hash identically.
func negateOrNot(op string, operand *ppi.Node) *ppi.Node {
	if op == "-" {
		if operand.Kind == ppi.KindNumber {
			neg := operand.Clone()
			neg.NumVal = -neg.NumVal
			neg.Content = "-" + neg.Content
			return neg
		}
		return makeCall("neg", []*ppi.Node{operand})
	}
	return makeCall("not", []*ppi.Node{operand})
}
