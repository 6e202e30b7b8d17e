// Package normalizer rewrites raw parser trees into the canonical IR.
//
// Eight stateless rules each recognize one construct: binary operator
// runs, string concatenation/repetition, bareword function calls, the
// safe-division idiom, ternaries, sprintf format composition, postfix
// conditionals and multi-statement conditional assignments. One shared
// post-order traversal folds every rule over every node, so a rule
// never recurses itself; it inspects a node and its direct children
// only and returns the node unchanged when its pattern does not match.
//
// Rules carry a precedence tier. At any given node all High rules are
// applied strictly before any Medium rule, and Medium before Low; the
// fold order comes from a stable sort over tiers, never from
// registration order. Bareword calls bind as tightly as terms and are
// High; tier them lower and "length $val ? 1/$val : 0" wraps the whole
// ternary in the call instead of just $val.
package normalizer

import (
	"fmt"
	"sort"

	"github.com/kolkov/uexpr/internal/ast"
	"github.com/kolkov/uexpr/internal/ppi"
)

// Tier is the coarse precedence bucket of a pass.
// Lower values bind tighter and run earlier at every node.
type Tier uint8

const (
	// TierHigh is for term-level constructs: function calls and the
	// binary/string operators, which bind tighter than everything else.
	TierHigh Tier = iota
	// TierMedium is for conditional expressions (ternary and its
	// safe-division special form).
	TierMedium
	// TierLow is for list-style and statement-level compositions.
	TierLow
)

// String returns the tier name.
func (t Tier) String() string {
	switch t {
	case TierHigh:
		return "high"
	case TierMedium:
		return "medium"
	case TierLow:
		return "low"
	default:
		return fmt.Sprintf("tier(%d)", uint8(t))
	}
}

// Pass is a single normalization rule.
//
// Transform receives a node whose children are already normalized
// (post-order) and returns either a replacement or the node itself
// when the pattern does not match. A pass must not mutate its input
// and must not recurse into grandchildren; the orchestrator owns
// traversal.
type Pass interface {
	// Name identifies the pass in debug output and error messages.
	Name() string
	// Tier is the precedence bucket; see the package comment.
	Tier() Tier
	// Transform applies the rule to one node.
	Transform(node *ppi.Node) *ppi.Node
}

// PrecedenceError reports passes observed out of tier order during a
// fold. The sort in New makes this unreachable; if it fires anyway the
// compiler itself is broken and the whole run must abort, because
// continuing would silently emit wrongly grouped code.
type PrecedenceError struct {
	Prev, Next string // pass names in observed order
	PrevTier   Tier
	NextTier   Tier
}

func (e *PrecedenceError) Error() string {
	return fmt.Sprintf("normalizer: precedence invariant violated: %s (%s) ran before %s (%s)",
		e.Prev, e.PrevTier, e.Next, e.NextTier)
}

// Normalizer applies the configured passes in tier order.
type Normalizer struct {
	passes []Pass
}

// New creates a normalizer with the standard passes.
// The slice below is declaration order; the stable sort by tier is
// what establishes execution order. Within a tier, declaration order
// breaks ties (safe division must be tried before the generic ternary
// rule or the idiom is never seen).
func New() *Normalizer {
	passes := []Pass{
		// High: term-level binding.
		&FunctionCallsPass{},
		&BinaryOpsPass{},
		&StringOpsPass{},
		// Medium: conditional expressions.
		&SafeDivisionPass{},
		&TernaryPass{},
		// Low: list-style and statement-level composition.
		&SprintfPass{},
		&PostfixConditionalPass{},
		&ConditionalAssignmentPass{},
	}
	sort.SliceStable(passes, func(i, j int) bool {
		return passes[i].Tier() < passes[j].Tier()
	})
	return &Normalizer{passes: passes}
}

// Passes returns the passes in execution order (for ordering tests).
func (n *Normalizer) Passes() []Pass {
	return n.passes
}

// Normalize rewrites a raw tree into the canonical IR.
//
// Children are fully normalized before their parent (leaves-first),
// which reproduces Perl's innermost-first evaluation; at each node the
// tier-sorted pass fold enforces operator precedence. The final
// lowering converts canonical kinds into ast variants and rejects any
// leftover raw shape with an explicit unsupported-construct error.
func Normalize(root *ppi.Node) (ast.Node, error) {
	return New().Normalize(root)
}

// Normalize is the method form of the package-level Normalize.
func (n *Normalizer) Normalize(root *ppi.Node) (ast.Node, error) {
	rewritten, err := n.rewrite(root)
	if err != nil {
		return nil, err
	}
	return lower(rewritten)
}

// Rewrite runs the pass pipeline without lowering.
// Exposed for tests that assert on canonical raw shapes.
func (n *Normalizer) Rewrite(root *ppi.Node) (*ppi.Node, error) {
	return n.rewrite(root)
}

func (n *Normalizer) rewrite(node *ppi.Node) (*ppi.Node, error) {
	// Normalize all children first.
	if len(node.Children) > 0 {
		children := make([]*ppi.Node, len(node.Children))
		for i, c := range node.Children {
			nc, err := n.rewrite(c)
			if err != nil {
				return nil, err
			}
			children[i] = nc
		}
		node = node.WithChildren(children)
	}

	// Fold every pass over this node in tier order. The tier check is
	// the runtime form of the precedence invariant: a mis-sorted pass
	// list would otherwise reintroduce grouping bugs with no compile
	// error anywhere.
	last := TierHigh
	lastName := ""
	for _, p := range n.passes {
		if p.Tier() < last {
			return nil, &PrecedenceError{
				Prev: lastName, Next: p.Name(),
				PrevTier: last, NextTier: p.Tier(),
			}
		}
		last, lastName = p.Tier(), p.Name()
		node = p.Transform(node)
	}
	return node, nil
}
