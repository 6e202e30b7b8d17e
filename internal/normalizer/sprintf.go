package normalizer

import (
	"github.com/kolkov/uexpr/internal/ppi"
)

// SprintfPass recognizes sprintf calls whose format string is built by
// concatenation with a repeated tail,
//
//	sprintf("%.3f x %.3f" . " %.3f" x 4, @args)
//
// and rewrites them into a dedicated call so the generator can expand
// the format at compile time instead of emitting string-building code.
// Low tier: it needs the concat and call rules to have produced their
// shapes first.
type SprintfPass struct{}

// Name implements Pass.
func (*SprintfPass) Name() string { return "Sprintf" }

// Tier implements Pass.
func (*SprintfPass) Tier() Tier { return TierLow }

// Transform implements Pass.
// Call nodes are built during their parent's fold and the traversal
// does not revisit them, so the pass checks the node itself and its
// direct children.
func (p *SprintfPass) Transform(node *ppi.Node) *ppi.Node {
	if r := repeatFormCall(node); r != nil {
		return r
	}
	if len(node.Children) == 0 {
		return node
	}
	out := make([]*ppi.Node, len(node.Children))
	changed := false
	for i, c := range node.Children {
		if r := repeatFormCall(c); r != nil {
			out[i] = r
			changed = true
		} else {
			out[i] = c
		}
	}
	if !changed {
		return node
	}
	return node.WithChildren(out)
}

// repeatFormCall matches a sprintf call with a concat-repeat format
// and returns the rewritten call, or nil.
func repeatFormCall(node *ppi.Node) *ppi.Node {
	if node.Kind != ppi.KindCall || node.Content != "sprintf" {
		return nil
	}
	if len(node.Children) == 0 {
		return nil
	}
	format := node.Children[0]
	if format.Kind != ppi.KindConcat || len(format.Children) != 2 {
		return nil
	}
	base, rep := format.Children[0], format.Children[1]
	if base.Kind != ppi.KindString || rep.Kind != ppi.KindRepeat {
		return nil
	}
	part, count := rep.Children[0], rep.Children[1]
	if part.Kind != ppi.KindString || count.Kind != ppi.KindNumber {
		return nil
	}

	args := []*ppi.Node{base, part, count}
	args = append(args, node.Children[1:]...)
	return makeCall("sprintf_concat_repeat", args)
}
