// Package ppi defines the raw expression AST consumed by the compiler.
//
// The upstream tag-table extractor parses each Perl snippet with PPI and
// ships the resulting token tree as JSON. This package decodes that JSON
// into a closed set of node kinds; uexpr never parses Perl source itself.
//
// Node trees are plain values: children are processed independently and
// never reference other parts of the tree.
package ppi

// Kind identifies the type of a raw AST node.
// Kinds below KindCanonical come straight from the upstream parser;
// the canonical kinds are produced by normalizer passes.
type Kind uint8

const (
	KindInvalid Kind = iota

	// Parser kinds (decoded from PPI JSON).
	KindDocument   // PPI::Document - root of every expression
	KindStatement  // PPI::Statement and subclasses
	KindExpression // PPI::Statement::Expression - inside parentheses
	KindOperator   // PPI::Token::Operator - "+", "?", "eq", "=~", ...
	KindSymbol     // PPI::Token::Symbol - "$val", "$$self{Make}"
	KindNumber     // PPI::Token::Number and numeric subclasses
	KindString     // PPI::Token::Quote::Single / ::Double
	KindWord       // PPI::Token::Word - barewords and function names
	KindList       // PPI::Structure::List - parenthesized group
	KindSubscript  // PPI::Structure::Subscript - {Key} access
	KindStructure  // PPI::Token::Structure - ";", braces
	KindRegexp     // PPI::Token::Regexp::Substitute etc.
	KindCast       // PPI::Token::Cast - "$" sigil of $$self{...}

	// Canonical kinds (produced by normalizer passes, consumed by lowering).
	KindCall        // function call: Content is name, Children are args
	KindBinary      // binary operation: Content is op, Children are [lhs, rhs]
	KindConcat      // string concatenation: Children are operands
	KindRepeat      // string repetition: Children are [string, count]
	KindTernary     // Children are [cond, then, else]
	KindPostfixCond // "return X if C; Y": Children are [value, cond, rest]
	KindCondAssign  // "C and $val OP= N; R": Content is op, Children are [cond, amount, result]
)

var kindNames = [...]string{
	KindInvalid:     "Invalid",
	KindDocument:    "Document",
	KindStatement:   "Statement",
	KindExpression:  "Expression",
	KindOperator:    "Operator",
	KindSymbol:      "Symbol",
	KindNumber:      "Number",
	KindString:      "String",
	KindWord:        "Word",
	KindList:        "List",
	KindSubscript:   "Subscript",
	KindStructure:   "Structure",
	KindRegexp:      "Regexp",
	KindCast:        "Cast",
	KindCall:        "Call",
	KindBinary:      "Binary",
	KindConcat:      "Concat",
	KindRepeat:      "Repeat",
	KindTernary:     "Ternary",
	KindPostfixCond: "PostfixCond",
	KindCondAssign:  "CondAssign",
}

// String returns the kind name for debug output.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Node is a single raw AST node.
// Content carries the token text (operator symbol, function name, raw
// literal); NumVal and StrVal carry decoded literal values.
type Node struct {
	Kind     Kind
	Content  string
	Children []*Node
	NumVal   float64 // decoded value for KindNumber
	StrVal   string  // unquoted value for KindString
}

// IsOperator reports whether n is the given operator token.
func (n *Node) IsOperator(op string) bool {
	return n.Kind == KindOperator && n.Content == op
}

// IsAnyOperator reports whether n is an operator token at all.
func (n *Node) IsAnyOperator() bool { return n.Kind == KindOperator }

// IsWord reports whether n is the given bareword.
func (n *Node) IsWord(w string) bool {
	return n.Kind == KindWord && n.Content == w
}

// IsNumber reports whether n is a numeric literal with the given value.
func (n *Node) IsNumber(v float64) bool {
	return n.Kind == KindNumber && n.NumVal == v
}

// IsSymbol reports whether n is a scalar symbol such as $val.
func (n *Node) IsSymbol() bool {
	return n.Kind == KindSymbol && len(n.Content) > 0 && n.Content[0] == '$'
}

// IsSelfRef reports whether n references processing state ($$self{Field}).
func (n *Node) IsSelfRef() bool {
	return n.Kind == KindSymbol && len(n.Content) > 6 && n.Content[:6] == "$$self"
}

// SelfField extracts the field name from a $$self{Field} symbol.
// Returns "" if n is not a self reference.
func (n *Node) SelfField() string {
	if !n.IsSelfRef() {
		return ""
	}
	start := -1
	for i, c := range n.Content {
		if c == '{' {
			start = i + 1
		} else if c == '}' && start >= 0 && i > start {
			return n.Content[start:i]
		}
	}
	return ""
}

// IsStructure reports whether n is the given structure token (";", "{").
func (n *Node) IsStructure(s string) bool {
	return n.Kind == KindStructure && n.Content == s
}

// Clone returns a deep copy of the node.
// Passes build replacement trees from cloned pieces so the input tree
// is never mutated in place.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, ch := range n.Children {
			c.Children[i] = ch.Clone()
		}
	}
	return &c
}

// WithChildren returns a shallow copy of n with the given children.
func (n *Node) WithChildren(children []*Node) *Node {
	c := *n
	c.Children = children
	return &c
}
