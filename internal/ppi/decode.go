package ppi

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DecodeError reports a malformed or unsupported upstream AST.
// It is recovered per expression by the driver, never fatal to a run.
type DecodeError struct {
	Class   string // offending PPI class, if any
	Message string
}

func (e *DecodeError) Error() string {
	if e.Class != "" {
		return fmt.Sprintf("ppi: %s: %s", e.Message, e.Class)
	}
	return "ppi: " + e.Message
}

// jsonNode mirrors the JSON emitted by the upstream field extractor.
type jsonNode struct {
	Class        string      `json:"class"`
	Content      string      `json:"content"`
	Children     []*jsonNode `json:"children"`
	SymbolType   string      `json:"symbol_type"`
	NumericValue *float64    `json:"numeric_value"`
	StringValue  *string     `json:"string_value"`
}

// Decode parses upstream PPI JSON into a Node tree.
// Whitespace and comment tokens are dropped; the $$self dereference
// token triple is fused into a single Symbol node.
func Decode(data []byte) (*Node, error) {
	var root jsonNode
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, &DecodeError{Message: "invalid JSON: " + err.Error()}
	}
	return convert(&root)
}

func convert(j *jsonNode) (*Node, error) {
	kind, err := classKind(j.Class)
	if err != nil {
		return nil, err
	}

	n := &Node{Kind: kind, Content: j.Content}

	switch kind {
	case KindNumber:
		if j.NumericValue != nil {
			n.NumVal = *j.NumericValue
		} else {
			n.NumVal = parseNumToken(j.Content)
		}
	case KindString:
		if j.StringValue != nil {
			n.StrVal = *j.StringValue
		} else {
			n.StrVal = unquote(j.Content)
		}
	}

	children := make([]*Node, 0, len(j.Children))
	for _, jc := range j.Children {
		if skipClass(jc.Class) {
			continue
		}
		c, err := convert(jc)
		if err != nil {
			return nil, err
		}
		children = append(children, c)
	}
	n.Children = fuseSelfRefs(children)
	return n, nil
}

// classKind maps a PPI class name onto a node kind.
// Unknown classes are an explicit decode error so that unsupported
// upstream shapes surface as per-expression fallbacks, never as
// silently mis-typed nodes.
func classKind(class string) (Kind, error) {
	switch {
	case class == "PPI::Document":
		return KindDocument, nil
	case class == "PPI::Statement::Expression":
		return KindExpression, nil
	case strings.HasPrefix(class, "PPI::Statement"):
		// Includes ::Break (return statements) and ::Variable.
		return KindStatement, nil
	case class == "PPI::Token::Operator":
		return KindOperator, nil
	case class == "PPI::Token::Symbol", class == "PPI::Token::Magic":
		return KindSymbol, nil
	case strings.HasPrefix(class, "PPI::Token::Number"):
		return KindNumber, nil
	case strings.HasPrefix(class, "PPI::Token::Quote::"):
		return KindString, nil
	case class == "PPI::Token::Word":
		return KindWord, nil
	case class == "PPI::Structure::List", class == "PPI::Structure::Constructor":
		return KindList, nil
	case class == "PPI::Structure::Subscript":
		return KindSubscript, nil
	case class == "PPI::Token::Structure":
		return KindStructure, nil
	case strings.HasPrefix(class, "PPI::Token::Regexp"), strings.HasPrefix(class, "PPI::Token::QuoteLike"):
		return KindRegexp, nil
	case class == "PPI::Token::Cast":
		return KindCast, nil
	default:
		return KindInvalid, &DecodeError{Class: class, Message: "unsupported node class"}
	}
}

func skipClass(class string) bool {
	return class == "PPI::Token::Whitespace" || class == "PPI::Token::Comment"
}

// parseNumToken decodes a numeric token that arrived without a
// decoded value. Hex and octal tokens only reach this path.
func parseNumToken(s string) float64 {
	s = strings.TrimSpace(s)
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		if n, err := strconv.ParseUint(s[2:], 16, 64); err == nil {
			return float64(n)
		}
		return 0
	}
	if len(s) > 2 && s[0] == '0' && (s[1] == 'b' || s[1] == 'B') {
		if n, err := strconv.ParseUint(s[2:], 2, 64); err == nil {
			return float64(n)
		}
		return 0
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n
	}
	return 0
}

// unquote strips one layer of single or double quotes.
func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// fuseSelfRefs collapses the token triple [Cast "$", Symbol "$self",
// Subscript {Field}] into a single Symbol "$$self{Field}". PPI emits
// either form depending on how the original expression was written.
func fuseSelfRefs(children []*Node) []*Node {
	out := make([]*Node, 0, len(children))
	for i := 0; i < len(children); i++ {
		c := children[i]
		if c.Kind == KindCast && c.Content == "$" && i+2 < len(children) &&
			children[i+1].Kind == KindSymbol && children[i+1].Content == "$self" &&
			children[i+2].Kind == KindSubscript {
			if field, ok := subscriptKey(children[i+2]); ok {
				out = append(out, &Node{
					Kind:    KindSymbol,
					Content: "$$self{" + field + "}",
				})
				i += 2
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

// subscriptKey extracts the bareword key of a {Field} subscript.
func subscriptKey(n *Node) (string, bool) {
	if len(n.Children) != 1 {
		return "", false
	}
	expr := n.Children[0]
	if expr.Kind != KindExpression && expr.Kind != KindStatement {
		return "", false
	}
	if len(expr.Children) == 1 {
		switch c := expr.Children[0]; c.Kind {
		case KindWord:
			return c.Content, true
		case KindString:
			return c.StrVal, true
		}
	}
	return "", false
}
