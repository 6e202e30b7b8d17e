package normalizer

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kolkov/uexpr/internal/ast"
	"github.com/kolkov/uexpr/internal/ppi"
)

// Raw tree constructors. Strings built with sq are single-quoted
// (no interpolation); dq strings interpolate.

func document(stmts ...*ppi.Node) *ppi.Node {
	return &ppi.Node{Kind: ppi.KindDocument, Children: stmts}
}

func stmt(children ...*ppi.Node) *ppi.Node {
	return &ppi.Node{Kind: ppi.KindStatement, Children: children}
}

func expr(children ...*ppi.Node) *ppi.Node {
	return &ppi.Node{Kind: ppi.KindExpression, Children: children}
}

func list(children ...*ppi.Node) *ppi.Node {
	return &ppi.Node{Kind: ppi.KindList, Children: children}
}

func sym(s string) *ppi.Node {
	return &ppi.Node{Kind: ppi.KindSymbol, Content: s}
}

func num(v float64, raw string) *ppi.Node {
	return &ppi.Node{Kind: ppi.KindNumber, Content: raw, NumVal: v}
}

func sq(s string) *ppi.Node {
	return &ppi.Node{Kind: ppi.KindString, Content: "'" + s + "'", StrVal: s}
}

func dq(s string) *ppi.Node {
	return &ppi.Node{Kind: ppi.KindString, Content: `"` + s + `"`, StrVal: s}
}

func op(s string) *ppi.Node {
	return &ppi.Node{Kind: ppi.KindOperator, Content: s}
}

func word(s string) *ppi.Node {
	return &ppi.Node{Kind: ppi.KindWord, Content: s}
}

func regexp(s string) *ppi.Node {
	return &ppi.Node{Kind: ppi.KindRegexp, Content: s}
}

func semi() *ppi.Node {
	return &ppi.Node{Kind: ppi.KindStructure, Content: ";"}
}

func TestPassOrder(t *testing.T) {
	passes := New().Passes()
	wantNames := []string{
		"FunctionCalls", "BinaryOps", "StringOps",
		"SafeDivision", "Ternary",
		"Sprintf", "PostfixConditional", "ConditionalAssignment",
	}
	if len(passes) != len(wantNames) {
		t.Fatalf("got %d passes, want %d", len(passes), len(wantNames))
	}
	last := TierHigh
	for i, p := range passes {
		if p.Name() != wantNames[i] {
			t.Errorf("pass %d = %s, want %s", i, p.Name(), wantNames[i])
		}
		if p.Tier() < last {
			t.Errorf("pass %s (tier %s) runs after tier %s", p.Name(), p.Tier(), last)
		}
		last = p.Tier()
	}
}

func TestRewriteTierViolation(t *testing.T) {
	// Bypass New to simulate a mis-sorted pass list.
	n := &Normalizer{passes: []Pass{&TernaryPass{}, &FunctionCallsPass{}}}
	_, err := n.Rewrite(document(stmt(sym("$val"))))
	var pe *PrecedenceError
	if !errors.As(err, &pe) {
		t.Fatalf("Rewrite returned %v, want *PrecedenceError", err)
	}
	if pe.Prev != "Ternary" || pe.Next != "FunctionCalls" {
		t.Errorf("PrecedenceError names = %s, %s", pe.Prev, pe.Next)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input *ppi.Node
		want  ast.Node
	}{
		{
			name:  "simple division",
			input: document(stmt(sym("$val"), op("/"), num(100, "100"))),
			want: &ast.BinaryOp{
				Op:   "/",
				Left: &ast.ValRef{},
				Right: &ast.NumberLit{Value: 100, Raw: "100"},
			},
		},
		{
			name: "arithmetic precedence",
			input: document(stmt(
				sym("$val"), op("*"), num(2, "2"), op("+"), num(1, "1"),
			)),
			want: &ast.BinaryOp{
				Op: "+",
				Left: &ast.BinaryOp{
					Op:    "*",
					Left:  &ast.ValRef{},
					Right: &ast.NumberLit{Value: 2, Raw: "2"},
				},
				Right: &ast.NumberLit{Value: 1, Raw: "1"},
			},
		},
		{
			name: "power is right associative",
			input: document(stmt(
				num(2, "2"), op("**"), num(3, "3"), op("**"), num(2, "2"),
			)),
			want: &ast.BinaryOp{
				Op:   "**",
				Left: &ast.NumberLit{Value: 2, Raw: "2"},
				Right: &ast.BinaryOp{
					Op:    "**",
					Left:  &ast.NumberLit{Value: 3, Raw: "3"},
					Right: &ast.NumberLit{Value: 2, Raw: "2"},
				},
			},
		},
		{
			name: "unary minus",
			input: document(stmt(
				op("-"), sym("$val"), op("/"), num(10, "10"),
			)),
			want: &ast.BinaryOp{
				Op:    "/",
				Left:  &ast.FunctionCall{Name: "neg", Args: []ast.Node{&ast.ValRef{}}},
				Right: &ast.NumberLit{Value: 10, Raw: "10"},
			},
		},
		{
			name: "named unary binds before ternary",
			input: document(stmt(
				word("length"), sym("$val"), op("?"),
				num(1, "1"), op("/"), sym("$val"), op(":"), num(0, "0"),
			)),
			want: &ast.Ternary{
				Cond: &ast.FunctionCall{Name: "length", Args: []ast.Node{&ast.ValRef{}}},
				Then: &ast.BinaryOp{
					Op:    "/",
					Left:  &ast.NumberLit{Value: 1, Raw: "1"},
					Right: &ast.ValRef{},
				},
				Else: &ast.NumberLit{Value: 0, Raw: "0"},
			},
		},
		{
			name: "safe division",
			input: document(stmt(
				sym("$val"), op("?"),
				num(10, "10"), op("/"), sym("$val"), op(":"), num(0, "0"),
			)),
			want: &ast.SafeDivision{
				Numer: &ast.NumberLit{Value: 10, Raw: "10"},
				Denom: &ast.ValRef{},
			},
		},
		{
			name: "safe reciprocal",
			input: document(stmt(
				sym("$val"), op("?"),
				num(1, "1"), op("/"), sym("$val"), op(":"), num(0, "0"),
			)),
			want: &ast.SafeDivision{
				Numer: &ast.NumberLit{Value: 1, Raw: "1"},
				Denom: &ast.ValRef{},
			},
		},
		{
			name: "ternary with string branches",
			input: document(stmt(
				sym("$val"), op("=="), num(1, "1"), op("?"), sq("On"), op(":"), sq("Off"),
			)),
			want: &ast.Ternary{
				Cond: &ast.BinaryOp{
					Op:    "==",
					Left:  &ast.ValRef{},
					Right: &ast.NumberLit{Value: 1, Raw: "1"},
				},
				Then: &ast.StringLit{Value: "On"},
				Else: &ast.StringLit{Value: "Off"},
			},
		},
		{
			name: "parenthesized sprintf",
			input: document(stmt(
				word("sprintf"),
				list(expr(dq("%x"), op(","), sym("$val"))),
			)),
			want: &ast.FormattedPrint{
				Format: &ast.StringLit{Value: "%x"},
				Args:   []ast.Node{&ast.ValRef{}},
			},
		},
		{
			name: "sprintf with repeated format",
			input: document(stmt(
				word("sprintf"),
				list(expr(
					dq("%19d"), op("."), dq(" %3d"), op("x"), num(8, "8"),
					op(","), sym("$val"),
				)),
			)),
			want: &ast.FormattedPrint{
				Format:      &ast.StringLit{Value: "%19d"},
				RepeatPart:  " %3d",
				RepeatCount: 8,
				Args:        []ast.Node{&ast.ValRef{}},
			},
		},
		{
			name: "nested list operators",
			input: document(stmt(
				word("join"), sq(" "), op(","),
				word("unpack"), sq("H2H2"), op(","), sym("$val"),
			)),
			want: &ast.FunctionCall{
				Name: "join",
				Args: []ast.Node{
					&ast.StringLit{Value: " "},
					&ast.FunctionCall{
						Name: "unpack",
						Args: []ast.Node{&ast.StringLit{Value: "H2H2"}, &ast.ValRef{}},
					},
				},
			},
		},
		{
			name: "substitution with trailing value",
			input: document(
				stmt(sym("$val"), op("=~"), regexp("s/ /./"), semi()),
				stmt(sym("$val"), semi()),
			),
			want: &ast.FunctionCall{
				Name: "regex_replace",
				Args: []ast.Node{
					&ast.ValRef{},
					&ast.StringLit{Value: " "},
					&ast.StringLit{Value: "."},
				},
			},
		},
		{
			name: "global substitution",
			input: document(
				stmt(sym("$val"), op("=~"), regexp("s/x/y/g"), semi()),
				stmt(sym("$val"), semi()),
			),
			want: &ast.FunctionCall{
				Name: "regex_replace_all",
				Args: []ast.Node{
					&ast.ValRef{},
					&ast.StringLit{Value: "x"},
					&ast.StringLit{Value: "y"},
				},
			},
		},
		{
			name: "transliteration",
			input: document(stmt(
				sym("$val"), op("=~"), regexp("tr/a-z/A-Z/"),
			)),
			want: &ast.FunctionCall{
				Name: "tr",
				Args: []ast.Node{
					&ast.ValRef{},
					&ast.StringLit{Value: "a-z"},
					&ast.StringLit{Value: "A-Z"},
				},
			},
		},
		{
			name: "gate with low precedence and",
			input: document(stmt(
				sym("$$self{Make}"), op("=~"), regexp("/^Canon/"),
				op("and"), sym("$count"), op("=="), num(582, "582"),
			)),
			want: &ast.BinaryOp{
				Op: "and",
				Left: &ast.FunctionCall{
					Name: "regex_match",
					Args: []ast.Node{
						&ast.SelfField{Field: "Make"},
						&ast.StringLit{Value: "^Canon"},
					},
				},
				Right: &ast.BinaryOp{
					Op:    "==",
					Left:  &ast.SelfField{Field: "count"},
					Right: &ast.NumberLit{Value: 582, Raw: "582"},
				},
			},
		},
		{
			name: "postfix conditional return",
			input: document(
				stmt(
					word("return"), sq("inf"), word("if"),
					sym("$val"), op(">="), num(100, "100"), semi(),
				),
				stmt(
					word("return"), sym("$val"), op("/"), num(4, "4"), semi(),
				),
			),
			want: &ast.PostfixConditional{
				Value: &ast.StringLit{Value: "inf"},
				Cond: &ast.BinaryOp{
					Op:    ">=",
					Left:  &ast.ValRef{},
					Right: &ast.NumberLit{Value: 100, Raw: "100"},
				},
				Rest: &ast.BinaryOp{
					Op:    "/",
					Left:  &ast.ValRef{},
					Right: &ast.NumberLit{Value: 4, Raw: "4"},
				},
			},
		},
		{
			name: "conditional assignment",
			input: document(
				stmt(
					sym("$val"), op(">"), num(1800, "1800"),
					op("and"), sym("$val"), op("-="), num(3600, "3600"), semi(),
				),
				stmt(
					op("-"), sym("$val"), op("/"), num(10, "10"), semi(),
				),
			),
			want: &ast.ConditionalAssignment{
				Cond: &ast.BinaryOp{
					Op:    ">",
					Left:  &ast.ValRef{},
					Right: &ast.NumberLit{Value: 1800, Raw: "1800"},
				},
				Op:     "-",
				Amount: &ast.NumberLit{Value: 3600, Raw: "3600"},
				Result: &ast.BinaryOp{
					Op:    "/",
					Left:  &ast.FunctionCall{Name: "neg", Args: []ast.Node{&ast.ValRef{}}},
					Right: &ast.NumberLit{Value: 10, Raw: "10"},
				},
			},
		},
		{
			name:  "interpolated string",
			input: document(stmt(dq("$val m"))),
			want: &ast.StringConcat{
				Parts: []ast.Node{&ast.ValRef{}, &ast.StringLit{Value: " m"}},
			},
		},
		{
			name:  "undef literal",
			input: document(stmt(word("undef"))),
			want:  &ast.Undef{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("tree mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRewriteIdempotent(t *testing.T) {
	tests := []struct {
		name  string
		input *ppi.Node
	}{
		{
			"division",
			document(stmt(sym("$val"), op("/"), num(100, "100"))),
		},
		{
			"length guard",
			document(stmt(
				word("length"), sym("$val"), op("?"),
				num(1, "1"), op("/"), sym("$val"), op(":"), num(0, "0"),
			)),
		},
		{
			"safe division",
			document(stmt(
				sym("$val"), op("?"),
				num(1, "1"), op("/"), sym("$val"), op(":"), num(0, "0"),
			)),
		},
		{
			"substitution with trailing value",
			document(
				stmt(sym("$val"), op("=~"), regexp("s/ /./"), semi()),
				stmt(sym("$val"), semi()),
			),
		},
		{
			"postfix conditional",
			document(
				stmt(word("return"), sq("inf"), word("if"),
					sym("$val"), op(">="), num(100, "100"), semi()),
				stmt(word("return"), sym("$val"), op("/"), num(4, "4"), semi()),
			),
		},
		{
			"conditional assignment",
			document(
				stmt(sym("$val"), op(">"), num(1800, "1800"), op("and"),
					sym("$val"), op("-="), num(3600, "3600"), semi()),
				stmt(op("-"), sym("$val"), op("/"), num(10, "10"), semi()),
			),
		},
	}
	n := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			once, err := n.Rewrite(tt.input)
			if err != nil {
				t.Fatalf("Rewrite: %v", err)
			}
			twice, err := n.Rewrite(once)
			if err != nil {
				t.Fatalf("Rewrite of rewritten tree: %v", err)
			}
			if diff := cmp.Diff(once, twice); diff != "" {
				t.Errorf("rewrite is not idempotent (-once +twice):\n%s", diff)
			}
		})
	}
}

func TestNormalizeUnsupported(t *testing.T) {
	tests := []struct {
		name  string
		input *ppi.Node
	}{
		{"unknown bareword", document(stmt(word("gmtime")))},
		{"empty document", document()},
		{
			"three statements",
			document(stmt(sym("$val")), stmt(sym("$val")), stmt(sym("$val"))),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.input)
			var ue *ast.UnsupportedError
			if !errors.As(err, &ue) {
				t.Fatalf("Normalize returned %v, want *ast.UnsupportedError", err)
			}
		})
	}
}
