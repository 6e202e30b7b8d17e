package uexpr

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

// ppiDoc wraps statement-level JSON in a PPI document envelope.
func ppiDoc(children string) json.RawMessage {
	return json.RawMessage(`{"class":"PPI::Document","children":[{"class":"PPI::Statement","children":[` + children + `]}]}`)
}

var (
	divJSON = ppiDoc(`
		{"class":"PPI::Token::Symbol","content":"$val"},
		{"class":"PPI::Token::Operator","content":"/"},
		{"class":"PPI::Token::Number","content":"100","numeric_value":100}`)

	sprintfJSON = ppiDoc(`
		{"class":"PPI::Token::Word","content":"sprintf"},
		{"class":"PPI::Structure::List","children":[
			{"class":"PPI::Statement::Expression","children":[
				{"class":"PPI::Token::Quote::Double","content":"\"%.1f mm\"","string_value":"%.1f mm"},
				{"class":"PPI::Token::Operator","content":","},
				{"class":"PPI::Token::Symbol","content":"$val"}]}]}`)

	condJSON = ppiDoc(`
		{"class":"PPI::Token::Cast","content":"$"},
		{"class":"PPI::Token::Symbol","content":"$self"},
		{"class":"PPI::Structure::Subscript","children":[
			{"class":"PPI::Statement::Expression","children":[
				{"class":"PPI::Token::Word","content":"Make"}]}]},
		{"class":"PPI::Token::Operator","content":"=~"},
		{"class":"PPI::Token::Regexp::Match","content":"/^Canon/"}`)
)

func TestCompile(t *testing.T) {
	records := []Record{
		{Type: "ValueConv", Expr: "$val / 100", AST: divJSON},
		{Type: "PrintConv", Expr: `sprintf("%.1f mm",$val)`, AST: sprintfJSON},
		{Type: "Condition", Expr: "$$self{Make} =~ /^Canon/", AST: condJSON},
	}

	res, err := Compile(records, nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	for _, want := range []string{
		"// Code generated by uexpr. DO NOT EDIT.",
		"package tags",
		"func ast_value_",
		"func ast_print_",
		"func ast_condition_",
		"rt.Div(val, rt.Num(100))",
		`rt.Sprintf(rt.Str("%.1f mm"), val)`,
		`rt.RegexMatch(ctx.Get("Make"), "^Canon")`,
		`"$val / 100": ast_value_`,
		"\"sprintf(\\\"%.1f mm\\\",$val)\": ast_print_",
		`"$$self{Make} =~ /^Canon/": ast_condition_`,
	} {
		if !strings.Contains(res.Source, want) {
			t.Errorf("emitted source missing %q", want)
		}
	}

	s := res.Stats
	if s.Scanned != 3 || s.Unique != 3 || s.Reused != 0 || s.Fallbacks != 0 {
		t.Errorf("stats = %+v, want 3 scanned, 3 unique", s)
	}
	if got := s.Coverage(); got != 1 {
		t.Errorf("Coverage() = %v, want 1", got)
	}
}

func TestCompileDeduplicatesRepeats(t *testing.T) {
	records := []Record{
		{Type: "ValueConv", Expr: "$val / 100", AST: divJSON},
		{Type: "ValueConv", Expr: "$val / 100", AST: divJSON},
		{Type: "ValueConv", Expr: "$val/100", AST: divJSON},
	}

	res, err := Compile(records, nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	s := res.Stats
	if s.Scanned != 3 || s.Unique != 1 || s.Reused != 2 {
		t.Errorf("stats = %+v, want 3 scanned, 1 unique, 2 reused", s)
	}
	// Both spellings key the same function in the lookup table.
	if strings.Count(res.Source, "func ast_value_") != 1 {
		t.Errorf("repeat records emitted more than one function:\n%s", res.Source)
	}
	for _, key := range []string{`"$val / 100": ast_value_`, `"$val/100": ast_value_`} {
		if !strings.Contains(res.Source, key) {
			t.Errorf("lookup table missing key %q", key)
		}
	}
}

func TestCompileFallsBackOnBadTree(t *testing.T) {
	records := []Record{
		{Type: "PrintConv", Expr: "ConvertDateTime($val)", AST: json.RawMessage(`{not json`)},
		{Type: "ValueConv", Expr: "$val / 100", AST: divJSON},
	}

	res, err := Compile(records, nil)
	if err != nil {
		t.Fatalf("per-record decode failure must not abort the run: %v", err)
	}
	s := res.Stats
	if s.Fallbacks != 1 || s.Unique != 2 {
		t.Errorf("stats = %+v, want 1 fallback of 2 unique", s)
	}
	if len(s.FallbackExprs) != 1 || s.FallbackExprs[0] != "ConvertDateTime($val)" {
		t.Errorf("FallbackExprs = %v, want the offending expression", s.FallbackExprs)
	}
	if !strings.Contains(res.Source, "is a fallback (") {
		t.Error("emitted source lacks the fallback doc comment")
	}
	if !strings.Contains(res.Source, `"ConvertDateTime($val)": ast_print_`) {
		t.Error("fallback function not wired into the lookup table")
	}
}

func TestCompileUnknownContext(t *testing.T) {
	records := []Record{
		{Type: "ValueConv", Expr: "$val / 100", AST: divJSON},
		{Type: "RawConv", Expr: "$val", AST: divJSON},
	}

	_, err := Compile(records, nil)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Compile returned %v, want *ParseError", err)
	}
	if pe.Index != 1 {
		t.Errorf("ParseError.Index = %d, want 1", pe.Index)
	}
}

func TestCompileLongContextSpellings(t *testing.T) {
	records := []Record{
		{Type: "ValueTransform", Expr: "$val / 100", AST: divJSON},
		{Type: "DisplayFormat", Expr: `sprintf("%.1f mm",$val)`, AST: sprintfJSON},
		{Type: "BooleanGate", Expr: "$$self{Make} =~ /^Canon/", AST: condJSON},
	}
	res, err := Compile(records, nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if res.Stats.Unique != 3 {
		t.Errorf("stats = %+v, want 3 unique", res.Stats)
	}
}

func TestCompileConfig(t *testing.T) {
	records := []Record{
		{Type: "ValueConv", Expr: "$val / 100", AST: divJSON},
	}
	res, err := Compile(records, &Config{Package: "exif", Workers: 1})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !strings.Contains(res.Source, "package exif\n") {
		t.Error("configured package name not applied")
	}
}

func TestCompileEmpty(t *testing.T) {
	res, err := Compile(nil, nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if res.Stats.Scanned != 0 {
		t.Errorf("stats = %+v, want empty", res.Stats)
	}
	if !strings.Contains(res.Source, "var ValueTransforms = map[string]") {
		t.Error("empty run should still emit the lookup tables")
	}
}
