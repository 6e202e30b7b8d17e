package registry

import (
	"strings"
	"testing"

	"github.com/kolkov/uexpr/internal/ast"
	"github.com/kolkov/uexpr/internal/codegen"
)

func divByHundred() ast.Node {
	return &ast.BinaryOp{
		Op:    "/",
		Left:  &ast.ValRef{},
		Right: &ast.NumberLit{Value: 100, Raw: "100"},
	}
}

func TestRegisterDeduplicates(t *testing.T) {
	r := New()

	first, err := r.Register(codegen.ValueTransform, "$val / 100", divByHundred())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	second, err := r.Register(codegen.ValueTransform, "$val/100", divByHundred())
	if err != nil {
		t.Fatalf("Register repeat: %v", err)
	}

	if first != second {
		t.Errorf("identical trees produced distinct entries: %s vs %s",
			first.Name, second.Name)
	}
	if first.Expr != "$val / 100" {
		t.Errorf("entry keeps first occurrence text, got %q", first.Expr)
	}

	s := r.Stats()
	if s.Scanned != 2 || s.Unique != 1 || s.Reused != 1 {
		t.Errorf("stats = %+v, want 2 scanned, 1 unique, 1 reused", s)
	}
	if got := len(r.Usages()); got != 2 {
		t.Errorf("got %d usages, want 2", got)
	}
}

func TestRegisterContextsAreDistinct(t *testing.T) {
	r := New()

	vt, err := r.Register(codegen.ValueTransform, "$val / 100", divByHundred())
	if err != nil {
		t.Fatalf("Register transform: %v", err)
	}
	df, err := r.Register(codegen.DisplayFormat, "$val / 100", divByHundred())
	if err != nil {
		t.Fatalf("Register format: %v", err)
	}

	if vt.Name == df.Name {
		t.Errorf("different contexts share name %s", vt.Name)
	}
	if !strings.HasPrefix(vt.Name, "ast_value_") {
		t.Errorf("transform name %q lacks ast_value_ prefix", vt.Name)
	}
	if !strings.HasPrefix(df.Name, "ast_print_") {
		t.Errorf("format name %q lacks ast_print_ prefix", df.Name)
	}
	if s := r.Stats(); s.Reused != 0 || s.Unique != 2 {
		t.Errorf("stats = %+v, want 2 unique, 0 reused", s)
	}
}

func TestRegisterFallsBackOnUnsupported(t *testing.T) {
	r := New()

	root := &ast.FunctionCall{Name: "gmtime", Args: []ast.Node{&ast.ValRef{}}}
	e, err := r.Register(codegen.ValueTransform, "gmtime($val)", root)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !e.Fallback {
		t.Fatal("unsupported tree should register as fallback")
	}
	if e.Reason == "" {
		t.Error("fallback entry carries no reason")
	}
	if !strings.Contains(e.Source, "return rt.Value{}, rt.ErrNotImplemented") {
		t.Errorf("transform fallback should return the not-implemented error:\n%s", e.Source)
	}
	s := r.Stats()
	if s.Fallbacks != 1 {
		t.Errorf("stats = %+v, want 1 fallback", s)
	}
	if len(s.FallbackExprs) != 1 || s.FallbackExprs[0] != "gmtime($val)" {
		t.Errorf("FallbackExprs = %v, want the offending expression", s.FallbackExprs)
	}
}

func TestRegisterFallback(t *testing.T) {
	r := New()

	e := r.RegisterFallback(codegen.BooleanGate, "$*#invalid", "decode: unknown class")
	if !e.Fallback || e.Reason != "decode: unknown class" {
		t.Fatalf("entry = %+v, want fallback with decode reason", e)
	}
	if !strings.HasPrefix(e.Name, "ast_condition_") {
		t.Errorf("gate fallback name %q lacks ast_condition_ prefix", e.Name)
	}
	if !strings.Contains(e.Source, "return false") {
		t.Errorf("gate fallback should be constant false:\n%s", e.Source)
	}

	again := r.RegisterFallback(codegen.BooleanGate, "$*#invalid", "decode: unknown class")
	if again != e {
		t.Error("repeated raw fallback should reuse the entry")
	}
	if s := r.Stats(); s.Scanned != 2 || s.Unique != 1 || s.Reused != 1 {
		t.Errorf("stats = %+v, want 2 scanned, 1 unique, 1 reused", s)
	}
}

func TestEntriesSortedByName(t *testing.T) {
	r := New()
	exprs := []string{"$val / 100", "$val * 2", "$val + 7", "length $val"}
	roots := []ast.Node{
		divByHundred(),
		&ast.BinaryOp{Op: "*", Left: &ast.ValRef{}, Right: &ast.NumberLit{Value: 2, Raw: "2"}},
		&ast.BinaryOp{Op: "+", Left: &ast.ValRef{}, Right: &ast.NumberLit{Value: 7, Raw: "7"}},
		&ast.FunctionCall{Name: "length", Args: []ast.Node{&ast.ValRef{}}},
	}
	for i, root := range roots {
		if _, err := r.Register(codegen.ValueTransform, exprs[i], root); err != nil {
			t.Fatalf("Register %q: %v", exprs[i], err)
		}
	}

	entries := r.Entries()
	if len(entries) != len(roots) {
		t.Fatalf("got %d entries, want %d", len(entries), len(roots))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Name >= entries[i].Name {
			t.Errorf("entries out of order: %s before %s",
				entries[i-1].Name, entries[i].Name)
		}
	}
}

func TestEmit(t *testing.T) {
	r := New()
	if _, err := r.Register(codegen.ValueTransform, "$val / 100", divByHundred()); err != nil {
		t.Fatalf("Register transform: %v", err)
	}
	df, err := r.Register(codegen.DisplayFormat, `sprintf("%.1f mm",$val)`, &ast.FormattedPrint{
		Format: &ast.StringLit{Value: "%.1f mm"},
		Args:   []ast.Node{&ast.ValRef{}},
	})
	if err != nil {
		t.Fatalf("Register format: %v", err)
	}
	gate, err := r.Register(codegen.BooleanGate, "$val == 1", &ast.BinaryOp{
		Op:    "==",
		Left:  &ast.ValRef{},
		Right: &ast.NumberLit{Value: 1, Raw: "1"},
	})
	if err != nil {
		t.Fatalf("Register gate: %v", err)
	}
	fb := r.RegisterFallback(codegen.ValueTransform, "ConvertDate($val)", "bareword \"ConvertDate\"")

	src := r.Emit("tags")

	for _, want := range []string{
		"// Code generated by uexpr. DO NOT EDIT.",
		"package tags",
		`"github.com/kolkov/uexpr/rt"`,
		"var ValueTransforms = map[string]func(rt.Value) (rt.Value, error){",
		"var DisplayFormats = map[string]func(rt.Value) string{",
		"var BooleanGates = map[string]func(rt.Value, *rt.EvalContext) bool{",
		`"$val / 100": ast_value_`,
		"\"sprintf(\\\"%.1f mm\\\",$val)\": " + df.Name,
		`"$val == 1": ` + gate.Name,
		"// " + fb.Name + " is a fallback (bareword \"ConvertDate\").",
		"//\t$val / 100",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("emitted source missing %q", want)
		}
	}

	// Every registered function body must be present.
	for _, e := range r.Entries() {
		if !strings.Contains(src, "func "+e.Name+"(") {
			t.Errorf("emitted source missing function %s", e.Name)
		}
	}
}

func TestStatsReport(t *testing.T) {
	s := Stats{
		Scanned:       10,
		Unique:        4,
		Reused:        6,
		Fallbacks:     1,
		ByType:        map[string]int{"ValueConv": 2, "PrintConv": 1, "Condition": 1},
		FallbackExprs: []string{"ConvertDateTime($val)"},
	}
	if got := s.Coverage(); got != 0.75 {
		t.Errorf("Coverage() = %v, want 0.75", got)
	}

	report := s.String()
	for _, want := range []string{
		"expressions: 10 scanned, 4 unique, 6 reused",
		"generated: 3, fallbacks: 1 (75.0% coverage)",
		"Condition: 1",
		"PrintConv: 1",
		"ValueConv: 2",
		"fallback: ConvertDateTime($val)",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}

func TestCoverageEmpty(t *testing.T) {
	if got := (Stats{}).Coverage(); got != 0 {
		t.Errorf("Coverage() on empty stats = %v, want 0", got)
	}
}
