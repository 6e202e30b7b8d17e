package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kolkov/uexpr/internal/codegen"
)

// Emit renders the registry as one Go source file. Functions appear in
// name order and three lookup maps resolve original expression text to
// the compiled functions, one map per calling convention.
func (r *Registry) Emit(pkg string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "// Code generated by uexpr. DO NOT EDIT.\n\n")
	fmt.Fprintf(&b, "package %s\n\n", pkg)
	fmt.Fprintf(&b, "import (\n\t\"github.com/kolkov/uexpr/rt\"\n)\n\n")

	for _, e := range r.Entries() {
		writeDoc(&b, e)
		b.WriteString(e.Source)
		b.WriteByte('\n')
	}

	writeLookup(&b, "ValueTransforms",
		"resolves transform expressions to compiled functions.",
		"func(rt.Value) (rt.Value, error)",
		r.contextUsages(codegen.ValueTransform))
	writeLookup(&b, "DisplayFormats",
		"resolves format expressions to compiled functions.",
		"func(rt.Value) string",
		r.contextUsages(codegen.DisplayFormat))
	writeLookup(&b, "BooleanGates",
		"resolves gate expressions to compiled functions.",
		"func(rt.Value, *rt.EvalContext) bool",
		r.contextUsages(codegen.BooleanGate))

	return b.String()
}

// writeDoc emits the function's doc comment carrying the original
// expression, so generated code stays reviewable against the source
// tag tables.
func writeDoc(b *strings.Builder, e *Entry) {
	if e.Fallback {
		fmt.Fprintf(b, "// %s is a fallback (%s).\n", e.Name, e.Reason)
	} else {
		fmt.Fprintf(b, "// %s implements the %s expression\n", e.Name, e.Type)
	}
	b.WriteString("//\n")
	for _, line := range strings.Split(e.Expr, "\n") {
		fmt.Fprintf(b, "//\t%s\n", line)
	}
}

// contextUsages returns expr -> name for one context, deduplicated
// and sorted by expression text.
func (r *Registry) contextUsages(typ codegen.ExprType) []Usage {
	seen := make(map[string]bool)
	var out []Usage
	for _, u := range r.usages {
		if u.Type != typ || seen[u.Expr] {
			continue
		}
		seen[u.Expr] = true
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Expr < out[j].Expr })
	return out
}

func writeLookup(b *strings.Builder, name, doc, sig string, usages []Usage) {
	fmt.Fprintf(b, "// %s %s\n", name, doc)
	fmt.Fprintf(b, "var %s = map[string]%s{\n", name, sig)
	for _, u := range usages {
		fmt.Fprintf(b, "\t%q: %s,\n", u.Expr, u.Name)
	}
	fmt.Fprintf(b, "}\n\n")
}
