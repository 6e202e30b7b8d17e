// Package registry deduplicates generated functions by content.
//
// Tag tables repeat the same conversion expression across hundreds of
// tags. The registry keys every generated function by a hash of its
// usage context and normalized tree, so each distinct computation is
// emitted once and every tag that uses it resolves to the same
// function. Expressions with no generation rule become context
// appropriate fallback functions instead of errors.
package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/tidwall/btree"

	"github.com/kolkov/uexpr/internal/ast"
	"github.com/kolkov/uexpr/internal/codegen"
)

// namePrefix returns the function name prefix for a context.
func namePrefix(typ codegen.ExprType) string {
	switch typ {
	case codegen.ValueTransform:
		return "ast_value_"
	case codegen.DisplayFormat:
		return "ast_print_"
	default:
		return "ast_condition_"
	}
}

// Entry is one registered function.
type Entry struct {
	Name        string // emitted Go function name
	Type        codegen.ExprType
	Expr        string // original expression text, first occurrence
	Fingerprint string // canonical tree serialization
	Source      string // emitted function source
	Fallback    bool   // true when generation fell back
	Reason      string // unsupported-construct description for fallbacks
}

// CollisionError reports two distinct expressions hashing to the same
// function name. The hash space makes this practically unreachable;
// if it fires the emitted module would silently merge two different
// computations, so the whole run must abort.
type CollisionError struct {
	Name     string
	Existing string // fingerprint already registered
	New      string // conflicting fingerprint
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("registry: function name collision on %s: %q vs %q",
		e.Name, e.Existing, e.New)
}

// Registry accumulates functions for one compilation run.
// Not safe for concurrent use; the driver serializes registration.
type Registry struct {
	entries btree.Map[string, *Entry] // name -> entry, sorted for emission
	usages  []Usage
	stats   Stats
}

// Usage records one expression occurrence resolved to a function.
type Usage struct {
	Type codegen.ExprType
	Expr string
	Name string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{stats: Stats{ByType: make(map[string]int)}}
}

// Register resolves an expression to a function, generating it on
// first sight. The same context and tree always yield the same entry;
// a different tree arriving under an occupied name is a fatal
// CollisionError.
func (r *Registry) Register(typ codegen.ExprType, expr string, root ast.Node) (*Entry, error) {
	fp := ast.Fingerprint(root)
	name := functionName(typ, fp)
	r.stats.Scanned++

	if existing, ok := r.entries.Get(name); ok {
		if existing.Fingerprint != fp {
			return nil, &CollisionError{Name: name, Existing: existing.Fingerprint, New: fp}
		}
		r.stats.Reused++
		r.addUsage(typ, expr, name)
		return existing, nil
	}

	entry := &Entry{Name: name, Type: typ, Expr: expr, Fingerprint: fp}
	source, err := codegen.Generate(root, typ, name)
	switch err.(type) {
	case nil:
		entry.Source = source
	case *ast.UnsupportedError:
		entry.Fallback = true
		entry.Reason = err.Error()
		entry.Source = fallbackSource(typ, name)
		r.stats.Fallbacks++
		r.stats.FallbackExprs = append(r.stats.FallbackExprs, expr)
	default:
		return nil, err
	}

	r.entries.Set(name, entry)
	r.stats.Unique++
	r.stats.ByType[typ.String()]++
	r.addUsage(typ, expr, name)
	return entry, nil
}

// RegisterFallback records an expression that failed before reaching
// generation (decode or normalization) as a fallback function.
func (r *Registry) RegisterFallback(typ codegen.ExprType, expr, reason string) *Entry {
	// Hash the raw text: there is no normalized tree to fingerprint.
	fp := "raw:" + expr
	name := functionName(typ, fp)
	r.stats.Scanned++

	if existing, ok := r.entries.Get(name); ok {
		r.stats.Reused++
		r.addUsage(typ, expr, name)
		return existing
	}

	entry := &Entry{
		Name:        name,
		Type:        typ,
		Expr:        expr,
		Fingerprint: fp,
		Source:      fallbackSource(typ, name),
		Fallback:    true,
		Reason:      reason,
	}
	r.entries.Set(name, entry)
	r.stats.Unique++
	r.stats.Fallbacks++
	r.stats.FallbackExprs = append(r.stats.FallbackExprs, expr)
	r.stats.ByType[typ.String()]++
	r.addUsage(typ, expr, name)
	return entry
}

func (r *Registry) addUsage(typ codegen.ExprType, expr, name string) {
	r.usages = append(r.usages, Usage{Type: typ, Expr: expr, Name: name})
}

// Entries returns all entries in name order.
func (r *Registry) Entries() []*Entry {
	out := make([]*Entry, 0, r.entries.Len())
	r.entries.Scan(func(_ string, e *Entry) bool {
		out = append(out, e)
		return true
	})
	return out
}

// Usages returns every recorded occurrence in registration order.
func (r *Registry) Usages() []Usage { return r.usages }

// Stats returns a copy of the run counters.
func (r *Registry) Stats() Stats {
	s := r.stats
	s.ByType = make(map[string]int, len(r.stats.ByType))
	for k, v := range r.stats.ByType {
		s.ByType[k] = v
	}
	s.FallbackExprs = append([]string(nil), r.stats.FallbackExprs...)
	return s
}

// functionName derives the emitted name from context and fingerprint.
// 16 hex digits of the hash keep names short while leaving collisions
// to the CollisionError check.
func functionName(typ codegen.ExprType, fingerprint string) string {
	sum := sha256.Sum256([]byte(typ.String() + "\x00" + fingerprint))
	return namePrefix(typ) + hex.EncodeToString(sum[:8])
}

// fallbackSource emits the context's fallback body: transforms return
// an explicit not-implemented error, formats stringify their input,
// gates are false.
func fallbackSource(typ codegen.ExprType, name string) string {
	switch typ {
	case codegen.ValueTransform:
		return fmt.Sprintf("func %s(val rt.Value) (rt.Value, error) {\n\treturn rt.Value{}, rt.ErrNotImplemented\n}\n", name)
	case codegen.DisplayFormat:
		return fmt.Sprintf("func %s(val rt.Value) string {\n\treturn rt.Stringify(val)\n}\n", name)
	default:
		return fmt.Sprintf("func %s(val rt.Value, ctx *rt.EvalContext) bool {\n\treturn false\n}\n", name)
	}
}
