package uexpr

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/kolkov/uexpr/internal/ast"
	"github.com/kolkov/uexpr/internal/codegen"
	"github.com/kolkov/uexpr/internal/normalizer"
	"github.com/kolkov/uexpr/internal/ppi"
	"github.com/kolkov/uexpr/internal/registry"
)

// Version is the uexpr version string.
const Version = "0.1.0"

// Record is one expression occurrence from a tag table.
type Record struct {
	// Type is the usage context: "ValueConv", "PrintConv" or
	// "Condition" (the long spellings "ValueTransform",
	// "DisplayFormat" and "BooleanGate" are accepted too).
	Type string `json:"type"`

	// Expr is the original Perl snippet, used as the lookup key in
	// the emitted tables and quoted in generated doc comments.
	Expr string `json:"expr"`

	// AST is the PPI token tree of the snippet as emitted by the
	// upstream tag-table extractor.
	AST json.RawMessage `json:"ast"`
}

// Compile compiles a batch of expression records into one Go source
// file of functions and lookup tables.
//
// Per-record problems (unparseable trees, unsupported constructs)
// degrade to fallback functions and statistics. Only two conditions
// abort the run with a CompileError: a precedence invariant violation
// in the normalizer and a function name collision in the registry,
// both of which mean the output could not be trusted. An unknown
// usage context in a record is a ParseError.
//
// Example:
//
//	res, err := uexpr.Compile(records, &uexpr.Config{Package: "exif"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("tags_gen.go", []byte(res.Source), 0o644)
func Compile(records []Record, config *Config) (*Result, error) {
	cfg := Config{}
	if config != nil {
		cfg = *config
	}
	cfg.applyDefaults()

	typs := make([]codegen.ExprType, len(records))
	for i, rec := range records {
		t, ok := exprType(rec.Type)
		if !ok {
			return nil, &ParseError{
				Index: i, Expr: rec.Expr,
				Message: fmt.Sprintf("unknown usage context %q", rec.Type),
			}
		}
		typs[i] = t
	}

	// Decode and normalize in parallel. Results land at the record's
	// index so the serial phase below sees input order regardless of
	// scheduling.
	type normalized struct {
		root ast.Node
		err  error
	}
	norm := make([]normalized, len(records))

	var g errgroup.Group
	g.SetLimit(cfg.Workers)
	for i, rec := range records {
		g.Go(func() error {
			raw, err := ppi.Decode(rec.AST)
			if err != nil {
				norm[i] = normalized{err: err}
				return nil
			}
			root, err := normalizer.Normalize(raw)
			if err != nil {
				var perr *normalizer.PrecedenceError
				if errors.As(err, &perr) {
					return err
				}
				norm[i] = normalized{err: err}
				return nil
			}
			norm[i] = normalized{root: root}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, &CompileError{Message: err.Error(), Cause: err}
	}

	// Registration is serial: dedup decisions and emitted names must
	// not depend on goroutine interleaving.
	reg := registry.New()
	for i, rec := range records {
		n := norm[i]
		if cfg.Debug != nil {
			dumpRecord(cfg.Debug, rec, n.root, n.err)
		}
		if n.err != nil {
			reg.RegisterFallback(typs[i], rec.Expr, n.err.Error())
			continue
		}
		if _, err := reg.Register(typs[i], rec.Expr, n.root); err != nil {
			return nil, &CompileError{Message: err.Error(), Cause: err}
		}
	}

	return &Result{
		Source: reg.Emit(cfg.Package),
		Stats:  statsFrom(reg.Stats()),
	}, nil
}

// dumpRecord writes one record's normalized tree, or its failure, in
// a form readable next to the original snippet.
func dumpRecord(w io.Writer, rec Record, root ast.Node, err error) {
	fmt.Fprintf(w, "=== %s %q\n", rec.Type, rec.Expr)
	if err != nil {
		fmt.Fprintf(w, "    fallback: %v\n", err)
		return
	}
	if perr := ast.NewPrinter(w).Print(root); perr != nil {
		fmt.Fprintf(w, "    dump failed: %v\n", perr)
	}
}

func exprType(s string) (codegen.ExprType, bool) {
	switch s {
	case "ValueConv", "ValueTransform":
		return codegen.ValueTransform, true
	case "PrintConv", "DisplayFormat":
		return codegen.DisplayFormat, true
	case "Condition", "BooleanGate":
		return codegen.BooleanGate, true
	}
	return 0, false
}
