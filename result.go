package uexpr

import (
	"github.com/kolkov/uexpr/internal/registry"
)

// Result is the output of one compilation run.
type Result struct {
	// Source is the emitted Go file: one function per distinct
	// computation and three lookup maps keyed by expression text.
	Source string

	// Stats are the run counters.
	Stats Stats
}

// Stats summarizes a compilation run.
type Stats struct {
	Scanned   int // expressions compiled, including repeats
	Unique    int // distinct functions emitted
	Reused    int // occurrences resolved to an existing function
	Fallbacks int // functions emitted as fallbacks
	ByType    map[string]int // distinct functions per usage context

	// FallbackExprs lists the original text of every expression that
	// fell back, in registration order.
	FallbackExprs []string
}

// Coverage returns the fraction of distinct functions that were fully
// generated rather than emitted as fallbacks.
func (s Stats) Coverage() float64 {
	if s.Unique == 0 {
		return 0
	}
	return float64(s.Unique-s.Fallbacks) / float64(s.Unique)
}

// String formats the counters for reporting.
func (s Stats) String() string {
	return registry.Stats{
		Scanned:       s.Scanned,
		Unique:        s.Unique,
		Reused:        s.Reused,
		Fallbacks:     s.Fallbacks,
		ByType:        s.ByType,
		FallbackExprs: s.FallbackExprs,
	}.String()
}

func statsFrom(rs registry.Stats) Stats {
	return Stats{
		Scanned:       rs.Scanned,
		Unique:        rs.Unique,
		Reused:        rs.Reused,
		Fallbacks:     rs.Fallbacks,
		ByType:        rs.ByType,
		FallbackExprs: rs.FallbackExprs,
	}
}
