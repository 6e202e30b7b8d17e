package registry

import (
	"fmt"
	"sort"
	"strings"
)

// Stats are the counters of one compilation run.
type Stats struct {
	Scanned   int // expressions registered, including repeats
	Unique    int // distinct functions emitted
	Reused    int // occurrences resolved to an existing function
	Fallbacks int // functions emitted as fallbacks
	ByType    map[string]int // distinct functions per usage context

	// FallbackExprs lists the original text of every expression that
	// fell back, in registration order, to drive coverage work.
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

// String formats the counters for the -stats report.
func (s Stats) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "expressions: %d scanned, %d unique, %d reused\n",
		s.Scanned, s.Unique, s.Reused)
	fmt.Fprintf(&b, "generated: %d, fallbacks: %d (%.1f%% coverage)\n",
		s.Unique-s.Fallbacks, s.Fallbacks, 100*s.Coverage())

	types := make([]string, 0, len(s.ByType))
	for t := range s.ByType {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Fprintf(&b, "  %s: %d\n", t, s.ByType[t])
	}
	for _, expr := range s.FallbackExprs {
		fmt.Fprintf(&b, "  fallback: %s\n", expr)
	}
	return b.String()
}
