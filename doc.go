// Package uexpr compiles tag-table conversion expressions to Go.
//
// Metadata tag tables attach three kinds of Perl snippets to tags:
// value conversions that turn raw stored values into logical ones,
// print conversions that render values for humans, and conditions
// that pick between variant tag definitions. The upstream extractor
// parses each snippet with PPI and ships the token tree as JSON;
// uexpr normalizes those trees, deduplicates identical computations
// and emits one Go source file of compiled functions plus lookup
// tables keyed by the original expression text.
//
// Expressions the compiler cannot handle never fail the build: each
// becomes a fallback function with the behavior its context requires
// (transforms return rt.ErrNotImplemented, formats stringify their
// input, gates are false) and a counter in the run statistics.
package uexpr
