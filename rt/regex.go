package rt

import (
	"strings"
	"sync"

	"github.com/coregx/coregex"
)

// Regex substitution primitives for expressions like $val =~ s/ /./g.
// Patterns come from a fixed corpus of tag-table expressions, so the
// process-wide cache is small and never evicts.

var regexCache sync.Map // map[string]*coregex.Regexp

// compileCached returns a compiled pattern, caching compilations.
// Perl leftmost-first matching (no Longest), unlike the AWK engines
// this package descends from.
func compileCached(pattern string) (*coregex.Regexp, error) {
	if re, ok := regexCache.Load(pattern); ok {
		return re.(*coregex.Regexp), nil
	}
	re, err := coregex.Compile(pattern)
	if err != nil {
		return nil, err
	}
	if existing, loaded := regexCache.LoadOrStore(pattern, re); loaded {
		return existing.(*coregex.Regexp), nil
	}
	return re, nil
}

// RegexMatch reports whether v matches the pattern ($val =~ /pat/).
// An invalid pattern never matches.
func RegexMatch(v Value, pattern string) bool {
	re, err := compileCached(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(v.AsStr())
}

// RegexReplace replaces the first match of pattern in v with repl
// ($val =~ s/pat/repl/). Invalid patterns leave v unchanged.
func RegexReplace(v Value, pattern, repl string) Value {
	re, err := compileCached(pattern)
	if err != nil {
		return v
	}
	s := v.AsStr()
	loc := re.FindStringIndex(s)
	if loc == nil {
		return Str(s)
	}
	return Str(s[:loc[0]] + repl + s[loc[1]:])
}

// RegexReplaceAll replaces every match ($val =~ s/pat/repl/g).
func RegexReplaceAll(v Value, pattern, repl string) Value {
	re, err := compileCached(pattern)
	if err != nil {
		return v
	}
	return Str(re.ReplaceAllString(v.AsStr(), repl))
}

// LiteralReplace handles substitutions whose pattern has no regex
// metacharacters; generated code uses it to skip pattern compilation.
func LiteralReplace(v Value, old, repl string, all bool) Value {
	n := 1
	if all {
		n = -1
	}
	return Str(strings.Replace(v.AsStr(), old, repl, n))
}
