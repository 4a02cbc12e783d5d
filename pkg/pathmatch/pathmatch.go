// Package pathmatch implements find -path matching semantics.
//
// It follows fnmatch(3) without FNM_PATHNAME:
//   - * matches any characters including /
//   - ? matches exactly one character including /
//   - [...] matches one character from the set including /
//   - \ escapes the next character
//
// This differs from Go's filepath.Match where * does not cross directory
// separators.
package pathmatch

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// Match reports whether path matches the pattern using find -path semantics.
func Match(pattern, path string) (bool, error) {
	re, err := compiled(pattern)
	if err != nil {
		return false, err
	}

	return re.MatchString(path), nil
}

// Matcher pre-compiles patterns for reuse across many paths.
type Matcher struct {
	patterns []*regexp.Regexp
}

// NewMatcher compiles the given patterns into a reusable matcher.
func NewMatcher(patterns []string) (*Matcher, error) {
	matcher := &Matcher{patterns: make([]*regexp.Regexp, 0, len(patterns))}

	for _, pattern := range patterns {
		re, err := compiled(pattern)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", pattern, err)
		}

		matcher.patterns = append(matcher.patterns, re)
	}

	return matcher, nil
}

// MatchAny reports whether path matches any of the compiled patterns.
func (m *Matcher) MatchAny(path string) bool {
	for _, re := range m.patterns {
		if re.MatchString(path) {
			return true
		}
	}

	return false
}

var cache sync.Map //nolint:gochecknoglobals // package-level cache is appropriate for compiled regexps

// compiled returns the cached regexp for pattern, translating and
// compiling it on first use.
func compiled(pattern string) (*regexp.Regexp, error) {
	if v, ok := cache.Load(pattern); ok {
		re, _ := v.(*regexp.Regexp) //nolint:errcheck // cache only ever stores compiled regexps

		return re, nil
	}

	expr, err := translate(pattern)
	if err != nil {
		return nil, err
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compiling pattern %q: %w", pattern, err)
	}

	cache.Store(pattern, re)

	return re, nil
}

// translate converts a find -path glob pattern into an anchored regexp.
func translate(pattern string) (string, error) {
	var expr strings.Builder

	expr.WriteString("^")

	for pos := 0; pos < len(pattern); {
		switch c := pattern[pos]; c {
		case '*':
			expr.WriteString(".*")

			pos++

		case '?':
			expr.WriteString(".")

			pos++

		case '[':
			class, next, err := scanClass(pattern, pos)
			if err != nil {
				return "", err
			}

			expr.WriteString(class)

			pos = next

		case '\\':
			if pos+1 >= len(pattern) {
				return "", fmt.Errorf("trailing backslash in pattern %q", pattern)
			}

			expr.WriteString(regexp.QuoteMeta(string(pattern[pos+1])))

			pos += 2

		default:
			expr.WriteString(regexp.QuoteMeta(string(c)))

			pos++
		}
	}

	expr.WriteString("$")

	return expr.String(), nil
}

// scanClass consumes a [...] character class starting at pos, returning
// its regexp form and the position after the closing bracket. A leading
// ! negates the class; a ] immediately after the opening bracket (or the
// negation) is literal.
func scanClass(pattern string, pos int) (string, int, error) {
	idx := pos + 1
	negated := false

	if idx < len(pattern) && pattern[idx] == '!' {
		negated = true

		idx++
	}

	// Literal ] at the head of the class.
	if idx < len(pattern) && pattern[idx] == ']' {
		idx++
	}

	for ; idx < len(pattern); idx++ {
		if pattern[idx] == ']' {
			body := pattern[pos+1 : idx]

			if negated {
				body = "^" + body[1:]
			}

			return "[" + body + "]", idx + 1, nil
		}
	}

	return "", 0, fmt.Errorf("unclosed character class in pattern %q", pattern)
}
