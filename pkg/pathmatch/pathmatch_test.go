package pathmatch_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-yaml"

	"github.com/idelchi/goseal/pkg/pathmatch"
)

// scenario is a single golden case from a YAML file.
type scenario struct {
	Pattern     string `yaml:"pattern"`
	Path        string `yaml:"path"`
	Match       bool   `yaml:"match"`
	Description string `yaml:"description,omitempty"`
}

// suite is a named collection of scenarios.
type suite struct {
	Name      string     `yaml:"name"`
	Scenarios []scenario `yaml:"cases"`
}

// golden loads every testdata/*.yml file into its suites.
func golden(t *testing.T) map[string][]suite {
	t.Helper()

	files, err := filepath.Glob("testdata/*.yml")
	if err != nil {
		t.Fatalf("globbing testdata: %v", err)
	}

	if len(files) == 0 {
		t.Fatal("no testdata/*.yml files found")
	}

	out := make(map[string][]suite, len(files))

	for _, file := range files {
		data, err := os.ReadFile(file) //nolint:gosec // known testdata files
		if err != nil {
			t.Fatalf("reading %s: %v", file, err)
		}

		var suites []suite
		if err := yaml.Unmarshal(data, &suites); err != nil {
			t.Fatalf("parsing %s: %v", file, err)
		}

		out[filepath.Base(file)] = suites
	}

	return out
}

// run iterates file, suite, scenario and calls fn once per scenario.
func run(t *testing.T, fn func(t *testing.T, sc scenario)) {
	t.Helper()

	for file, suites := range golden(t) {
		t.Run(file, func(t *testing.T) {
			t.Parallel()

			for _, s := range suites {
				t.Run(s.Name, func(t *testing.T) {
					t.Parallel()

					for i, sc := range s.Scenarios {
						name := sc.Description
						if name == "" {
							name = fmt.Sprintf("case_%d", i)
						}

						t.Run(name, func(t *testing.T) {
							t.Parallel()
							fn(t, sc)
						})
					}
				})
			}
		})
	}
}

func TestMatch(t *testing.T) {
	t.Parallel()

	run(t, func(t *testing.T, sc scenario) {
		t.Helper()

		got, err := pathmatch.Match(sc.Pattern, sc.Path)
		if err != nil {
			t.Fatalf("Match(%q, %q) error: %v", sc.Pattern, sc.Path, err)
		}

		if got != sc.Match {
			t.Errorf("Match(%q, %q) = %v, want %v", sc.Pattern, sc.Path, got, sc.Match)
		}
	})
}

func TestMatcherAgreesWithMatch(t *testing.T) {
	t.Parallel()

	run(t, func(t *testing.T, sc scenario) {
		t.Helper()

		matcher, err := pathmatch.NewMatcher([]string{sc.Pattern})
		if err != nil {
			t.Fatalf("NewMatcher(%q) error: %v", sc.Pattern, err)
		}

		if got := matcher.MatchAny(sc.Path); got != sc.Match {
			t.Errorf("MatchAny(%q) with pattern %q = %v, want %v", sc.Path, sc.Pattern, got, sc.Match)
		}
	})
}

func TestMatchAnyMultiplePatterns(t *testing.T) {
	t.Parallel()

	matcher, err := pathmatch.NewMatcher([]string{"*.txt", "docs/*"})
	if err != nil {
		t.Fatalf("NewMatcher error: %v", err)
	}

	for path, want := range map[string]bool{
		"notes.txt":      true,
		"docs/readme.md": true,
		"src/main.go":    false,
	} {
		if got := matcher.MatchAny(path); got != want {
			t.Errorf("MatchAny(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestNewMatcherRejectsBadPattern(t *testing.T) {
	t.Parallel()

	if _, err := pathmatch.NewMatcher([]string{"unterminated[class"}); err == nil {
		t.Error("NewMatcher accepted an unterminated character class")
	}
}
