// Package filter selects files for processing based on include/exclude
// patterns with find -path semantics. Explicit file arguments bypass
// filtering; directory arguments are walked recursively.
package filter

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/idelchi/goseal/pkg/pathmatch"
)

// Selection is the outcome of resolving positional arguments against the
// include/exclude patterns.
type Selection struct {
	// Files are the matched paths, in first-seen order without duplicates.
	Files []string

	// Scanned is the total number of candidate files considered.
	Scanned int
}

// Resolve expands the positional args (files or directories) and applies
// include/exclude filtering to walked directories. hasIncludes marks that
// include filtering was requested even if the pattern list is empty;
// excludes always win.
func Resolve(args, includes, excludes []string, hasIncludes bool) (Selection, error) {
	var sel Selection

	for _, arg := range args {
		if err := validatePath(arg); err != nil {
			return Selection{}, err
		}
	}

	inc, err := pathmatch.NewMatcher(normalize(includes))
	if err != nil {
		return Selection{}, fmt.Errorf("compiling include patterns: %w", err)
	}

	exc, err := pathmatch.NewMatcher(normalize(excludes))
	if err != nil {
		return Selection{}, fmt.Errorf("compiling exclude patterns: %w", err)
	}

	seen := make(map[string]struct{})

	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}

		seen[path] = struct{}{}
		sel.Files = append(sel.Files, path)
	}

	for _, arg := range args {
		arg = filepath.Clean(arg)

		info, err := os.Stat(arg)
		if err != nil {
			return Selection{}, fmt.Errorf("stat %q: %w", arg, err)
		}

		if !info.IsDir() {
			// Explicit file: bypass filtering.
			sel.Scanned++

			add(arg)

			continue
		}

		walked, total, err := walk(arg, inc, exc, hasIncludes)
		if err != nil {
			return Selection{}, err
		}

		sel.Scanned += total

		for _, path := range walked {
			add(path)
		}
	}

	if len(sel.Files) == 0 {
		return sel, fmt.Errorf("no files matched the provided patterns: %v", args)
	}

	return sel, nil
}

// walk traverses root, keeping files that pass the include/exclude check.
// Matching uses forward-slash paths relative to the working directory.
func walk(root string, inc, exc *pathmatch.Matcher, hasIncludes bool) (files []string, total int, err error) {
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if entry.IsDir() {
			return nil
		}

		total++

		clean := filepath.ToSlash(filepath.Clean(path))

		included := !hasIncludes || inc.MatchAny(clean)
		if !included || exc.MatchAny(clean) {
			return nil
		}

		files = append(files, path)

		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("walking %q: %w", root, err)
	}

	return files, total, nil
}

// normalize strips leading "./" so patterns match cleaned paths.
func normalize(patterns []string) []string {
	out := make([]string, len(patterns))

	for i, p := range patterns {
		out[i] = strings.TrimPrefix(p, "./")
	}

	return out
}

// validatePath rejects paths escaping the current working directory.
func validatePath(path string) error {
	if filepath.IsAbs(path) {
		return fmt.Errorf("absolute paths are not allowed: %q", path)
	}

	if strings.HasPrefix(filepath.Clean(path), "..") {
		return fmt.Errorf("paths must be within the current working directory: %q", path)
	}

	return nil
}
