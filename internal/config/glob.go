package config

import (
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	ferrors "git.home.luguber.info/inful/subscript/internal/foundation/errors"
)

// expandAll resolves patterns relative to root into absolute file paths,
// in pattern order, without duplicates. "**" matches across directories.
func expandAll(root string, patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, pattern := range patterns {
		matches, err := expand(root, pattern)
		if err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid glob pattern").
				WithContext("pattern", pattern).
				Build()
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	return out, nil
}

// expand returns the files matching pattern, sorted.
func expand(root, pattern string) ([]string, error) {
	if !filepath.IsAbs(pattern) {
		pattern = filepath.Join(root, pattern)
	}
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}
