// Package fs provides file system adapters for collecting, hashing and packaging build outputs.
package fs

import (
	"errors"
	"io/fs"
	"iter"
	"path/filepath"
	"slices"

	"go.trai.ch/ferry/internal/core/domain"
)

// Walker provides file walking functionality.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles yields every non-directory entry below root, skipping .git and
// any entry whose base name matches one of ignores. A missing root yields
// nothing. Any other walk error is yielded once with an empty path and ends the walk.
func (w *Walker) WalkFiles(root string, ignores []string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == root && errors.Is(err, fs.ErrNotExist) {
					return filepath.SkipAll
				}
				return err
			}

			if skipAction := w.shouldSkip(d, ignores); skipAction != nil {
				return skipAction
			}
			if d.IsDir() || w.ignored(d.Name(), ignores) {
				return nil
			}

			if !yield(path, nil) {
				return filepath.SkipAll
			}
			return nil
		})
		if err != nil {
			yield("", err)
		}
	}
}

// Match returns the files below root whose base name matches rule, as sorted
// paths relative to root. A tree that cannot be walked completely is an error.
func (w *Walker) Match(root string, rule domain.ArtifactRule) ([]string, error) {
	var matches []string
	for path, err := range w.WalkFiles(root, []string{domain.ManifestFileName}) {
		if err != nil {
			return nil, err
		}
		if !rule.Matches(path) {
			continue
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil, err
		}
		matches = append(matches, rel)
	}
	slices.Sort(matches)
	return matches, nil
}

// shouldSkip returns filepath.SkipDir for directories that are never walked.
func (w *Walker) shouldSkip(d fs.DirEntry, ignores []string) error {
	if !d.IsDir() {
		return nil
	}
	if d.Name() == ".git" || w.ignored(d.Name(), ignores) {
		return filepath.SkipDir
	}
	return nil
}

func (w *Walker) ignored(name string, ignores []string) bool {
	for _, ignore := range ignores {
		if matched, _ := filepath.Match(ignore, name); matched {
			return true
		}
	}
	return false
}
