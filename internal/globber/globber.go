// Package globber runs glob queries against a package directory and
// records them for later replay. Recording makes glob results usable
// for staleness checks: they depend on directory contents, so they
// cannot be expressed as plain file dependencies.
package globber

import (
	"io/fs"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Globber evaluates one glob query and returns the matched paths,
// relative to the globber's root, in sorted order.
type Globber interface {
	Run(include, exclude []string, excludeDirectories bool) ([]string, error)
}

// Factory creates a Globber rooted at the given directory. The parser
// creates one per build file being evaluated.
type Factory func(root string) Globber

// NewDir returns a Globber that walks the real file system under root.
// Patterns are doublestar-compatible (e.g. "**/*.go").
func NewDir(root string) Globber {
	return &dirGlobber{fsys: os.DirFS(root)}
}

// NewFS returns a Globber over an arbitrary fs.FS. Used by tests.
func NewFS(fsys fs.FS) Globber {
	return &dirGlobber{fsys: fsys}
}

type dirGlobber struct {
	fsys fs.FS
}

func (g *dirGlobber) Run(include, exclude []string, excludeDirectories bool) ([]string, error) {
	matched := make(map[string]struct{})
	for _, pattern := range include {
		err := doublestar.GlobWalk(g.fsys, pattern, func(path string, d fs.DirEntry) error {
			if excludeDirectories && d.IsDir() {
				return nil
			}
			excluded, err := matchesAny(exclude, path)
			if err != nil {
				return err
			}
			if !excluded {
				matched[path] = struct{}{}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	paths := make([]string, 0, len(matched))
	for p := range matched {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}

func matchesAny(patterns []string, path string) (bool, error) {
	for _, pattern := range patterns {
		ok, err := doublestar.Match(pattern, path)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
