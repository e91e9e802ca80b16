// Package resolver computes the file-system path an import reference
// points at. It is pure: no file is touched, existence is checked by
// the loader that consumes the resolved path.
package resolver

import (
	"path/filepath"
	"strings"

	"github.com/vk/skyparse/internal/config"
	"github.com/vk/skyparse/internal/label"
	"github.com/vk/skyparse/internal/model"
)

// Resolver maps import references to absolute file-system paths using
// the configured project root and cell root table.
type Resolver struct {
	opts *config.Options
}

// New creates a resolver for the given options.
func New(opts *config.Options) *Resolver {
	return &Resolver{opts: opts}
}

// Resolve computes the path of the file addressed by importStr as
// issued from the file identified by containing.
//
// A same-package reference may only name a file in the containing
// file's own directory; one that contains a path separator fails with
// an invalid-relative-import error. References to cells missing from
// the root table fail with an unknown-repository error.
func (r *Resolver) Resolve(containing label.Label, importStr string) (string, error) {
	if label.IsRelative(importStr) && strings.Contains(importStr, "/") {
		return "", model.NewInvalidRelativeImport(importStr)
	}

	target, err := label.ParseImport(importStr, containing)
	if err != nil {
		return "", model.NewParseError(importStr, err)
	}

	if target.Cell == r.opts.CellName {
		return filepath.Join(r.opts.ProjectRoot, filepath.FromSlash(target.PathFragment())), nil
	}
	root, ok := r.opts.CellRoots[target.Cell]
	if !ok {
		return "", model.NewUnknownRepository(target.Cell, importStr)
	}
	return filepath.Join(root, filepath.FromSlash(target.PathFragment())), nil
}
