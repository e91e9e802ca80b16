package label

import (
	"fmt"
	"path"
	"strings"
)

// Label identifies a single file inside a named cell as
// (cell, package path, file name). The zero value is not a valid label.
type Label struct {
	// Cell is the name of the repository the file belongs to, without
	// the "@" sigil. The main cell is identified by the configured
	// project cell name.
	Cell string

	// Package is the slash-separated package path relative to the cell
	// root. Empty for the cell root itself.
	Package string

	// Name is the file name within the package.
	Name string
}

// String renders the label in its canonical "@cell//pkg:name" form.
func (l Label) String() string {
	return fmt.Sprintf("@%s//%s:%s", l.Cell, l.Package, l.Name)
}

// PathFragment returns the cell-relative file path of the label.
func (l Label) PathFragment() string {
	return path.Join(l.Package, l.Name)
}

// ImportReference is the cache identity of one load/include statement:
// the label of the file that issued it plus the textual import
// specifier. The containing label is part of the identity because the
// same specifier resolves differently depending on where it appears,
// while repeated occurrences of one specifier in one file must share a
// single cache entry.
type ImportReference struct {
	ContainingLabel Label
	Import          string
}

// Label resolves the reference's import specifier against its
// containing label.
func (r ImportReference) Label() (Label, error) {
	return ParseImport(r.Import, r.ContainingLabel)
}

// IsRelative reports whether spec is a same-package reference (":name").
func IsRelative(spec string) bool {
	return strings.HasPrefix(spec, ":")
}

// ParseImport parses an import specifier relative to the label of the
// file containing it. Supported forms:
//
//	:name            same cell, same package
//	//pkg:name       same cell, absolute package
//	@cell//pkg:name  explicit cell, absolute package
func ParseImport(spec string, containing Label) (Label, error) {
	cell := containing.Cell
	rest := spec

	if strings.HasPrefix(rest, "@") {
		idx := strings.Index(rest, "//")
		if idx < 0 {
			return Label{}, fmt.Errorf("import %q names a cell but no absolute package", spec)
		}
		cell = rest[1:idx]
		if cell == "" {
			return Label{}, fmt.Errorf("import %q has an empty cell name", spec)
		}
		rest = rest[idx:]
	}

	switch {
	case strings.HasPrefix(rest, "//"):
		pkg, name, ok := strings.Cut(rest[2:], ":")
		if !ok || name == "" {
			return Label{}, fmt.Errorf("import %q is missing a file name", spec)
		}
		return Label{Cell: cell, Package: pkg, Name: name}, nil
	case strings.HasPrefix(rest, ":"):
		if rest == ":" {
			return Label{}, fmt.Errorf("import %q is missing a file name", spec)
		}
		return Label{Cell: cell, Package: containing.Package, Name: rest[1:]}, nil
	default:
		return Label{}, fmt.Errorf("import %q must start with %q, %q or %q", spec, ":", "//", "@")
	}
}
