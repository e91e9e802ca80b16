package model

import (
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/skyparse/internal/label"
)

// ExtensionRecord is the shared result of loading one extension file.
// It is created once per distinct import reference and is immutable
// thereafter; every file that loads the extension observes the same
// record instance.
type ExtensionRecord struct {
	// Bindings are the names exported by the executed extension.
	Bindings map[string]cty.Value

	// Path is the resolved file-system path of the extension.
	Path string

	// Dependencies are the extension's direct dependencies, in
	// first-seen order.
	Dependencies []*ExtensionRecord

	// ImportString is the specifier used to address this extension.
	ImportString string

	// Closure is the transitive closure of file paths: Path first,
	// then each dependency's closure in first-seen order.
	Closure []string
}

// IncludeRecord is the include-mechanism counterpart of
// ExtensionRecord: the same transitive file discovery, but the file is
// never executed and exports no bindings.
type IncludeRecord struct {
	Path         string
	Dependencies []*IncludeRecord
	Closure      []string
}

// A Reference is one load or include statement extracted from a file.
type Reference struct {
	// Import is the textual import specifier.
	Import string

	// Include marks a legacy include reference; otherwise the
	// reference is a load.
	Include bool

	// Symbols are the exported names a load statement binds directly
	// into the consuming scope. Empty for includes.
	Symbols []string
}

// Key returns the cache identity of this reference as issued from the
// file identified by containing.
func (r Reference) Key(containing label.Label) label.ImportReference {
	return label.ImportReference{ContainingLabel: containing, Import: r.Import}
}
