package config

import (
	"errors"
	"fmt"
	"path/filepath"
)

// DefaultBuildFileName is the file name parsed as a build file when no
// override is configured.
const DefaultBuildFileName = "BUILD.hcl"

// Options holds all the configuration a parser instance needs to run.
type Options struct {
	// ProjectRoot is the absolute root directory of the main cell.
	ProjectRoot string

	// CellName names the main cell. Import references without an
	// explicit cell resolve against ProjectRoot.
	CellName string

	// CellRoots maps the names of other cells to their absolute root
	// directories.
	CellRoots map[string]string

	// RawConfig is the section -> field -> value table served to
	// read_config calls during evaluation.
	RawConfig map[string]map[string]string

	// BuildFileName is the file name treated as a build file.
	// Defaults to DefaultBuildFileName.
	BuildFileName string
}

// New validates opts and fills in defaults.
func New(opts Options) (*Options, error) {
	if opts.ProjectRoot == "" {
		return nil, errors.New("ProjectRoot is a required configuration field and cannot be empty")
	}
	if !filepath.IsAbs(opts.ProjectRoot) {
		return nil, fmt.Errorf("ProjectRoot must be absolute, got %q", opts.ProjectRoot)
	}
	if opts.CellName == "" {
		opts.CellName = "main"
	}
	if opts.BuildFileName == "" {
		opts.BuildFileName = DefaultBuildFileName
	}
	for name, root := range opts.CellRoots {
		if !filepath.IsAbs(root) {
			return nil, fmt.Errorf("cell %q root must be absolute, got %q", name, root)
		}
	}
	return &opts, nil
}
