package syntax

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/skyparse/internal/model"
)

// Block types reserved by the language. They are consumed by the
// reference extraction pass and skipped during execution.
const (
	loadBlockType    = "load"
	includeBlockType = "include"
)

// Interpreter parses and executes build and extension files written in
// HCL native syntax.
type Interpreter struct{}

// NewInterpreter creates an HCL interpreter.
func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

// File is a parsed source file.
type File struct {
	Path string
	body *hclsyntax.Body
}

// Parse parses src into an AST. The returned error wraps the HCL
// diagnostics for a structurally invalid file.
func (i *Interpreter) Parse(src []byte, path string) (*File, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, path)
	if diags.HasErrors() {
		return nil, diags
	}
	body, ok := f.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("%s: not an HCL native syntax file", path)
	}
	return &File{Path: path, body: body}, nil
}

// References extracts the file's load and include references in source
// order, without evaluating the file. Load symbols must be static
// string lists.
func (f *File) References() ([]model.Reference, error) {
	var refs []model.Reference
	for _, block := range f.body.Blocks {
		switch block.Type {
		case loadBlockType, includeBlockType:
		default:
			continue
		}
		if len(block.Labels) != 1 {
			return nil, fmt.Errorf(
				"%s: %s block at %s must carry exactly one import label",
				f.Path, block.Type, block.DefRange().String())
		}
		ref := model.Reference{
			Import:  block.Labels[0],
			Include: block.Type == includeBlockType,
		}
		if block.Type == loadBlockType {
			symbols, err := loadSymbols(block)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", f.Path, err)
			}
			ref.Symbols = symbols
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// loadSymbols evaluates the optional "symbols" attribute of a load
// block. It is resolved before any environment exists, so only static
// string lists are accepted.
func loadSymbols(block *hclsyntax.Block) ([]string, error) {
	attr, ok := block.Body.Attributes["symbols"]
	if !ok {
		return nil, nil
	}
	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("load %q: symbols must be a static list of strings: %w",
			block.Labels[0], diags)
	}
	if !val.CanIterateElements() {
		return nil, fmt.Errorf("load %q: symbols must be a list of strings", block.Labels[0])
	}
	var symbols []string
	for it := val.ElementIterator(); it.Next(); {
		_, elem := it.Element()
		if elem.Type() != cty.String || elem.IsNull() {
			return nil, fmt.Errorf("load %q: symbols must be a list of strings", block.Labels[0])
		}
		symbols = append(symbols, elem.AsString())
	}
	return symbols, nil
}
