package syntax

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// Execute runs a parsed file against env: top-level attributes are
// evaluated in source order and exported as bindings (so later
// attributes can reference earlier ones), load/include blocks are
// skipped (their references were handled before execution), and every
// other block is dispatched to the environment's block handler.
//
// The caller owns env's lifecycle; Execute does not freeze it.
func (i *Interpreter) Execute(ctx context.Context, f *File, env *Environment) error {
	for _, item := range sourceOrder(f.body) {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch it := item.(type) {
		case *hclsyntax.Attribute:
			val, diags := it.Expr.Value(env.evalCtx)
			if diags.HasErrors() {
				return diags
			}
			env.export(it.Name, val)
		case *hclsyntax.Block:
			if it.Type == loadBlockType || it.Type == includeBlockType {
				continue
			}
			if err := i.executeBlock(ctx, f, it, env); err != nil {
				return err
			}
		}
	}
	return nil
}

func (i *Interpreter) executeBlock(ctx context.Context, f *File, block *hclsyntax.Block, env *Environment) error {
	if env.blocks == nil {
		return fmt.Errorf("%s: %s block at %s: rule declarations are not allowed in this file",
			f.Path, block.Type, block.DefRange().String())
	}
	if len(block.Body.Blocks) > 0 {
		nested := block.Body.Blocks[0]
		return fmt.Errorf("%s: unexpected nested %s block at %s",
			f.Path, nested.Type, nested.DefRange().String())
	}

	attrs := make(map[string]cty.Value, len(block.Body.Attributes))
	for name, attr := range block.Body.Attributes {
		val, diags := attr.Expr.Value(env.evalCtx)
		if diags.HasErrors() {
			return diags
		}
		attrs[name] = val
	}
	return env.blocks(ctx, block.Type, block.Labels, attrs)
}

// sourceOrder flattens a body's attributes and blocks into one slice
// ordered by source position, since hclsyntax keeps attributes in a
// map.
func sourceOrder(body *hclsyntax.Body) []any {
	items := make([]any, 0, len(body.Attributes)+len(body.Blocks))
	for _, attr := range body.Attributes {
		items = append(items, attr)
	}
	for _, block := range body.Blocks {
		items = append(items, block)
	}
	sort.Slice(items, func(a, b int) bool {
		return startByte(items[a]) < startByte(items[b])
	})
	return items
}

func startByte(item any) int {
	switch it := item.(type) {
	case *hclsyntax.Attribute:
		return it.SrcRange.Start.Byte
	case *hclsyntax.Block:
		return it.TypeRange.Start.Byte
	default:
		return 0
	}
}
