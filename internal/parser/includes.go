package parser

import (
	"context"

	"github.com/vk/skyparse/internal/label"
	"github.com/vk/skyparse/internal/model"
)

// loadIncludes is the include-mechanism counterpart of loadExtensions:
// same resolution, memoization and per-file dedup, but the referenced
// files are only parsed for their own references, never executed. All
// references of an included file are followed, whichever mechanism
// declared them, since both make the file a transitive participant.
func (p *Parser) loadIncludes(ctx context.Context, containing label.Label, refs []model.Reference, chain []chainEntry) ([]*model.IncludeRecord, error) {
	processed := make(map[string]struct{}, len(refs))
	records := make([]*model.IncludeRecord, 0, len(refs))
	for _, ref := range refs {
		if _, ok := processed[ref.Import]; ok {
			continue
		}
		processed[ref.Import] = struct{}{}

		key := ref.Key(containing)
		target, err := key.Label()
		if err != nil {
			return nil, model.NewParseError(ref.Import, err)
		}
		if err := checkCycle(chain, target, ref.Import); err != nil {
			return nil, err
		}
		next := append(append([]chainEntry(nil), chain...), chainEntry{target: target, importStr: ref.Import})
		rec, err := p.includes.GetOrLoad(ctx, key, func(ctx context.Context, key label.ImportReference) (*model.IncludeRecord, error) {
			return p.loadInclude(ctx, key, next)
		})
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// loadInclude resolves one reference and hands off to the per-path
// cache, mirroring loadExtension.
func (p *Parser) loadInclude(ctx context.Context, key label.ImportReference, chain []chainEntry) (*model.IncludeRecord, error) {
	path, err := p.resolve.Resolve(key.ContainingLabel, key.Import)
	if err != nil {
		return nil, err
	}
	return p.includesByPath.GetOrLoad(ctx, path, func(ctx context.Context, path string) (*model.IncludeRecord, error) {
		return p.computeInclude(ctx, key, path, chain)
	})
}

func (p *Parser) computeInclude(ctx context.Context, key label.ImportReference, path string, chain []chainEntry) (*model.IncludeRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, model.NewCancelled(err)
	}
	src, err := readImport(path, key.ContainingLabel)
	if err != nil {
		return nil, err
	}
	file, err := p.interp.Parse(src, path)
	if err != nil {
		return nil, model.NewParseError(path, err)
	}
	refs, err := file.References()
	if err != nil {
		return nil, model.NewParseError(path, err)
	}

	target := chain[len(chain)-1].target
	deps, err := p.loadIncludes(ctx, target, refs, chain)
	if err != nil {
		return nil, err
	}

	closures := make([][]string, len(deps))
	for i, dep := range deps {
		closures[i] = dep.Closure
	}
	return &model.IncludeRecord{
		Path:         path,
		Dependencies: deps,
		Closure:      model.FlattenClosures(path, closures),
	}, nil
}
