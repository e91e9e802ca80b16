package parser

import (
	"context"
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/skyparse/internal/label"
	"github.com/vk/skyparse/internal/model"
	"github.com/vk/skyparse/internal/syntax"
)

// loadExtensions resolves and loads every load reference issued from
// the file identified by containing. Repeated references to the same
// specifier within one file contribute a single dependency edge; the
// shared cache guarantees each distinct import reference is computed
// at most once across all concurrent callers.
//
// chain carries the labels of the extension files currently being
// loaded on this call path; re-encountering one of them is a cyclic
// import. The chain tracks resolved targets rather than import
// references because the same file re-entered through a different
// containing file is still a cycle.
func (p *Parser) loadExtensions(ctx context.Context, containing label.Label, refs []model.Reference, chain []chainEntry) ([]*model.ExtensionRecord, error) {
	processed := make(map[string]struct{}, len(refs))
	records := make([]*model.ExtensionRecord, 0, len(refs))
	for _, ref := range refs {
		// Users sometimes load the same extension more than once.
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
		rec, err := p.extensions.GetOrLoad(ctx, key, func(ctx context.Context, key label.ImportReference) (*model.ExtensionRecord, error) {
			return p.loadExtension(ctx, key, next)
		})
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// chainEntry is one in-progress load on the current call path.
type chainEntry struct {
	target    label.Label
	importStr string
}

// loadExtension resolves one reference and hands off to the per-path
// cache, so that distinct references targeting the same file share one
// record and one execution.
func (p *Parser) loadExtension(ctx context.Context, key label.ImportReference, chain []chainEntry) (*model.ExtensionRecord, error) {
	path, err := p.resolve.Resolve(key.ContainingLabel, key.Import)
	if err != nil {
		return nil, err
	}
	return p.extensionsByPath.GetOrLoad(ctx, path, func(ctx context.Context, path string) (*model.ExtensionRecord, error) {
		return p.computeExtension(ctx, key, path, chain)
	})
}

// computeExtension builds one extension record: parse the file,
// recursively load its own dependencies, execute it in a scoped
// environment, and capture the exported bindings plus the transitive
// path closure.
func (p *Parser) computeExtension(ctx context.Context, key label.ImportReference, path string, chain []chainEntry) (*model.ExtensionRecord, error) {
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
	deps, err := p.loadExtensions(ctx, target, loadOnly(refs), chain)
	if err != nil {
		return nil, err
	}

	env := syntax.NewEnvironment("importing " + key.Import)
	defer env.Freeze()
	if err := bindExtensions(env, deps, refs); err != nil {
		return nil, model.NewEvaluationError(path, err)
	}
	if err := p.interp.Execute(ctx, file, env); err != nil {
		return nil, execError(path, err)
	}

	closures := make([][]string, len(deps))
	for i, dep := range deps {
		closures[i] = dep.Closure
	}
	return &model.ExtensionRecord{
		Bindings:     env.Bindings(),
		Path:         path,
		Dependencies: deps,
		ImportString: key.Import,
		Closure:      model.FlattenClosures(path, closures),
	}, nil
}

// bindExtensions wires loaded extensions into env: every record's
// bindings become reachable as ext["<import string>"] under the
// specifier the consuming file used, and each load reference's symbols
// are bound directly. Symbol binding runs per reference, so loading
// one extension twice with different symbols binds all of them.
//
// records must come from loadExtensions over the same refs: the i-th
// record corresponds to the i-th distinct load specifier.
func bindExtensions(env *syntax.Environment, records []*model.ExtensionRecord, refs []model.Reference) error {
	byImport := make(map[string]*model.ExtensionRecord, len(records))
	extVals := make(map[string]cty.Value, len(records))
	next := 0
	for _, ref := range refs {
		if ref.Include {
			continue
		}
		if _, ok := byImport[ref.Import]; ok {
			continue
		}
		rec := records[next]
		next++
		byImport[ref.Import] = rec
		extVals[ref.Import] = bindingsObject(rec.Bindings)
	}
	if len(extVals) > 0 {
		env.Bind("ext", cty.ObjectVal(extVals))
	} else {
		env.Bind("ext", cty.EmptyObjectVal)
	}

	for _, ref := range refs {
		if ref.Include {
			continue
		}
		rec, ok := byImport[ref.Import]
		if !ok {
			continue
		}
		for _, symbol := range ref.Symbols {
			val, exported := rec.Bindings[symbol]
			if !exported {
				return fmt.Errorf("extension %s does not export %q", ref.Import, symbol)
			}
			env.Bind(symbol, val)
		}
	}
	return nil
}

func bindingsObject(bindings map[string]cty.Value) cty.Value {
	if len(bindings) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(bindings)
}

// checkCycle fails when target is already being loaded somewhere up
// the current chain.
func checkCycle(chain []chainEntry, target label.Label, importStr string) error {
	for _, ancestor := range chain {
		if ancestor.target == target {
			imports := make([]string, 0, len(chain)+1)
			for _, entry := range chain {
				imports = append(imports, entry.importStr)
			}
			imports = append(imports, importStr)
			return model.NewCyclicImport(importStr, imports)
		}
	}
	return nil
}
