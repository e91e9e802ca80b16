package parser

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/skyparse/internal/builtins"
	"github.com/vk/skyparse/internal/config"
	"github.com/vk/skyparse/internal/ctxlog"
	"github.com/vk/skyparse/internal/events"
	"github.com/vk/skyparse/internal/globber"
	"github.com/vk/skyparse/internal/label"
	"github.com/vk/skyparse/internal/loadcache"
	"github.com/vk/skyparse/internal/model"
	"github.com/vk/skyparse/internal/resolver"
	"github.com/vk/skyparse/internal/syntax"
)

// Interpreter is the language collaborator: it turns source bytes into
// an AST and executes an AST against an environment. The default
// implementation is syntax.Interpreter; tests inject wrappers.
type Interpreter interface {
	Parse(src []byte, path string) (*syntax.File, error)
	Execute(ctx context.Context, f *syntax.File, env *syntax.Environment) error
}

// Parser parses build files into manifests. Extension and include
// records are memoized for the lifetime of the instance; callers that
// need fresh results after file-system changes create a new Parser or
// gate reuse on GlobResultsMatchCurrentState.
type Parser struct {
	opts     *config.Options
	interp   Interpreter
	rules    *builtins.Registry
	sink     events.Sink
	globbers globber.Factory
	resolve  *resolver.Resolver

	// extensions and includes memoize per import reference. The
	// byPath caches sit underneath them so that two references
	// resolving to the same file share one computation: an extension
	// reachable over several edges of a diamond still executes once.
	extensions       *loadcache.Cache[label.ImportReference, *model.ExtensionRecord]
	extensionsByPath *loadcache.Cache[string, *model.ExtensionRecord]
	includes         *loadcache.Cache[label.ImportReference, *model.IncludeRecord]
	includesByPath   *loadcache.Cache[string, *model.IncludeRecord]
}

// New creates a parser. A nil interpreter, rule registry, sink or
// globber factory falls back to the default implementation.
func New(opts *config.Options, interp Interpreter, rules *builtins.Registry, sink events.Sink, globbers globber.Factory) *Parser {
	if interp == nil {
		interp = syntax.NewInterpreter()
	}
	if rules == nil {
		rules = builtins.Standard()
	}
	if sink == nil {
		sink = events.Discard
	}
	if globbers == nil {
		globbers = globber.NewDir
	}
	return &Parser{
		opts:             opts,
		interp:           interp,
		rules:            rules,
		sink:             sink,
		globbers:         globbers,
		resolve:          resolver.New(opts),
		extensions:       loadcache.New[label.ImportReference, *model.ExtensionRecord](),
		extensionsByPath: loadcache.New[string, *model.ExtensionRecord](),
		includes:         loadcache.New[label.ImportReference, *model.IncludeRecord](),
		includesByPath:   loadcache.New[string, *model.IncludeRecord](),
	}
}

// ParseBuildFile parses and evaluates the build file at path and
// returns its manifest. There is no partial success: either a complete
// manifest is produced or a typed error is returned.
func (p *Parser) ParseBuildFile(ctx context.Context, path string) (manifest *model.Manifest, err error) {
	p.sink.ParseStarted(ctx, path)
	defer func() {
		ruleCount := 0
		if manifest != nil {
			ruleCount = len(manifest.Rules)
		}
		p.sink.ParseFinished(ctx, path, ruleCount, err)
	}()

	file, containing, err := p.parseFile(path)
	if err != nil {
		return nil, err
	}
	refs, err := file.References()
	if err != nil {
		return nil, model.NewParseError(path, err)
	}

	records, err := p.loadExtensions(ctx, containing, loadOnly(refs), nil)
	if err != nil {
		return nil, err
	}

	recording := globber.NewCaching(p.globbers(filepath.Dir(path)))
	evalCtx := newParseContext()

	env := syntax.NewEnvironment("parsing " + path)
	defer env.Freeze()
	if err := bindExtensions(env, records, refs); err != nil {
		return nil, model.NewEvaluationError(path, err)
	}
	env.BindFunction("glob", builtins.NewGlobFunction(recording))
	env.BindFunction("read_config", builtins.NewReadConfigFunction(p.opts.RawConfig, evalCtx))
	env.SetBlockHandler(func(ctx context.Context, blockType string, labels []string, attrs map[string]cty.Value) error {
		return p.rules.Dispatch(ctx, builtins.Call{Kind: blockType, Labels: labels, Attributes: attrs}, evalCtx)
	})

	if err := p.interp.Execute(ctx, file, env); err != nil {
		return nil, execError(path, err)
	}

	closures := make([][]string, len(records))
	for i, rec := range records {
		closures[i] = rec.Closure
	}
	ctxlog.FromContext(ctx).Debug("Parsed build file.", "path", path, "rules", len(evalCtx.rules))

	return &model.Manifest{
		Rules:         evalCtx.rules,
		LoadedPaths:   model.DedupPaths(model.FlattenClosures(path, closures)),
		ConfigReads:   evalCtx.configReads(),
		GlobSnapshots: recording.Snapshot(),
	}, nil
}

// GetIncludedFiles parses the build file at path far enough to resolve
// its references through the include mechanism and returns the
// flattened closure of transitively referenced files, the build file
// itself first. The file is never executed.
func (p *Parser) GetIncludedFiles(ctx context.Context, path string) ([]string, error) {
	file, containing, err := p.parseFile(path)
	if err != nil {
		return nil, err
	}
	refs, err := file.References()
	if err != nil {
		return nil, model.NewParseError(path, err)
	}

	records, err := p.loadIncludes(ctx, containing, refs, nil)
	if err != nil {
		return nil, err
	}
	closures := make([][]string, len(records))
	for i, rec := range records {
		closures[i] = rec.Closure
	}
	return model.FlattenClosures(path, closures), nil
}

// GlobResultsMatchCurrentState re-runs previously recorded glob
// snapshots of the build file at path against the current file system
// and reports whether every result is unchanged.
func (p *Parser) GlobResultsMatchCurrentState(path string, snapshots []model.GlobSnapshot) (bool, error) {
	return globber.MatchesCurrentState(p.globbers(filepath.Dir(path)), snapshots)
}

// Close releases the parser. It exists for lifecycle symmetry; the
// caches hold no external resources.
func (p *Parser) Close() error { return nil }

// parseFile reads and parses the build file at path and computes its
// containing label relative to the project root.
func (p *Parser) parseFile(path string) (*syntax.File, label.Label, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, label.Label{}, model.NewIOError(path, err)
	}
	file, err := p.interp.Parse(src, path)
	if err != nil {
		return nil, label.Label{}, model.NewParseError(path, err)
	}
	containing := label.Label{
		Cell:    p.opts.CellName,
		Package: p.basePath(path),
		Name:    filepath.Base(path),
	}
	return file, containing, nil
}

// basePath returns the project-root-relative package path of the file
// at path, in slash form. Empty for files in the root itself.
func (p *Parser) basePath(path string) string {
	rel, err := filepath.Rel(p.opts.ProjectRoot, filepath.Dir(path))
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(rel)
}

// readImport reads the file a reference resolved to, reporting a
// missing target together with the referencing file's identity.
func readImport(path string, referencedFrom label.Label) ([]byte, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, model.NewMissingFile(path, referencedFrom.String())
		}
		return nil, model.NewIOError(path, err)
	}
	return src, nil
}

// execError maps an execution failure to the typed taxonomy:
// cancellation stays cancellation, already-typed errors pass through,
// anything else is an evaluation failure of the executed file.
func execError(path string, err error) error {
	switch model.KindOf(err) {
	case model.KindUnknown:
		return model.NewEvaluationError(path, err)
	case model.KindCancelled:
		var typed *model.Error
		if errors.As(err, &typed) {
			return typed
		}
		return model.NewCancelled(err)
	default:
		return err
	}
}

func loadOnly(refs []model.Reference) []model.Reference {
	out := make([]model.Reference, 0, len(refs))
	for _, ref := range refs {
		if !ref.Include {
			out = append(out, ref)
		}
	}
	return out
}
