package syntax

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// BlockHandler is invoked for every non-reserved top-level block during
// build-file execution. It is how the injected rule-declaration surface
// observes declarations.
type BlockHandler func(ctx context.Context, blockType string, labels []string, attrs map[string]cty.Value) error

// Environment is the scoped mutable binding environment one file
// executes against. It is created at the start of an execution, frozen
// unconditionally at the end, and must not be mutated afterwards.
type Environment struct {
	name    string
	evalCtx *hcl.EvalContext
	// exported holds the names bound by executing the file itself, as
	// opposed to bindings injected before execution.
	exported map[string]cty.Value
	blocks   BlockHandler
	frozen   bool
}

// NewEnvironment creates an empty environment. The name appears in
// panic messages only.
func NewEnvironment(name string) *Environment {
	return &Environment{
		name: name,
		evalCtx: &hcl.EvalContext{
			Variables: make(map[string]cty.Value),
			Functions: make(map[string]function.Function),
		},
		exported: make(map[string]cty.Value),
	}
}

// Bind injects a value under a name before execution. Binding into a
// frozen environment is a programmer error.
func (e *Environment) Bind(name string, val cty.Value) {
	e.mustBeMutable()
	e.evalCtx.Variables[name] = val
}

// BindFunction injects a callable under a name.
func (e *Environment) BindFunction(name string, fn function.Function) {
	e.mustBeMutable()
	e.evalCtx.Functions[name] = fn
}

// SetBlockHandler installs the rule-declaration surface. Environments
// without a handler reject rule blocks, which is how extension files
// are kept declaration-free.
func (e *Environment) SetBlockHandler(h BlockHandler) {
	e.mustBeMutable()
	e.blocks = h
}

// Freeze seals the environment. Safe to call more than once; every
// execution path must end with a freeze so no dangling mutable
// environment escapes its owning call.
func (e *Environment) Freeze() {
	e.frozen = true
}

// Bindings returns the names exported by the executed file. Callers
// treat the returned map as immutable; it is shared with every
// consumer of the extension record.
func (e *Environment) Bindings() map[string]cty.Value {
	return e.exported
}

func (e *Environment) export(name string, val cty.Value) {
	e.mustBeMutable()
	e.evalCtx.Variables[name] = val
	e.exported[name] = val
}

func (e *Environment) mustBeMutable() {
	if e.frozen {
		panic(fmt.Sprintf("environment %q mutated after freeze", e.name))
	}
}
