package builtins

import (
	"context"
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/skyparse/internal/model"
	"github.com/vk/skyparse/internal/syntax"
)

// Recorder receives the observable effects of build-file evaluation:
// declared rules and configuration reads. The parser's evaluation
// context implements it.
type Recorder interface {
	RecordRule(rule model.Rule) error
	RecordConfigRead(section, field string)
}

// Call is one rule-declaration block as seen by a handler: the block
// type, its labels, and the fully evaluated attributes.
type Call struct {
	Kind       string
	Labels     []string
	Attributes map[string]cty.Value
}

// Handler processes one rule declaration, typically by validating it
// and recording a rule.
type Handler func(ctx context.Context, call Call, rec Recorder) error

// Registry maps rule kinds (block types) to handlers. A fallback
// handler, when set, receives kinds with no explicit registration.
type Registry struct {
	handlers map[string]Handler
	fallback Handler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register binds a handler to a rule kind. Registering the same kind
// twice is a programmer error.
func (r *Registry) Register(kind string, h Handler) {
	if _, exists := r.handlers[kind]; exists {
		panic(fmt.Sprintf("rule handler for kind '%s' already registered", kind))
	}
	r.handlers[kind] = h
}

// SetFallback installs the handler used for unregistered kinds.
func (r *Registry) SetFallback(h Handler) {
	r.fallback = h
}

// Dispatch routes one declaration to its handler. An unknown kind with
// no fallback is an evaluation failure.
func (r *Registry) Dispatch(ctx context.Context, call Call, rec Recorder) error {
	h, ok := r.handlers[call.Kind]
	if !ok {
		h = r.fallback
	}
	if h == nil {
		return fmt.Errorf("unknown rule kind %q", call.Kind)
	}
	return h(ctx, call, rec)
}

// Standard returns the default surface: any block of the form
//
//	<kind> "<name>" { ...attributes... }
//
// is recorded as a rule of that kind, with attributes converted to
// plain Go values.
func Standard() *Registry {
	r := NewRegistry()
	r.SetFallback(RecordRule)
	return r
}

// RecordRule is the generic handler behind Standard: it requires a
// single name label and records the declaration as-is.
func RecordRule(ctx context.Context, call Call, rec Recorder) error {
	if len(call.Labels) != 1 {
		return fmt.Errorf("rule %q must carry exactly one name label, got %d",
			call.Kind, len(call.Labels))
	}
	attrs := make(map[string]any, len(call.Attributes))
	for name, val := range call.Attributes {
		conv, err := syntax.ValueToGo(val)
		if err != nil {
			return fmt.Errorf("rule %q attribute %q: %w", call.Labels[0], name, err)
		}
		attrs[name] = conv
	}
	return rec.RecordRule(model.Rule{
		Kind:       call.Kind,
		Name:       call.Labels[0],
		Attributes: attrs,
	})
}
