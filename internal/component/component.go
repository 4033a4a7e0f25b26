package component

import (
	"context"

	"github.com/zclconf/go-cty/cty"
)

// Writer is the restricted mutation surface handed to event handler bodies
// and init hooks. It is implemented by the runtime instance.
type Writer interface {
	// Set writes a prop field, triggering incremental recomputation.
	Set(ctx context.Context, field string, value cty.Value) error
	// Raise raises one of the component's own events.
	Raise(ctx context.Context, event string, args map[string]cty.Value) error
}

// HandlerFunc is the body of an `on (child.event)` binding. It may write
// props of the enclosing component or re-raise events further up the tree.
type HandlerFunc func(ctx context.Context, w Writer, args map[string]cty.Value) error

// InitFunc is the hook invoked exactly once per instance, after the first
// full evaluation pass and before the instance is handed to its creator.
type InitFunc func(ctx context.Context, w Writer) error

// ChildRef is a named nested component instance plus the mapping that feeds
// parent state into it. Each key of Inputs names an externally settable field
// of the child; its derivation is evaluated in the parent's scope.
type ChildRef struct {
	Name      string
	Component *Component
	Inputs    map[string]Derivation
}

// Handler binds a child event to a handler body in the parent scope. Source
// must be a dotted reference to a child's event. At most one handler may be
// declared per source.
type Handler struct {
	Source Ref
	Action HandlerFunc
}

// Component is a declared widget type: a fixed set of const/prop/event
// fields, optional child instances, and handler bindings. It is immutable
// once Validate has succeeded.
type Component struct {
	Name string

	// PrototypeOnly suppresses implementation synthesis; only the external
	// interface is generated. Used for components implemented by hand.
	PrototypeOnly bool
	// SimpleBuilder selects the positional constructor surface used by
	// hand-written widgets. Requires PrototypeOnly.
	SimpleBuilder bool

	Fields   []*FieldDecl
	Children []*ChildRef
	Handlers []*Handler

	// Init is the optional post-construction hook.
	Init InitFunc

	fieldIndex map[string]*FieldDecl
	childIndex map[string]*ChildRef
}

// New returns an empty component with the given name. Callers populate the
// declaration lists and then call Validate.
func New(name string) *Component {
	return &Component{Name: name}
}

// Field looks up a field by name. Valid only after Validate.
func (c *Component) Field(name string) (*FieldDecl, bool) {
	f, ok := c.fieldIndex[name]
	return f, ok
}

// Child looks up a child by name. Valid only after Validate.
func (c *Component) Child(name string) (*ChildRef, bool) {
	ch, ok := c.childIndex[name]
	return ch, ok
}
