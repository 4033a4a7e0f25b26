package runtime

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/designergo/internal/builder"
	"github.com/vk/designergo/internal/component"
	"github.com/vk/designergo/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Subscriber is a callback attached to an event. Subscribers run
// synchronously, in registration order, on the goroutine that raised the
// event.
type Subscriber func(ctx context.Context, args map[string]cty.Value) error

// Instance is a live component: the stored field values, the owned child
// instances, and the update-pass state. An instance is created through New,
// mutated only through Set and Raise, and torn down by Dispose. It is not
// safe for concurrent use; the update engine is single-threaded by design.
type Instance struct {
	plan *builder.Plan
	comp *component.Component

	values   map[string]cty.Value
	assigned map[string]bool
	supplied map[string]bool

	children   map[string]*Instance
	childOrder []string

	subs map[string][]Subscriber

	// Pass state. cursor is the order index currently being finalized;
	// activeSeed is the dirty seed of the walking pass, shared with write()
	// so re-entrant writes ahead of the cursor are absorbed; pending holds
	// writes deferred to a follow-up pass.
	inPass     bool
	cursor     int
	activeSeed map[string]bool
	pending    []pendingWrite

	// passes counts completed recomputation passes; used by tests to pin
	// down the one-pass-per-external-call guarantees.
	passes int
}

type pendingWrite struct {
	node  string
	value cty.Value
}

// Instance implements the restricted surface handed to handler bodies.
var _ component.Writer = (*Instance)(nil)

// Component returns the declaration this instance was built from.
func (i *Instance) Component() *component.Component {
	return i.comp
}

// Child returns the named owned child instance.
func (i *Instance) Child(name string) (*Instance, bool) {
	ch, ok := i.children[name]
	return ch, ok
}

// Get returns the current value of a field. Reading an event is an error;
// reading an unsupplied placeholder is a PlaceholderReadError.
func (i *Instance) Get(field string) (cty.Value, error) {
	f, ok := i.comp.Field(field)
	if !ok {
		return cty.NilVal, &UnknownFieldError{Component: i.comp.Name, Field: field}
	}
	if f.Kind == component.Event {
		return cty.NilVal, fmt.Errorf("component %q: field %q is an event and has no value", i.comp.Name, field)
	}
	if !i.assigned[field] {
		if f.Placeholder {
			return cty.NilVal, &PlaceholderReadError{Component: i.comp.Name, Field: field}
		}
		return cty.NilVal, &UninitializedReadError{Component: i.comp.Name, Node: field, Producer: field}
	}
	return i.values[field], nil
}

// Set writes a prop field, converting the value to the declared type, and
// runs (or joins) an incremental update pass. Consts and derived fields are
// rejected: construction is the only time they receive values.
func (i *Instance) Set(ctx context.Context, field string, value cty.Value) error {
	f, ok := i.comp.Field(field)
	if !ok {
		return &UnknownFieldError{Component: i.comp.Name, Field: field}
	}
	if f.Kind != component.Prop || !f.Settable() {
		return &NotSettableError{Component: i.comp.Name, Field: field}
	}
	converted, err := i.convertValue(field, f.Type, value)
	if err != nil {
		return err
	}
	return i.write(ctx, field, converted)
}

// Subscribe attaches a callback to one of the component's events.
func (i *Instance) Subscribe(event string, sub Subscriber) error {
	f, ok := i.comp.Field(event)
	if !ok {
		return &UnknownFieldError{Component: i.comp.Name, Field: event}
	}
	if f.Kind != component.Event {
		return fmt.Errorf("component %q: field %q is not an event", i.comp.Name, event)
	}
	i.subs[event] = append(i.subs[event], sub)
	return nil
}

// Raise delivers an event to every subscriber, synchronously and in
// registration order. The call returns only after every handler, and every
// update pass a handler triggered, has completed. There is no queuing across
// component boundaries.
func (i *Instance) Raise(ctx context.Context, event string, args map[string]cty.Value) error {
	f, ok := i.comp.Field(event)
	if !ok {
		return &UnknownFieldError{Component: i.comp.Name, Field: event}
	}
	if f.Kind != component.Event {
		return fmt.Errorf("component %q: field %q is not an event", i.comp.Name, event)
	}
	ctxlog.FromContext(ctx).Debug("Raising event.", "component", i.comp.Name, "event", event, "subscribers", len(i.subs[event]))
	for _, sub := range i.subs[event] {
		if err := sub(ctx, args); err != nil {
			return fmt.Errorf("component %q: event %q handler: %w", i.comp.Name, event, err)
		}
	}
	return nil
}

// Dispose releases the instance's owned children, deepest first, and drops
// all subscriptions. There is no further teardown protocol.
func (i *Instance) Dispose() {
	for idx := len(i.childOrder) - 1; idx >= 0; idx-- {
		i.children[i.childOrder[idx]].Dispose()
	}
	i.children = nil
	i.childOrder = nil
	i.subs = nil
}

// scope builds the evaluation context for this instance's derivations: every
// assigned own field by name, plus one object per built child exposing its
// externally readable fields.
func (i *Instance) scope() *hcl.EvalContext {
	vars := make(map[string]cty.Value, len(i.comp.Fields)+len(i.children))
	for _, f := range i.comp.Fields {
		if i.assigned[f.Name] {
			vars[f.Name] = i.values[f.Name]
		}
	}
	for name, child := range i.children {
		vars[name] = child.readableObject()
	}
	return &hcl.EvalContext{Variables: vars}
}

// readableObject renders the instance as the object value a parent scope
// sees: its externally readable, assigned fields.
func (i *Instance) readableObject() cty.Value {
	attrs := make(map[string]cty.Value)
	for _, f := range i.comp.Fields {
		if f.Kind != component.Event && f.Readable() && i.assigned[f.Name] {
			attrs[f.Name] = i.values[f.Name]
		}
	}
	if len(attrs) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(attrs)
}

// evaluate runs one derivation for a node, guarding the topological
// invariant: every producer must already hold a value.
func (i *Instance) evaluate(ctx context.Context, n *builder.Node, d component.Derivation) (cty.Value, error) {
	for _, p := range n.Producers {
		if i.assigned[p] {
			continue
		}
		if pf, ok := i.comp.Field(p); ok && pf.Placeholder {
			return cty.NilVal, &PlaceholderReadError{Component: i.comp.Name, Field: p}
		}
		return cty.NilVal, &UninitializedReadError{Component: i.comp.Name, Node: n.ID, Producer: p}
	}
	val, err := d.Evaluate(i.scope())
	if err != nil {
		return cty.NilVal, fmt.Errorf("component %q: computing %q: %w", i.comp.Name, n.ID, err)
	}
	return i.convertNode(n, val)
}

// convertNode coerces a computed value to the declared type of the node's
// target field, own or child.
func (i *Instance) convertNode(n *builder.Node, val cty.Value) (cty.Value, error) {
	if n.Field != nil {
		return i.convertValue(n.ID, n.Field.Type, val)
	}
	if n.Child != "" && !n.ReadOnly {
		childField, _ := i.plan.Children[n.Child].Component.Field(n.ChildField)
		return i.convertValue(n.ID, childField.Type, val)
	}
	return val, nil
}

func (i *Instance) convertValue(name string, ty cty.Type, val cty.Value) (cty.Value, error) {
	if ty == cty.NilType {
		return val, nil
	}
	out, err := convert.Convert(val, ty)
	if err != nil {
		return cty.NilVal, fmt.Errorf("component %q: field %q: %w", i.comp.Name, name, err)
	}
	return out, nil
}

// storeIfChanged stores a value and reports whether it differed from the
// previous one under the field's equality notion.
func (i *Instance) storeIfChanged(node string, val cty.Value) bool {
	if i.assigned[node] && val.RawEquals(i.values[node]) {
		return false
	}
	i.values[node] = val
	i.assigned[node] = true
	return true
}

func sortedValueKeys(m map[string]cty.Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
