package runtime

import (
	"context"
	"fmt"

	"github.com/vk/designergo/internal/builder"
	"github.com/vk/designergo/internal/component"
	"github.com/vk/designergo/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// New constructs an instance from a compiled plan. Every externally required
// field must be supplied exactly once through inputs; optional fields fall
// back to their defaults. The first full evaluation runs in the plan's
// topological order, children are constructed bottom-up, event handlers and
// watch forwarding are wired, and the init hook (if any) runs once before
// the instance is returned.
func New(ctx context.Context, plan *builder.Plan, inputs map[string]cty.Value) (*Instance, error) {
	logger := ctxlog.FromContext(ctx)
	comp := plan.Component
	logger.Debug("Constructing instance.", "component", comp.Name, "inputs", len(inputs))

	if comp.PrototypeOnly {
		return nil, fmt.Errorf("component %q is prototype-only; its implementation is supplied by hand", comp.Name)
	}

	inst := &Instance{
		plan:     plan,
		comp:     comp,
		values:   make(map[string]cty.Value),
		assigned: make(map[string]bool),
		supplied: make(map[string]bool),
		children: make(map[string]*Instance),
		subs:     make(map[string][]Subscriber),
		cursor:   len(plan.Order),
	}

	if err := inst.acceptInputs(inputs); err != nil {
		return nil, err
	}
	for _, name := range plan.Required {
		if !inst.supplied[name] {
			return nil, &MissingInputError{Component: comp.Name, Field: name}
		}
	}

	if err := inst.constructionPass(ctx); err != nil {
		return nil, err
	}
	if err := inst.wireHandlers(ctx); err != nil {
		return nil, err
	}
	inst.wireChildWatches(ctx)

	if comp.Init != nil {
		if err := comp.Init(ctx, inst); err != nil {
			return nil, fmt.Errorf("component %q: init hook: %w", comp.Name, err)
		}
	}

	logger.Debug("Instance constructed.", "component", comp.Name, "children", len(inst.children))
	return inst, nil
}

// acceptInputs validates and stores the externally supplied values.
func (i *Instance) acceptInputs(inputs map[string]cty.Value) error {
	for _, name := range sortedValueKeys(inputs) {
		f, ok := i.comp.Field(name)
		if !ok {
			return &UnknownFieldError{Component: i.comp.Name, Field: name}
		}
		if f.Kind == component.Event || !f.Settable() {
			return &NotSettableError{Component: i.comp.Name, Field: name}
		}
		converted, err := i.convertValue(name, f.Type, inputs[name])
		if err != nil {
			return err
		}
		i.values[name] = converted
		i.assigned[name] = true
		i.supplied[name] = true
	}
	return nil
}

// constructionPass performs the one-time full evaluation: every node in
// topological order, defaults applied where no explicit value was supplied,
// children constructed at the point their outputs are first needed.
func (i *Instance) constructionPass(ctx context.Context) error {
	childInputs := make(map[string]map[string]cty.Value)

	for _, id := range i.plan.Order {
		n := i.plan.Nodes[id]
		switch {
		case n.Field != nil:
			f := n.Field
			if f.Kind == component.Event || i.supplied[id] {
				continue
			}
			d := n.Derivation
			if d == nil {
				d = n.Default
			}
			if d == nil {
				// Required fields were checked up front; anything left
				// without a derivation is a placeholder and stays unset.
				continue
			}
			val, err := i.evaluate(ctx, n, d)
			if err != nil {
				return err
			}
			i.values[id] = val
			i.assigned[id] = true

		case n.ReadOnly:
			if err := i.ensureChild(ctx, n.Child, childInputs); err != nil {
				return err
			}
			val, err := i.children[n.Child].Get(n.ChildField)
			if err != nil {
				return fmt.Errorf("component %q: reading %q: %w", i.comp.Name, id, err)
			}
			i.values[id] = val
			i.assigned[id] = true

		default: // mapped child input
			val, err := i.evaluate(ctx, n, n.Derivation)
			if err != nil {
				return err
			}
			i.values[id] = val
			i.assigned[id] = true
			if childInputs[n.Child] == nil {
				childInputs[n.Child] = make(map[string]cty.Value)
			}
			childInputs[n.Child][n.ChildField] = val
		}
	}

	// Children that no read node forced into existence yet.
	for _, ch := range i.comp.Children {
		if err := i.ensureChild(ctx, ch.Name, childInputs); err != nil {
			return err
		}
	}
	return nil
}

func (i *Instance) ensureChild(ctx context.Context, name string, childInputs map[string]map[string]cty.Value) error {
	if _, built := i.children[name]; built {
		return nil
	}
	child, err := New(ctx, i.plan.Children[name], childInputs[name])
	if err != nil {
		return fmt.Errorf("component %q: constructing child %q: %w", i.comp.Name, name, err)
	}
	i.children[name] = child
	i.childOrder = append(i.childOrder, name)
	return nil
}

// wireHandlers attaches each declared `on (child.event)` binding to the
// child's event, giving the handler body this instance as its write surface.
func (i *Instance) wireHandlers(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	for _, h := range i.comp.Handlers {
		child := i.children[h.Source.Base]
		action := h.Action
		logger.Debug("Wiring event handler.", "component", i.comp.Name, "source", h.Source.String())
		if err := child.Subscribe(h.Source.Field, func(ctx context.Context, args map[string]cty.Value) error {
			return action(ctx, i, args)
		}); err != nil {
			return err
		}
	}
	return nil
}

// wireChildWatches subscribes to the watch event of every read-only child
// field that declares one, so a change the child produces on its own (for
// example through its event handlers) flows back into this instance's graph
// as a write to the corresponding child node.
func (i *Instance) wireChildWatches(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	for _, id := range i.plan.Order {
		n := i.plan.Nodes[id]
		if n == nil || !n.ReadOnly {
			continue
		}
		childField, _ := i.plan.Children[n.Child].Component.Field(n.ChildField)
		w := childField.Accessors.Watch
		if w == nil {
			continue
		}
		childName, fieldName, nodeID := n.Child, n.ChildField, n.ID
		logger.Debug("Wiring child watch.", "component", i.comp.Name, "node", nodeID, "event", w.Event)
		// Subscribe cannot fail here: validation pinned the event.
		_ = i.children[childName].Subscribe(w.Event, func(ctx context.Context, _ map[string]cty.Value) error {
			val, err := i.children[childName].Get(fieldName)
			if err != nil {
				return err
			}
			return i.write(ctx, nodeID, val)
		})
	}
}
