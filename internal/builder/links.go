package builder

import (
	"context"
	"fmt"

	"github.com/vk/designergo/internal/component"
	"github.com/vk/designergo/internal/ctxlog"
)

// linkNodes resolves every reference made by a derivation, default, or child
// input mapping into producer -> consumer edges.
func linkNodes(ctx context.Context, comp *component.Component, plan *Plan) error {
	logger := ctxlog.FromContext(ctx)

	for _, f := range comp.Fields {
		d := f.Derivation
		if d == nil {
			d = f.Default
		}
		if d == nil {
			continue
		}
		if err := linkDerivation(ctx, comp, plan, f.Name, f.Name, d); err != nil {
			return err
		}
	}
	for _, ch := range comp.Children {
		for _, name := range sortedKeys(ch.Inputs) {
			id := ch.Name + "." + name
			if err := linkDerivation(ctx, comp, plan, id, id, ch.Inputs[name]); err != nil {
				return err
			}
		}
	}

	logger.Debug("Linked all derivation references.", "component", comp.Name)
	return nil
}

// linkDerivation resolves each reference of one derivation and records the
// resulting producers on the consumer node.
func linkDerivation(ctx context.Context, comp *component.Component, plan *Plan, consumerID, containing string, d component.Derivation) error {
	logger := ctxlog.FromContext(ctx)
	consumer := plan.Nodes[consumerID]
	seen := make(map[string]bool)

	for _, ref := range d.References() {
		producerID, err := resolveRef(comp, plan, containing, ref)
		if err != nil {
			return err
		}
		if producerID == consumerID {
			return &component.UnresolvedReferenceError{
				Component:  comp.Name,
				Containing: containing,
				Ref:        ref,
				Reason:     "a field cannot derive from itself",
			}
		}
		if seen[producerID] {
			continue
		}
		seen[producerID] = true
		logger.Debug("Linking dependency.", "component", comp.Name, "from", producerID, "to", consumerID)
		if err := plan.Graph.AddEdge(producerID, consumerID); err != nil {
			return fmt.Errorf("component %q: linking %s -> %s: %w", comp.Name, producerID, consumerID, err)
		}
		consumer.Producers = append(consumer.Producers, producerID)
	}
	return nil
}

// resolveRef turns a symbolic reference into a concrete node ID. A bare name
// must be a sibling value field. A dotted name resolves to a named child's
// externally readable field, or, when the base is a sibling field, to that
// sibling (the attribute part then indexes into the sibling's value, which
// is not a separate dependency).
func resolveRef(comp *component.Component, plan *Plan, containing string, ref component.Ref) (string, error) {
	unresolved := func(reason string) error {
		return &component.UnresolvedReferenceError{
			Component:  comp.Name,
			Containing: containing,
			Ref:        ref,
			Reason:     reason,
		}
	}

	if ref.IsDotted() {
		if ch, ok := comp.Child(ref.Base); ok {
			target, ok := ch.Component.Field(ref.Field)
			if !ok {
				return "", unresolved(fmt.Sprintf("component %q has no field %q", ch.Component.Name, ref.Field))
			}
			if target.Kind == component.Event {
				return "", unresolved("an event has no value; events resolve only in handler position")
			}
			if !target.Readable() {
				return "", unresolved(fmt.Sprintf("field %q is not externally readable on component %q", ref.Field, ch.Component.Name))
			}
			id := ref.String()
			if !plan.Graph.HasNode(id) {
				plan.Graph.AddNode(id)
				plan.Nodes[id] = &Node{
					ID:         id,
					Child:      ref.Base,
					ChildField: ref.Field,
					ReadOnly:   true,
				}
			}
			return id, nil
		}
		if f, ok := comp.Field(ref.Base); ok {
			if f.Kind == component.Event {
				return "", unresolved("an event has no value")
			}
			return ref.Base, nil
		}
		return "", unresolved("no such field or child")
	}

	if f, ok := comp.Field(ref.Base); ok {
		if f.Kind == component.Event {
			return "", unresolved("an event has no value")
		}
		return ref.Base, nil
	}
	if _, ok := comp.Child(ref.Base); ok {
		return "", unresolved("a child is not a value; reference one of its fields")
	}
	return "", unresolved("no such field")
}

// linkChildBoundaries wires the edges that cross a component-instance
// boundary. Every mapped input of a child is ordered before every read-only
// view into the same child, so a child is fully parameterized before any of
// its outputs are consumed. A read node's producer list is refined to the
// inputs that actually reach the read field inside the child's own graph, so
// dirtiness does not propagate through the child conservatively.
func linkChildBoundaries(comp *component.Component, plan *Plan) error {
	for _, ch := range comp.Children {
		childPlan := plan.Children[ch.Name]

		var readNodes []*Node
		for _, id := range plan.Graph.Nodes() {
			n := plan.Nodes[id]
			if n != nil && n.ReadOnly && n.Child == ch.Name {
				readNodes = append(readNodes, n)
			}
		}
		if len(readNodes) == 0 {
			continue
		}

		for _, read := range readNodes {
			for _, name := range sortedKeys(ch.Inputs) {
				inputID := ch.Name + "." + name
				if err := plan.Graph.AddEdge(inputID, read.ID); err != nil {
					return fmt.Errorf("component %q: ordering %s -> %s: %w", comp.Name, inputID, read.ID, err)
				}
				if childPlan.Graph.Reaches(name, read.ChildField) {
					read.Producers = append(read.Producers, inputID)
				}
			}
		}
	}
	return nil
}
