package builder

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/vk/designergo/internal/component"
	"github.com/vk/designergo/internal/ctxlog"
	"github.com/vk/designergo/internal/dag"
)

// Build constructs a complete, validated Plan from a component declaration.
// Child components are built recursively; their plans are embedded so the
// runtime can construct the whole ownership tree from the root plan.
func Build(ctx context.Context, comp *component.Component) (*Plan, error) {
	return build(ctx, comp, nil)
}

func build(ctx context.Context, comp *component.Component, nesting []string) (*Plan, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: starting graph construction.", "component", comp.Name)

	if slices.Contains(nesting, comp.Name) {
		return nil, fmt.Errorf("recursive component nesting: %s -> %s", nesting[len(nesting)-1], comp.Name)
	}
	if err := comp.Validate(ctx); err != nil {
		return nil, err
	}

	plan := &Plan{
		Component: comp,
		Graph:     dag.New(),
		Nodes:     make(map[string]*Node),
		Children:  make(map[string]*Plan),
	}

	// Child plans first: reference resolution needs each child's own graph
	// to refine cross-boundary producer lists, and required-input coverage
	// needs each child's required set.
	for _, ch := range comp.Children {
		childPlan, err := build(ctx, ch.Component, append(nesting, comp.Name))
		if err != nil {
			return nil, err
		}
		for _, required := range childPlan.Required {
			if _, mapped := ch.Inputs[required]; !mapped {
				return nil, &MissingChildInputError{Component: comp.Name, Child: ch.Name, Field: required}
			}
		}
		plan.Children[ch.Name] = childPlan
	}

	createNodes(comp, plan)
	logger.Debug("Build: node creation complete.", "component", comp.Name, "node_count", plan.Graph.Len())

	if err := linkNodes(ctx, comp, plan); err != nil {
		return nil, err
	}
	if err := linkChildBoundaries(comp, plan); err != nil {
		return nil, err
	}
	logger.Debug("Build: node linking complete.", "component", comp.Name)

	if cycle := plan.Graph.DetectCycle(); cycle != nil {
		return nil, &DependencyCycleError{Component: comp.Name, Path: cycle.Path}
	}

	order, err := plan.Graph.TopologicalSort()
	if err != nil {
		return nil, fmt.Errorf("component %q: %w", comp.Name, err)
	}
	plan.Order = order
	plan.Position = make(map[string]int, len(order))
	for i, id := range order {
		plan.Position[id] = i
	}

	for _, f := range comp.Fields {
		if f.ExternallyRequired() {
			plan.Required = append(plan.Required, f.Name)
		}
	}

	logger.Debug("Build: graph construction successful.", "component", comp.Name, "order_len", len(order), "required", plan.Required)
	return plan, nil
}

// createNodes adds a node for every own field and every mapped child field.
// Read-only child nodes are added on demand while linking, when a reference
// first names them.
func createNodes(comp *component.Component, plan *Plan) {
	for _, f := range comp.Fields {
		plan.Graph.AddNode(f.Name)
		plan.Nodes[f.Name] = &Node{
			ID:         f.Name,
			Field:      f,
			Derivation: f.Derivation,
			Default:    f.Default,
		}
	}
	for _, ch := range comp.Children {
		for _, name := range sortedKeys(ch.Inputs) {
			id := ch.Name + "." + name
			plan.Graph.AddNode(id)
			plan.Nodes[id] = &Node{
				ID:         id,
				Child:      ch.Name,
				ChildField: name,
				Derivation: ch.Inputs[name],
			}
		}
	}
}

func sortedKeys(m map[string]component.Derivation) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
