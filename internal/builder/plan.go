package builder

import (
	"github.com/vk/designergo/internal/component"
	"github.com/vk/designergo/internal/dag"
)

// Node is one vertex of the resolved dependency graph.
type Node struct {
	// ID is the canonical node identifier: a bare field name for the
	// component's own fields, "child.field" for child nodes.
	ID string

	// Field is set for own-field nodes.
	Field *component.FieldDecl

	// Child and ChildField are set for child nodes.
	Child      string
	ChildField string

	// Derivation computes the node during update passes: the field's own
	// derivation, or the input mapping for a mapped child field. Nil for
	// externally supplied fields and read-only child nodes.
	Derivation component.Derivation

	// Default is the construction-time fallback of an own field.
	Default component.Derivation

	// ReadOnly marks a child node that mirrors a readable child field
	// without being mapped by the parent; its value is pulled from the
	// child instance rather than computed.
	ReadOnly bool

	// Producers lists the resolved producer node IDs whose changes require
	// this node to recompute, in deterministic order.
	Producers []string
}

// Plan is the compiled form of one component declaration: the validated
// graph, the precomputed topological order, and the resolved node table.
// A Plan is immutable and shared by every instance of the component.
type Plan struct {
	Component *component.Component
	Graph     *dag.Graph
	Nodes     map[string]*Node
	// Order is the full topological evaluation order.
	Order []string
	// Position maps a node ID to its index in Order.
	Position map[string]int
	// Required lists the externally required input fields in declaration
	// order: consts and props with neither derivation nor default.
	Required []string
	// Children holds the recursively built plan of each child, keyed by
	// child name.
	Children map[string]*Plan
}

// Node returns the resolved node for an ID.
func (p *Plan) Node(id string) (*Node, bool) {
	n, ok := p.Nodes[id]
	return n, ok
}
