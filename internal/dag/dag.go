package dag

import (
	"fmt"
	"sort"
)

// Graph is a directed graph over string node IDs. An edge from A to B means
// B depends on A (A is the producer, B the consumer).
type Graph struct {
	nodes map[string]*node
	// order records node insertion order for deterministic traversal and
	// tie-breaking.
	order []string
	index map[string]int
}

type node struct {
	id         string
	deps       map[string]*node
	dependents map[string]*node
}

// New creates an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*node),
		index: make(map[string]int),
	}
}

// AddNode adds a node with the given ID. Adding an existing ID is a no-op,
// preserving the original insertion position.
func (g *Graph) AddNode(id string) {
	if _, ok := g.nodes[id]; ok {
		return
	}
	g.nodes[id] = &node{
		id:         id,
		deps:       make(map[string]*node),
		dependents: make(map[string]*node),
	}
	g.index[id] = len(g.order)
	g.order = append(g.order, id)
}

// HasNode reports whether the graph contains the given ID.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.order)
}

// Nodes returns all node IDs in insertion order.
func (g *Graph) Nodes() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// AddEdge creates a directed edge from the producer `fromID` to the consumer
// `toID`. An error is returned if either node does not exist or if the edge
// would be a self-reference.
func (g *Graph) AddEdge(fromID, toID string) error {
	if fromID == toID {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", fromID, fromID)
	}
	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}
	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}
	toNode.deps[fromID] = fromNode
	fromNode.dependents[toID] = toNode
	return nil
}

// Dependencies returns the IDs of the nodes the given node depends on, in
// insertion order.
func (g *Graph) Dependencies(id string) ([]string, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return g.sortByInsertion(n.deps), nil
}

// Dependents returns the IDs of the nodes that depend on the given node, in
// insertion order.
func (g *Graph) Dependents(id string) ([]string, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return g.sortByInsertion(n.dependents), nil
}

func (g *Graph) sortByInsertion(m map[string]*node) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool { return g.index[ids[a]] < g.index[ids[b]] })
	return ids
}

// Reaches reports whether a path exists from fromID to toID.
func (g *Graph) Reaches(fromID, toID string) bool {
	from, ok := g.nodes[fromID]
	if !ok {
		return false
	}
	if _, ok := g.nodes[toID]; !ok {
		return false
	}
	seen := map[string]bool{fromID: true}
	stack := []*node{from}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.id == toID {
			return true
		}
		for _, dep := range n.dependents {
			if !seen[dep.id] {
				seen[dep.id] = true
				stack = append(stack, dep)
			}
		}
	}
	return false
}
