package dag

import (
	"fmt"
	"slices"
	"strings"
)

// CycleError reports a dependency cycle. Path is the ordered list of node
// IDs along the cycle; it starts and ends with the same node. A cycle is
// always a compile-time error and is never silently broken.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle: %s", strings.Join(e.Path, " -> "))
}

// Traversal state for cycle detection.
const (
	unvisited = iota
	inProgress
	done
)

// DetectCycle checks the graph for cycles using depth-first traversal with
// per-node {unvisited, in-progress, done} states. Hitting an in-progress
// node signals a cycle; the returned error carries the full cycle path.
// Returns nil when the graph is acyclic.
func (g *Graph) DetectCycle() *CycleError {
	state := make(map[string]int, len(g.order))
	var stack []string

	var visit func(n *node) *CycleError
	visit = func(n *node) *CycleError {
		state[n.id] = inProgress
		stack = append(stack, n.id)

		for _, depID := range g.sortByInsertion(n.dependents) {
			dep := g.nodes[depID]
			switch state[depID] {
			case done:
				continue
			case inProgress:
				// The cycle is the tail of the stack starting at the
				// re-entered node, closed by repeating it.
				start := slices.Index(stack, depID)
				path := append(slices.Clone(stack[start:]), depID)
				return &CycleError{Path: path}
			default:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		stack = stack[:len(stack)-1]
		state[n.id] = done
		return nil
	}

	for _, id := range g.order {
		if state[id] == unvisited {
			if err := visit(g.nodes[id]); err != nil {
				return err
			}
		}
	}
	return nil
}

// TopologicalSort returns a total order placing every producer strictly
// before each of its consumers. Ties are broken by insertion order, so the
// result is deterministic for a given build sequence. A cyclic graph yields
// a *CycleError.
func (g *Graph) TopologicalSort() ([]string, error) {
	indegree := make(map[string]int, len(g.order))
	for id, n := range g.nodes {
		indegree[id] = len(n.deps)
	}

	order := make([]string, 0, len(g.order))
	emitted := make(map[string]bool, len(g.order))

	for len(order) < len(g.order) {
		progressed := false
		// Scan in insertion order and emit the first ready node, so that
		// among simultaneously-ready nodes declaration order wins.
		for _, id := range g.order {
			if emitted[id] || indegree[id] != 0 {
				continue
			}
			emitted[id] = true
			order = append(order, id)
			for _, depID := range g.sortByInsertion(g.nodes[id].dependents) {
				indegree[depID]--
			}
			progressed = true
			break
		}
		if !progressed {
			if err := g.DetectCycle(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("topological sort stalled without a detectable cycle")
		}
	}
	return order, nil
}
