package builder

import (
	"fmt"
	"strings"
)

// DependencyCycleError reports that a component's dependency graph is not
// acyclic. Path is the full cycle in dependency order, starting and ending
// at the same node ID, suitable for a compiler-style report.
type DependencyCycleError struct {
	Component string
	Path      []string
}

func (e *DependencyCycleError) Error() string {
	return fmt.Sprintf("component %q: dependency cycle: %s", e.Component, strings.Join(e.Path, " -> "))
}

// MissingChildInputError reports a child whose required field is not covered
// by the parent's input mapping, so the child could never be constructed.
type MissingChildInputError struct {
	Component string
	Child     string
	Field     string
}

func (e *MissingChildInputError) Error() string {
	return fmt.Sprintf("component %q: child %q: required field %q has no input mapping", e.Component, e.Child, e.Field)
}
