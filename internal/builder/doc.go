// Package builder constructs the dependency graph of a component and turns
// it into an executable Plan.
//
// Nodes are a component's own fields plus the child fields reachable through
// its ChildRef mappings, identified by canonical dotted IDs ("width",
// "label.text"). Every symbolic reference in a derivation is resolved to a
// concrete node: a bare name resolves to a sibling field, a dotted name to a
// named child's externally readable field. Edges run from producer to
// consumer.
//
// The builder validates acyclicity and computes the topological evaluation
// order exactly once per component declaration; the runtime reuses the order
// for the construction pass and for every incremental update, never
// re-sorting per update.
package builder
