// Package dag implements the directed graph used for dependency ordering:
// cycle detection with full-path diagnostics and a deterministic topological
// sort.
//
// Node identifiers are opaque strings. Insertion order is remembered and used
// to break ties, so a graph built in declaration order always sorts the same
// way; generated code and tests depend on that determinism.
//
// A graph is mutated only while a plan is being built and is treated as
// immutable afterwards; the precomputed order is shared by every instance of
// the component instead of being recomputed per update.
package dag
