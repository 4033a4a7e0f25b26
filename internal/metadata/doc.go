// Package metadata serializes the external interface of a compiled component
// so other compilation units can reference it without its source. An import
// reconstructs a prototype-only shell: enough declaration to validate child
// bindings, resolve cross-component references, and synthesize call sites,
// but nothing that could be instantiated.
package metadata
