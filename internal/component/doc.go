// Package component defines the field model of the Designer language: the
// normalized, validated representation of a component declaration that the
// graph builder, the runtime, and the synthesizer all consume.
//
// A component is a named set of fields (consts, props, events), a list of
// named child component instances, and a list of event handler bindings.
// Field values derive from one another through Derivation expressions; the
// set of fields a derivation reads is extracted once, when the field model is
// constructed, and never re-derived per evaluation.
//
// The field model is built once per component declaration and is immutable
// after Validate succeeds. It carries no instance state.
package component
