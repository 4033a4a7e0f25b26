// Package synth produces the abstract description of a generated component
// type from a resolved plan: the builder/constructor shape, the accessor
// methods each field's visibility annotations request, the event
// registration points, and the init hook. The description is language
// neutral; a downstream code generator emits concrete types from it.
package synth
