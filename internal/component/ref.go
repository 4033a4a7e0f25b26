package component

// Ref is a symbolic reference made by a derivation to another field. A bare
// reference (Field == "") names a sibling field of the enclosing component.
// A dotted reference names a field of a declared child instance, e.g.
// "label.text" is Ref{Base: "label", Field: "text"}.
//
// Refs are symbolic: resolution against a concrete component happens in the
// graph builder, which also decides whether a dotted Base names a child or a
// sibling whose value is being indexed into.
type Ref struct {
	Base  string
	Field string
}

// IsDotted reports whether the reference carries an attribute part.
func (r Ref) IsDotted() bool {
	return r.Field != ""
}

// String renders the canonical form used as a scope key and in diagnostics.
func (r Ref) String() string {
	if r.Field == "" {
		return r.Base
	}
	return r.Base + "." + r.Field
}
