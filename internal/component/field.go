package component

import "github.com/zclconf/go-cty/cty"

// Kind classifies a field.
type Kind int

const (
	// Const fields are set once, at or before construction. They may be
	// derived or externally supplied, and never change afterwards.
	Const Kind = iota
	// Prop fields are mutable after construction; a write triggers
	// incremental recomputation of dependent fields.
	Prop
	// Event fields carry no stored value. They are named notification
	// channels the component raises and parent scopes subscribe to.
	Event
)

// String returns the declaration keyword for the kind.
func (k Kind) String() string {
	switch k {
	case Const:
		return "const"
	case Prop:
		return "prop"
	case Event:
		return "event"
	}
	return "unknown"
}

// GetMode distinguishes the two getter shapes a target language can emit.
type GetMode int

const (
	// GetClone getters return a copy of the value.
	GetClone GetMode = iota
	// GetBorrow getters return a read-only reference to the stored value.
	GetBorrow
)

// String returns the accessor annotation for the mode.
func (m GetMode) String() string {
	if m == GetBorrow {
		return "borrow"
	}
	return "clone"
}

// Getter describes a field's read accessor.
type Getter struct {
	Public bool
	Mode   GetMode
}

// Setter describes a field's write accessor. On a const field it only grants
// pre-construction supply through the builder; on a prop field it also grants
// post-construction writes.
type Setter struct {
	Public bool
}

// Watcher names a sibling event that is raised whenever the field's value
// changes during an update pass.
type Watcher struct {
	Public bool
	Event  string
}

// Accessors is the visibility surface declared on a field. It is consumed by
// the synthesizer and the runtime's settability checks, never by the graph
// algorithms.
type Accessors struct {
	Get   *Getter
	Set   *Setter
	Watch *Watcher
}

// FieldDecl is one field of a component.
type FieldDecl struct {
	Name      string
	Kind      Kind
	Type      cty.Type // cty.NilType means no declared type (dynamic)
	Accessors Accessors

	// Derivation computes the field from other fields. A derived field is
	// never externally settable.
	Derivation Derivation
	// Default is the fallback derivation used when no explicit value is
	// supplied at construction. Mutually exclusive with Derivation.
	Default Derivation

	// EventParams is the declared argument list of an event field.
	EventParams []string

	// Placeholder marks a field that is declared but not yet derivable:
	// prototype scaffolding. Supplying a value is allowed, reading an
	// unsupplied placeholder is an error. Distinct from both "externally
	// required" and "has a default".
	Placeholder bool
}

// Readable reports whether the field is externally readable, which is what a
// dotted reference from a parent scope requires.
func (f *FieldDecl) Readable() bool {
	return f.Accessors.Get != nil && f.Accessors.Get.Public
}

// Settable reports whether the field can be written from outside the
// component, at construction for consts and any time for props.
func (f *FieldDecl) Settable() bool {
	return f.Accessors.Set != nil && f.Derivation == nil
}

// ExternallyRequired reports whether construction must be given a value for
// this field: a const or prop with no derivation, no default, and no
// placeholder marker.
func (f *FieldDecl) ExternallyRequired() bool {
	if f.Kind == Event || f.Placeholder {
		return false
	}
	return f.Derivation == nil && f.Default == nil
}
