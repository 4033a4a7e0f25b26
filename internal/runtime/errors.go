package runtime

import "fmt"

// UnknownFieldError reports an access to a field the component does not
// declare.
type UnknownFieldError struct {
	Component string
	Field     string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("component %q has no field %q", e.Component, e.Field)
}

// NotSettableError reports a write to a field that is not externally
// writable: a const after construction, a derived field, or a field with no
// setter accessor.
type NotSettableError struct {
	Component string
	Field     string
}

func (e *NotSettableError) Error() string {
	return fmt.Sprintf("component %q: field %q is not settable", e.Component, e.Field)
}

// MissingInputError reports construction without a value for an externally
// required field.
type MissingInputError struct {
	Component string
	Field     string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("component %q: required field %q was not supplied", e.Component, e.Field)
}

// PlaceholderReadError reports a read of a placeholder field that was never
// supplied a value. Placeholders are declared but not yet derivable, so this
// is a user-facing error, unlike UninitializedReadError.
type PlaceholderReadError struct {
	Component string
	Field     string
}

func (e *PlaceholderReadError) Error() string {
	return fmt.Sprintf("component %q: placeholder field %q has no value", e.Component, e.Field)
}

// UninitializedReadError reports a derivation reading a node that has not
// been assigned yet. The topological order makes this impossible for a valid
// plan, so observing it means the graph builder or scheduler is defective;
// it is an internal invariant failure, not a user error.
type UninitializedReadError struct {
	Component string
	Node      string
	Producer  string
}

func (e *UninitializedReadError) Error() string {
	return fmt.Sprintf("internal invariant violation: component %q: %q read uninitialized %q", e.Component, e.Node, e.Producer)
}
