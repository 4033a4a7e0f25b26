package component

import "fmt"

// DuplicateFieldError reports two fields (or a field and a child, which share
// one namespace) declared with the same name within one component. Fatal;
// aborts compilation of the component.
type DuplicateFieldError struct {
	Component string
	Field     string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("component %q: duplicate field name %q", e.Component, e.Field)
}

// MalformedFieldError reports an invalid kind/derivation/accessor
// combination, such as an event with a derivation or a derived field with a
// setter. Fatal.
type MalformedFieldError struct {
	Component string
	Field     string
	Reason    string
}

func (e *MalformedFieldError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("component %q: %s", e.Component, e.Reason)
	}
	return fmt.Sprintf("component %q: field %q: %s", e.Component, e.Field, e.Reason)
}

// UnresolvedReferenceError reports a derivation or binding that references a
// nonexistent field or an inaccessible child field. Containing names the
// field (or child input, or handler) whose expression made the reference.
type UnresolvedReferenceError struct {
	Component  string
	Containing string
	Ref        Ref
	Reason     string
}

func (e *UnresolvedReferenceError) Error() string {
	msg := fmt.Sprintf("component %q: %s: unresolved reference %q", e.Component, e.Containing, e.Ref)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// DuplicateHandlerError reports two `on` bindings declared for the same
// child event. Exactly one handler may be attached per event per parent
// scope.
type DuplicateHandlerError struct {
	Component string
	Source    Ref
}

func (e *DuplicateHandlerError) Error() string {
	return fmt.Sprintf("component %q: duplicate handler for %q", e.Component, e.Source)
}
