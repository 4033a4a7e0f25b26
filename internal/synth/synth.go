package synth

import (
	"context"

	"github.com/vk/designergo/internal/builder"
	"github.com/vk/designergo/internal/component"
	"github.com/vk/designergo/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// Visibility is the generated item's visibility in the target language.
type Visibility int

const (
	Public Visibility = iota
	Private
)

// String returns the conventional qualifier.
func (v Visibility) String() string {
	if v == Public {
		return "pub"
	}
	return "private"
}

// Param is one builder parameter. Required params must be supplied exactly
// once before build; optional params fall back to the field's default.
type Param struct {
	Field    string
	Type     cty.Type
	Required bool
	Public   bool
}

// AccessorKind is the shape of one generated accessor method.
type AccessorKind int

const (
	// GetClone returns a copy of the value.
	GetClone AccessorKind = iota
	// GetBorrow returns a read-only reference to the stored value.
	GetBorrow
	// Set writes the field and triggers recomputation of its dependents.
	Set
)

// String returns the accessor annotation.
func (k AccessorKind) String() string {
	switch k {
	case GetBorrow:
		return "get borrow"
	case Set:
		return "set"
	}
	return "get clone"
}

// Accessor is one generated accessor method.
type Accessor struct {
	Field  string
	Kind   AccessorKind
	Public bool
	// Placeholder accessors are generated as panicking stubs: the field is
	// declared but not yet derivable.
	Placeholder bool
}

// EventHook is the registration point for one declared event. Exactly one
// handler closure may be attached per event per parent scope.
type EventHook struct {
	Name   string
	Params []string
}

// Description is the synthesized surface of one component type.
type Description struct {
	Component string

	// ImplementationSuppressed marks prototype-only components: the
	// interface is described, but no implementation is generated.
	ImplementationSuppressed bool

	// SimpleBuilder selects the positional `new(...)` constructor instead
	// of a builder type; NewParams lists its parameters in declaration
	// order.
	SimpleBuilder bool
	NewParams     []string

	// BuilderVisibility is the strictest visibility among the setters of
	// the required params; a wider builder would be pointless since it
	// could never be completed.
	BuilderVisibility Visibility

	Params    []Param
	Accessors []Accessor
	Events    []EventHook

	// HasInit records whether an init hook runs after the first full pass.
	HasInit bool

	// OwnedChildren lists the child instances the generated type owns and
	// releases on drop, in declaration order.
	OwnedChildren []string
}

// Synthesize derives the generated-component description from a plan.
func Synthesize(ctx context.Context, plan *builder.Plan) *Description {
	comp := plan.Component
	logger := ctxlog.FromContext(ctx)

	desc := &Description{
		Component:                comp.Name,
		ImplementationSuppressed: comp.PrototypeOnly,
		SimpleBuilder:            comp.SimpleBuilder,
		BuilderVisibility:        Public,
		HasInit:                  comp.Init != nil,
	}

	for _, f := range comp.Fields {
		if f.Kind == component.Event {
			desc.Events = append(desc.Events, EventHook{Name: f.Name, Params: f.EventParams})
			continue
		}
		if f.Settable() {
			required := f.ExternallyRequired()
			desc.Params = append(desc.Params, Param{
				Field:    f.Name,
				Type:     f.Type,
				Required: required,
				Public:   f.Accessors.Set.Public,
			})
			if required && !f.Accessors.Set.Public {
				desc.BuilderVisibility = Private
			}
			if required {
				desc.NewParams = append(desc.NewParams, f.Name)
			}
		}
		desc.Accessors = append(desc.Accessors, fieldAccessors(f)...)
	}
	if !comp.SimpleBuilder {
		desc.NewParams = nil
	}

	for _, ch := range comp.Children {
		desc.OwnedChildren = append(desc.OwnedChildren, ch.Name)
	}

	logger.Debug("Synthesized component description.",
		"component", comp.Name,
		"params", len(desc.Params),
		"accessors", len(desc.Accessors),
		"events", len(desc.Events))
	return desc
}

func fieldAccessors(f *component.FieldDecl) []Accessor {
	var out []Accessor
	if g := f.Accessors.Get; g != nil {
		kind := GetClone
		if g.Mode == component.GetBorrow {
			kind = GetBorrow
		}
		out = append(out, Accessor{Field: f.Name, Kind: kind, Public: g.Public, Placeholder: f.Placeholder})
	}
	// A setter on a prop is a runtime write surface; on a const it only
	// exists as a builder parameter, which Params already captures.
	if s := f.Accessors.Set; s != nil && f.Kind == component.Prop {
		out = append(out, Accessor{Field: f.Name, Kind: Set, Public: s.Public, Placeholder: f.Placeholder})
	}
	return out
}
