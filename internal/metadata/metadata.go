package metadata

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vk/designergo/internal/component"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Getter is the serialized form of a read accessor.
type Getter struct {
	Public bool   `json:"public"`
	Mode   string `json:"mode"`
}

// Setter is the serialized form of a write accessor.
type Setter struct {
	Public bool `json:"public"`
}

// Watcher is the serialized form of a watch accessor.
type Watcher struct {
	Public bool   `json:"public"`
	Event  string `json:"event"`
}

// Field is the externally visible shape of one field.
type Field struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	// Type is the cty type in its JSON encoding; absent when the field
	// declared no type.
	Type json.RawMessage `json:"type,omitempty"`

	Get   *Getter  `json:"get,omitempty"`
	Set   *Setter  `json:"set,omitempty"`
	Watch *Watcher `json:"watch,omitempty"`

	// Derived and HasDefault record that the component computes this field
	// itself; the expressions stay private to the defining unit.
	Derived     bool `json:"derived,omitempty"`
	HasDefault  bool `json:"has_default,omitempty"`
	Placeholder bool `json:"placeholder,omitempty"`

	EventParams []string `json:"params,omitempty"`
}

// Interface is the full exported surface of one component.
type Interface struct {
	Name          string   `json:"name"`
	SimpleBuilder bool     `json:"simple_builder,omitempty"`
	Fields        []*Field `json:"fields"`
}

// Export captures the external interface of a validated component.
func Export(comp *component.Component) (*Interface, error) {
	iface := &Interface{
		Name:          comp.Name,
		SimpleBuilder: comp.SimpleBuilder,
	}
	for _, f := range comp.Fields {
		mf := &Field{
			Name:        f.Name,
			Kind:        f.Kind.String(),
			Derived:     f.Derivation != nil,
			HasDefault:  f.Default != nil,
			Placeholder: f.Placeholder,
			EventParams: f.EventParams,
		}
		if f.Type != cty.NilType {
			raw, err := ctyjson.MarshalType(f.Type)
			if err != nil {
				return nil, fmt.Errorf("component %q: field %q: encoding type: %w", comp.Name, f.Name, err)
			}
			mf.Type = raw
		}
		if g := f.Accessors.Get; g != nil {
			mf.Get = &Getter{Public: g.Public, Mode: g.Mode.String()}
		}
		if s := f.Accessors.Set; s != nil {
			mf.Set = &Setter{Public: s.Public}
		}
		if w := f.Accessors.Watch; w != nil {
			mf.Watch = &Watcher{Public: w.Public, Event: w.Event}
		}
		iface.Fields = append(iface.Fields, mf)
	}
	return iface, nil
}

// Marshal renders the interface as its canonical JSON document.
func (i *Interface) Marshal() ([]byte, error) {
	return json.MarshalIndent(i, "", "  ")
}

// Import parses an exported interface document.
func Import(data []byte) (*Interface, error) {
	var iface Interface
	if err := json.Unmarshal(data, &iface); err != nil {
		return nil, fmt.Errorf("decoding component metadata: %w", err)
	}
	if iface.Name == "" {
		return nil, fmt.Errorf("decoding component metadata: missing component name")
	}
	return &iface, nil
}

// Component reconstructs a prototype-only declaration shell from the
// interface. Derived fields get an opaque derivation that declares every
// publicly settable sibling as an input and refuses evaluation: dependency
// analysis in a consuming unit must assume all outputs depend on all inputs,
// and the shell itself can never be instantiated.
func (i *Interface) Component(ctx context.Context) (*component.Component, error) {
	comp := component.New(i.Name)
	comp.PrototypeOnly = true
	comp.SimpleBuilder = i.SimpleBuilder

	// Only publicly settable fields can be producers in a consuming unit:
	// child input mappings require a public setter, so a private one can
	// never carry outside state into the shell.
	var settable []component.Ref
	for _, mf := range i.Fields {
		if mf.Set != nil && mf.Set.Public && !mf.Derived {
			settable = append(settable, component.Ref{Base: mf.Name})
		}
	}

	for _, mf := range i.Fields {
		f := &component.FieldDecl{
			Name:        mf.Name,
			Placeholder: mf.Placeholder,
			EventParams: mf.EventParams,
		}
		switch mf.Kind {
		case "const":
			f.Kind = component.Const
		case "prop":
			f.Kind = component.Prop
		case "event":
			f.Kind = component.Event
		default:
			return nil, fmt.Errorf("component %q: field %q: unknown kind %q", i.Name, mf.Name, mf.Kind)
		}
		if len(mf.Type) > 0 {
			ty, err := ctyjson.UnmarshalType(mf.Type)
			if err != nil {
				return nil, fmt.Errorf("component %q: field %q: decoding type: %w", i.Name, mf.Name, err)
			}
			f.Type = ty
		}
		if g := mf.Get; g != nil {
			mode := component.GetClone
			if g.Mode == component.GetBorrow.String() {
				mode = component.GetBorrow
			}
			f.Accessors.Get = &component.Getter{Public: g.Public, Mode: mode}
		}
		if s := mf.Set; s != nil {
			f.Accessors.Set = &component.Setter{Public: s.Public}
		}
		if w := mf.Watch; w != nil {
			f.Accessors.Watch = &component.Watcher{Public: w.Public, Event: w.Event}
		}
		if mf.Derived {
			f.Derivation = externalDerivation(i.Name, mf.Name, settable)
		} else if mf.HasDefault {
			f.Default = externalDerivation(i.Name, mf.Name, nil)
		}
		comp.Fields = append(comp.Fields, f)
	}

	if err := comp.Validate(ctx); err != nil {
		return nil, fmt.Errorf("imported interface for %q is not valid: %w", i.Name, err)
	}
	return comp, nil
}

func externalDerivation(comp, field string, refs []component.Ref) component.Derivation {
	return component.NewFuncDerivation(refs, func(map[string]cty.Value) (cty.Value, error) {
		return cty.NilVal, fmt.Errorf("component %q: field %q is computed by an external implementation", comp, field)
	})
}
