package component

import (
	"context"
	"fmt"

	"github.com/vk/designergo/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// Validate normalizes the declaration: it builds the name indexes and checks
// every structural rule that does not need the dependency graph. All
// violations are fatal, typed errors; nothing is downgraded to a default.
func (c *Component) Validate(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Validating component declaration.", "component", c.Name, "fields", len(c.Fields), "children", len(c.Children))

	if c.Name == "" {
		return fmt.Errorf("component has no name")
	}
	if err := c.buildIndexes(); err != nil {
		return err
	}
	if c.SimpleBuilder && !c.PrototypeOnly {
		return &MalformedFieldError{Component: c.Name, Reason: "simple builder requires prototype-only"}
	}

	for _, f := range c.Fields {
		if err := c.validateField(f); err != nil {
			return err
		}
	}
	if err := c.validateChildren(); err != nil {
		return err
	}
	if err := c.validateHandlers(); err != nil {
		return err
	}

	logger.Debug("Component declaration is valid.", "component", c.Name)
	return nil
}

// buildIndexes populates the lookup maps, enforcing the single namespace
// shared by fields and children.
func (c *Component) buildIndexes() error {
	c.fieldIndex = make(map[string]*FieldDecl, len(c.Fields))
	for _, f := range c.Fields {
		if _, exists := c.fieldIndex[f.Name]; exists {
			return &DuplicateFieldError{Component: c.Name, Field: f.Name}
		}
		c.fieldIndex[f.Name] = f
	}
	c.childIndex = make(map[string]*ChildRef, len(c.Children))
	for _, ch := range c.Children {
		if _, exists := c.fieldIndex[ch.Name]; exists {
			return &DuplicateFieldError{Component: c.Name, Field: ch.Name}
		}
		if _, exists := c.childIndex[ch.Name]; exists {
			return &DuplicateFieldError{Component: c.Name, Field: ch.Name}
		}
		c.childIndex[ch.Name] = ch
	}
	return nil
}

func (c *Component) validateField(f *FieldDecl) error {
	malformed := func(reason string) error {
		return &MalformedFieldError{Component: c.Name, Field: f.Name, Reason: reason}
	}

	if f.Kind == Event {
		if f.Derivation != nil || f.Default != nil {
			return malformed("an event cannot have a derivation")
		}
		if f.Type != cty.NilType {
			return malformed("an event carries an argument list, not a value type")
		}
		if f.Accessors.Get != nil || f.Accessors.Set != nil || f.Accessors.Watch != nil {
			return malformed("an event cannot have accessors")
		}
		if f.Placeholder {
			return malformed("an event cannot be a placeholder")
		}
		return nil
	}

	if len(f.EventParams) > 0 {
		return malformed("only events declare parameters")
	}
	if f.Derivation != nil && f.Default != nil {
		return malformed("a derived field cannot also have a default")
	}
	if f.Derivation != nil && f.Accessors.Set != nil {
		return malformed("a derived field cannot have a setter")
	}
	if f.Placeholder && (f.Derivation != nil || f.Default != nil) {
		return malformed("a placeholder field is not derivable")
	}
	if f.Kind == Const && f.Accessors.Watch != nil {
		return malformed("a const never changes after construction and cannot be watched")
	}
	if w := f.Accessors.Watch; w != nil {
		target, ok := c.fieldIndex[w.Event]
		if !ok || target.Kind != Event {
			return malformed(fmt.Sprintf("watch names %q, which is not an event of this component", w.Event))
		}
	}
	if f.ExternallyRequired() && f.Accessors.Set == nil {
		return malformed("an externally required field needs a setter so construction can supply it")
	}
	if c.SimpleBuilder && f.Kind == Const && f.Default != nil && f.Accessors.Set != nil && f.Accessors.Set.Public {
		// The positional constructor has no way to override an optional
		// const, so exposing a setter for it is a contradiction.
		return malformed("an optional const cannot have a public setter under the simple builder")
	}
	return nil
}

// validateChildren checks every child input mapping against the child's own
// declaration, and rejects the trivial parent<->child loop where a const both
// parameterizes a child and derives from it. The full cycle check over the
// dependency graph happens in the builder.
func (c *Component) validateChildren() error {
	for _, ch := range c.Children {
		if ch.Component == nil {
			return fmt.Errorf("component %q: child %q has no component type", c.Name, ch.Name)
		}
		if ch.Component.fieldIndex == nil {
			if err := ch.Component.buildIndexes(); err != nil {
				return err
			}
		}
		for name, d := range ch.Inputs {
			containing := ch.Name + "." + name
			target, ok := ch.Component.fieldIndex[name]
			if !ok {
				return &UnresolvedReferenceError{
					Component:  c.Name,
					Containing: containing,
					Ref:        Ref{Base: ch.Name, Field: name},
					Reason:     fmt.Sprintf("component %q has no such field", ch.Component.Name),
				}
			}
			if !target.Settable() || !target.Accessors.Set.Public {
				return &UnresolvedReferenceError{
					Component:  c.Name,
					Containing: containing,
					Ref:        Ref{Base: ch.Name, Field: name},
					Reason:     fmt.Sprintf("field is not externally settable on component %q", ch.Component.Name),
				}
			}
			if d == nil {
				return &MalformedFieldError{Component: c.Name, Field: containing, Reason: "child input has no derivation"}
			}
		}
		if err := c.checkTrivialChildCycle(ch); err != nil {
			return err
		}
	}
	return nil
}

// checkTrivialChildCycle rejects a const that derives from a child it also
// parameterizes. The builder's full cycle detection would catch the same
// declarations, but this shape is common enough to deserve the earlier,
// more specific diagnostic.
func (c *Component) checkTrivialChildCycle(ch *ChildRef) error {
	feeds := make(map[string]bool)
	for _, d := range ch.Inputs {
		for _, ref := range d.References() {
			if !ref.IsDotted() {
				feeds[ref.Base] = true
			}
		}
	}
	for _, f := range c.Fields {
		if f.Kind != Const || f.Derivation == nil || !feeds[f.Name] {
			continue
		}
		for _, ref := range f.Derivation.References() {
			if ref.Base == ch.Name && ref.IsDotted() {
				return &MalformedFieldError{
					Component: c.Name,
					Field:     f.Name,
					Reason:    fmt.Sprintf("const parameterizes child %q and derives from it", ch.Name),
				}
			}
		}
	}
	return nil
}

func (c *Component) validateHandlers() error {
	seen := make(map[string]bool)
	for _, h := range c.Handlers {
		if !h.Source.IsDotted() {
			return &UnresolvedReferenceError{
				Component:  c.Name,
				Containing: "on " + h.Source.String(),
				Ref:        h.Source,
				Reason:     "handler source must be a child event",
			}
		}
		ch, ok := c.childIndex[h.Source.Base]
		if !ok {
			return &UnresolvedReferenceError{
				Component:  c.Name,
				Containing: "on " + h.Source.String(),
				Ref:        h.Source,
				Reason:     "no such child",
			}
		}
		target, ok := ch.Component.fieldIndex[h.Source.Field]
		if !ok || target.Kind != Event {
			return &UnresolvedReferenceError{
				Component:  c.Name,
				Containing: "on " + h.Source.String(),
				Ref:        h.Source,
				Reason:     fmt.Sprintf("component %q has no such event", ch.Component.Name),
			}
		}
		if seen[h.Source.String()] {
			return &DuplicateHandlerError{Component: c.Name, Source: h.Source}
		}
		seen[h.Source.String()] = true
		if h.Action == nil {
			return &MalformedFieldError{Component: c.Name, Field: "on " + h.Source.String(), Reason: "handler has no body"}
		}
	}
	return nil
}
