package hclfront

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/designergo/internal/component"
	"github.com/zclconf/go-cty/cty"
)

// translateFields fills one component shell from its declaration block:
// everything except children and handlers, which need the full registry.
func (l *Loader) translateFields(ctx context.Context, comp *component.Component, block *componentBlock) error {
	comp.PrototypeOnly = block.PrototypeOnly
	comp.SimpleBuilder = block.SimpleBuilder

	for _, fb := range block.Consts {
		f, err := translateField(ctx, comp.Name, fb, component.Const)
		if err != nil {
			return err
		}
		comp.Fields = append(comp.Fields, f)
	}
	for _, fb := range block.Props {
		f, err := translateField(ctx, comp.Name, fb, component.Prop)
		if err != nil {
			return err
		}
		comp.Fields = append(comp.Fields, f)
	}
	for _, eb := range block.Events {
		comp.Fields = append(comp.Fields, &component.FieldDecl{
			Name:        eb.Name,
			Kind:        component.Event,
			EventParams: eb.Params,
		})
	}
	return nil
}

func translateField(ctx context.Context, compName string, fb *fieldBlock, kind component.Kind) (*component.FieldDecl, error) {
	ty, err := typeExprToCtyType(ctx, presentExpr(fb.Type))
	if err != nil {
		return nil, fmt.Errorf("component %q: field %q: %w", compName, fb.Name, err)
	}

	f := &component.FieldDecl{
		Name:        fb.Name,
		Kind:        kind,
		Type:        ty,
		Placeholder: fb.Placeholder,
	}
	if v := presentExpr(fb.Value); v != nil {
		f.Derivation = component.NewExprDerivation(v)
	}
	if d := presentExpr(fb.Default); d != nil {
		f.Default = component.NewExprDerivation(d)
	}

	if g := fb.Get; g != nil {
		mode := component.GetClone
		switch g.Mode {
		case "", "clone":
		case "borrow":
			mode = component.GetBorrow
		default:
			return nil, fmt.Errorf("component %q: field %q: unknown get mode %q", compName, fb.Name, g.Mode)
		}
		f.Accessors.Get = &component.Getter{Public: boolOr(g.Public, true), Mode: mode}
	}
	if s := fb.Set; s != nil {
		f.Accessors.Set = &component.Setter{Public: boolOr(s.Public, true)}
	}
	if w := fb.Watch; w != nil {
		f.Accessors.Watch = &component.Watcher{Public: boolOr(w.Public, true), Event: w.Event}
	}
	return f, nil
}

// attachChildren resolves each child block's component name against the
// registry and translates its input attributes into derivations.
func (l *Loader) attachChildren(comp *component.Component, block *componentBlock) error {
	for _, cb := range block.Children {
		target, ok := l.registry[cb.Component]
		if !ok {
			return fmt.Errorf("component %q: child %q: unknown component %q", comp.Name, cb.Name, cb.Component)
		}
		ref := &component.ChildRef{Name: cb.Name, Component: target}
		if cb.Inputs != nil {
			attrs, diags := cb.Inputs.Body.JustAttributes()
			if diags.HasErrors() {
				return fmt.Errorf("component %q: child %q inputs: %w", comp.Name, cb.Name, diags)
			}
			ref.Inputs = make(map[string]component.Derivation, len(attrs))
			for name, attr := range attrs {
				ref.Inputs[name] = component.NewExprDerivation(attr.Expr)
			}
		}
		comp.Children = append(comp.Children, ref)
	}
	return nil
}

// attachHandlers translates each `on "child.event"` block into a handler that
// evaluates its attribute expressions with the event arguments in scope and
// writes the results to the named props.
func (l *Loader) attachHandlers(comp *component.Component, block *componentBlock) error {
	for _, ob := range block.Handlers {
		base, field, ok := strings.Cut(ob.Source, ".")
		if !ok {
			return fmt.Errorf("component %q: handler source %q is not of the form child.event", comp.Name, ob.Source)
		}
		attrs, diags := ob.Body.JustAttributes()
		if diags.HasErrors() {
			return fmt.Errorf("component %q: handler %q: %w", comp.Name, ob.Source, diags)
		}
		writes := make([]handlerWrite, 0, len(attrs))
		for name, attr := range attrs {
			writes = append(writes, handlerWrite{field: name, expr: attr.Expr})
		}
		sort.Slice(writes, func(i, j int) bool { return writes[i].field < writes[j].field })

		comp.Handlers = append(comp.Handlers, &component.Handler{
			Source: component.Ref{Base: base, Field: field},
			Action: handlerAction(comp.Name, ob.Source, writes),
		})
	}
	return nil
}

type handlerWrite struct {
	field string
	expr  hcl.Expression
}

func handlerAction(compName, source string, writes []handlerWrite) component.HandlerFunc {
	return func(ctx context.Context, w component.Writer, args map[string]cty.Value) error {
		scope := &hcl.EvalContext{Variables: args}
		for _, wr := range writes {
			val, diags := wr.expr.Value(scope)
			if diags.HasErrors() {
				return fmt.Errorf("component %q: handler %q: computing %q: %w", compName, source, wr.field, diags)
			}
			if err := w.Set(ctx, wr.field, val); err != nil {
				return err
			}
		}
		return nil
	}
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
