package testutil

import (
	"strings"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/require"
	"github.com/vk/designergo/internal/component"
	"github.com/zclconf/go-cty/cty"
)

// SettableProp returns a prop with public get and set accessors, the common
// shape for test inputs.
func SettableProp(name string) *component.FieldDecl {
	return &component.FieldDecl{
		Name: name,
		Kind: component.Prop,
		Accessors: component.Accessors{
			Get: &component.Getter{Public: true},
			Set: &component.Setter{Public: true},
		},
	}
}

// SettableConst returns a const with public get and set accessors: externally
// required unless given a default.
func SettableConst(name string) *component.FieldDecl {
	f := SettableProp(name)
	f.Kind = component.Const
	return f
}

// DerivedProp returns a readable prop computed by the given derivation.
func DerivedProp(name string, d component.Derivation) *component.FieldDecl {
	return &component.FieldDecl{
		Name:       name,
		Kind:       component.Prop,
		Derivation: d,
		Accessors: component.Accessors{
			Get: &component.Getter{Public: true},
		},
	}
}

// Event returns an event field with the given parameter names.
func Event(name string, params ...string) *component.FieldDecl {
	return &component.FieldDecl{Name: name, Kind: component.Event, EventParams: params}
}

// WithWatch adds a watch accessor raising the named sibling event.
func WithWatch(f *component.FieldDecl, event string) *component.FieldDecl {
	f.Accessors.Watch = &component.Watcher{Public: true, Event: event}
	return f
}

// Refs parses canonical reference strings ("a", "child.field") into Refs.
func Refs(refs ...string) []component.Ref {
	out := make([]component.Ref, 0, len(refs))
	for _, r := range refs {
		base, field, _ := strings.Cut(r, ".")
		out = append(out, component.Ref{Base: base, Field: field})
	}
	return out
}

// Func returns a closure-backed derivation over the given references.
func Func(refs []component.Ref, fn func(args map[string]cty.Value) (cty.Value, error)) component.Derivation {
	return component.NewFuncDerivation(refs, fn)
}

// CountingFunc wraps a derivation function with an evaluation counter, the
// instrument for pinning down minimal-recomputation guarantees.
func CountingFunc(counter *int, refs []component.Ref, fn func(args map[string]cty.Value) (cty.Value, error)) component.Derivation {
	return component.NewFuncDerivation(refs, func(args map[string]cty.Value) (cty.Value, error) {
		*counter++
		return fn(args)
	})
}

// Expression parses an HCL expression string, failing the test on diagnostics.
func Expression(t *testing.T, src string) hcl.Expression {
	t.Helper()
	expr, diags := hclsyntax.ParseExpression([]byte(src), t.Name()+".hcl", hcl.InitialPos)
	require.False(t, diags.HasErrors(), "parsing %q: %s", src, diags.Error())
	return expr
}

// Validated builds a component from the given fields and validates it.
func Validated(t *testing.T, name string, fields ...*component.FieldDecl) *component.Component {
	t.Helper()
	comp := component.New(name)
	comp.Fields = fields
	require.NoError(t, comp.Validate(t.Context()))
	return comp
}
