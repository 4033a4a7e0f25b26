package synth_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/designergo/internal/builder"
	"github.com/vk/designergo/internal/component"
	"github.com/vk/designergo/internal/synth"
	"github.com/vk/designergo/internal/testutil"
	"github.com/zclconf/go-cty/cty"
)

func synthesize(t *testing.T, comp *component.Component) *synth.Description {
	t.Helper()
	plan, err := builder.Build(context.Background(), comp)
	require.NoError(t, err)
	return synth.Synthesize(context.Background(), plan)
}

func TestSynthesizeBuilderParams(t *testing.T) {
	comp := component.New("view")
	width := testutil.SettableProp("width")
	width.Type = cty.Number

	pad := testutil.SettableProp("pad")
	pad.Default = testutil.Func(nil, func(map[string]cty.Value) (cty.Value, error) {
		return cty.NumberIntVal(2), nil
	})

	comp.Fields = []*component.FieldDecl{
		width,
		pad,
		testutil.DerivedProp("area", testutil.Func(testutil.Refs("width"), func(args map[string]cty.Value) (cty.Value, error) {
			return args["width"], nil
		})),
	}

	desc := synthesize(t, comp)
	assert.Equal(t, "view", desc.Component)
	assert.False(t, desc.ImplementationSuppressed)
	assert.False(t, desc.SimpleBuilder)
	assert.Empty(t, desc.NewParams)

	want := []synth.Param{
		{Field: "width", Type: cty.Number, Required: true, Public: true},
		{Field: "pad", Required: false, Public: true},
	}
	if diff := cmp.Diff(want, desc.Params, cmp.Comparer(func(a, b cty.Type) bool { return a.Equals(b) })); diff != "" {
		t.Fatalf("params mismatch (-want +got):\n%s", diff)
	}
}

func TestSynthesizeVisibilityFolding(t *testing.T) {
	t.Run("all public setters keep the builder public", func(t *testing.T) {
		comp := component.New("open")
		comp.Fields = []*component.FieldDecl{testutil.SettableProp("a")}
		desc := synthesize(t, comp)
		assert.Equal(t, synth.Public, desc.BuilderVisibility)
	})

	t.Run("one private required setter makes the builder private", func(t *testing.T) {
		comp := component.New("guarded")
		secret := testutil.SettableConst("inner")
		secret.Accessors.Set.Public = false
		secret.Accessors.Get = nil
		comp.Fields = []*component.FieldDecl{testutil.SettableProp("a"), secret}

		desc := synthesize(t, comp)
		assert.Equal(t, synth.Private, desc.BuilderVisibility)
	})

	t.Run("a private optional setter does not narrow the builder", func(t *testing.T) {
		comp := component.New("relaxed")
		opt := testutil.SettableProp("hint")
		opt.Accessors.Set.Public = false
		opt.Default = testutil.Func(nil, func(map[string]cty.Value) (cty.Value, error) {
			return cty.NullVal(cty.DynamicPseudoType), nil
		})
		comp.Fields = []*component.FieldDecl{testutil.SettableProp("a"), opt}

		desc := synthesize(t, comp)
		assert.Equal(t, synth.Public, desc.BuilderVisibility)
	})
}

func TestSynthesizeAccessors(t *testing.T) {
	comp := component.New("surface")

	borrowed := testutil.SettableProp("items")
	borrowed.Accessors.Get.Mode = component.GetBorrow

	hidden := testutil.SettableConst("limit")
	hidden.Accessors.Get.Public = false

	stub := &component.FieldDecl{
		Name:        "style",
		Kind:        component.Prop,
		Placeholder: true,
		Accessors: component.Accessors{
			Get: &component.Getter{Public: true},
			Set: &component.Setter{Public: true},
		},
	}

	comp.Fields = []*component.FieldDecl{borrowed, hidden, stub}
	desc := synthesize(t, comp)

	want := []synth.Accessor{
		{Field: "items", Kind: synth.GetBorrow, Public: true},
		{Field: "items", Kind: synth.Set, Public: true},
		{Field: "limit", Kind: synth.GetClone, Public: false},
		{Field: "style", Kind: synth.GetClone, Public: true, Placeholder: true},
		{Field: "style", Kind: synth.Set, Public: true, Placeholder: true},
	}
	if diff := cmp.Diff(want, desc.Accessors); diff != "" {
		t.Fatalf("accessors mismatch (-want +got):\n%s", diff)
	}
}

func TestSynthesizeConstSetterIsBuilderOnly(t *testing.T) {
	comp := component.New("view")
	comp.Fields = []*component.FieldDecl{testutil.SettableConst("limit")}
	desc := synthesize(t, comp)

	// The const surfaces as a builder param but not as a runtime setter.
	require.Len(t, desc.Params, 1)
	assert.True(t, desc.Params[0].Required)
	want := []synth.Accessor{{Field: "limit", Kind: synth.GetClone, Public: true}}
	if diff := cmp.Diff(want, desc.Accessors); diff != "" {
		t.Fatalf("accessors mismatch (-want +got):\n%s", diff)
	}
}

func TestSynthesizeEventsAndChildren(t *testing.T) {
	label := component.New("label")
	label.Fields = []*component.FieldDecl{testutil.SettableProp("text")}

	comp := component.New("view")
	comp.Fields = []*component.FieldDecl{
		testutil.Event("clicked", "x", "y"),
		testutil.Event("closed"),
	}
	comp.Children = []*component.ChildRef{{
		Name:      "header",
		Component: label,
		Inputs: map[string]component.Derivation{
			"text": testutil.Func(nil, func(map[string]cty.Value) (cty.Value, error) {
				return cty.StringVal("hi"), nil
			}),
		},
	}}
	comp.Init = func(context.Context, component.Writer) error { return nil }

	desc := synthesize(t, comp)
	want := []synth.EventHook{
		{Name: "clicked", Params: []string{"x", "y"}},
		{Name: "closed"},
	}
	assert.Equal(t, want, desc.Events)
	assert.Equal(t, []string{"header"}, desc.OwnedChildren)
	assert.True(t, desc.HasInit)
}

func TestSynthesizeSimpleBuilder(t *testing.T) {
	comp := component.New("widget")
	comp.PrototypeOnly = true
	comp.SimpleBuilder = true
	comp.Fields = []*component.FieldDecl{
		testutil.SettableConst("width"),
		testutil.SettableConst("height"),
		testutil.SettableProp("visible"),
	}

	desc := synthesize(t, comp)
	assert.True(t, desc.ImplementationSuppressed)
	assert.True(t, desc.SimpleBuilder)
	// Positional constructor parameters follow declaration order.
	assert.Equal(t, []string{"width", "height", "visible"}, desc.NewParams)
}
