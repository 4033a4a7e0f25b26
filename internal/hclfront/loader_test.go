package hclfront

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/designergo/internal/component"
	"github.com/zclconf/go-cty/cty"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

const labelDecl = `
component "label" {
  prop "text" {
    type = string
    get {}
    set {}
  }

  prop "size" {
    type  = number
    value = length(text)
    get {}
  }

  event "activated" {
    params = ["count"]
  }
}
`

func TestLoadSingleComponent(t *testing.T) {
	ctx := context.Background()
	dir := writeFiles(t, map[string]string{"label.hcl": labelDecl})

	comps, err := NewLoader().Load(ctx, dir)
	require.NoError(t, err)
	require.Len(t, comps, 1)

	label := comps[0]
	assert.Equal(t, "label", label.Name)

	text, ok := label.Field("text")
	require.True(t, ok)
	assert.Equal(t, component.Prop, text.Kind)
	assert.True(t, cty.String.Equals(text.Type))
	assert.True(t, text.Settable())
	assert.True(t, text.Readable())
	assert.True(t, text.ExternallyRequired())

	size, ok := label.Field("size")
	require.True(t, ok)
	require.NotNil(t, size.Derivation)
	assert.Equal(t, []component.Ref{{Base: "text"}}, size.Derivation.References())
	assert.False(t, size.Settable())

	activated, ok := label.Field("activated")
	require.True(t, ok)
	assert.Equal(t, component.Event, activated.Kind)
	assert.Equal(t, []string{"count"}, activated.EventParams)
}

func TestLoadLeavesAbsentAttributesUnset(t *testing.T) {
	// gohcl fills unwritten optional expression attributes with a synthetic
	// null expression. A field block carrying only accessors must still
	// decode with no derivation, no default, and no declared type.
	ctx := context.Background()
	dir := writeFiles(t, map[string]string{"n.hcl": `
component "note" {
  prop "body" {
    get {}
    set {}
  }

  prop "title" {
    type    = string
    default = "untitled"
    get {}
    set {}
  }
}
`})

	comps, err := NewLoader().Load(ctx, dir)
	require.NoError(t, err)
	require.Len(t, comps, 1)

	body, ok := comps[0].Field("body")
	require.True(t, ok)
	assert.Nil(t, body.Derivation)
	assert.Nil(t, body.Default)
	assert.Equal(t, cty.NilType, body.Type)
	assert.True(t, body.ExternallyRequired())

	title, ok := comps[0].Field("title")
	require.True(t, ok)
	assert.Nil(t, title.Derivation)
	require.NotNil(t, title.Default)
	assert.False(t, title.ExternallyRequired())
}

func TestLoadResolvesChildrenAcrossFiles(t *testing.T) {
	ctx := context.Background()
	dir := writeFiles(t, map[string]string{
		// The view is loaded from a file that sorts before the label's, so
		// resolution cannot depend on encounter order.
		"a_view.hcl": `
component "view" {
  prop "title" {
    type = string
    get {}
    set {}
  }

  prop "width" {
    type  = number
    value = header.size + 2
    get {}
  }

  prop "clicks" {
    type    = number
    default = 0
    get {}
    set {}
  }

  child "header" {
    component = "label"
    input {
      text = title
    }
  }

  on "header.activated" {
    clicks = count
  }
}
`,
		"z_label.hcl": labelDecl,
	})

	comps, err := NewLoader().Load(ctx, dir)
	require.NoError(t, err)
	require.Len(t, comps, 2)

	view := comps[0]
	require.Equal(t, "view", view.Name)

	header, ok := view.Child("header")
	require.True(t, ok)
	assert.Equal(t, "label", header.Component.Name)
	require.Contains(t, header.Inputs, "text")
	assert.Equal(t, []component.Ref{{Base: "title"}}, header.Inputs["text"].References())

	require.Len(t, view.Handlers, 1)
	assert.Equal(t, component.Ref{Base: "header", Field: "activated"}, view.Handlers[0].Source)
	require.NotNil(t, view.Handlers[0].Action)

	width, _ := view.Field("width")
	assert.Equal(t, []component.Ref{{Base: "header", Field: "size"}}, width.Derivation.References())

	clicks, _ := view.Field("clicks")
	assert.NotNil(t, clicks.Default)
	assert.False(t, clicks.ExternallyRequired())
}

func TestLoadAccessorDetails(t *testing.T) {
	ctx := context.Background()
	dir := writeFiles(t, map[string]string{"c.hcl": `
component "widget" {
  prototype_only = true
  simple_builder = true

  const "rows" {
    type = number
    set {
      public = false
    }
    get {
      mode = "borrow"
    }
  }

  prop "style" {
    placeholder = true
    get {}
    set {}
    watch "style_changed" {
      public = false
    }
  }

  event "style_changed" {
    params = ["value"]
  }
}
`})

	comps, err := NewLoader().Load(ctx, dir)
	require.NoError(t, err)
	require.Len(t, comps, 1)

	widget := comps[0]
	assert.True(t, widget.PrototypeOnly)
	assert.True(t, widget.SimpleBuilder)

	rows, ok := widget.Field("rows")
	require.True(t, ok)
	assert.Equal(t, component.Const, rows.Kind)
	require.NotNil(t, rows.Accessors.Set)
	assert.False(t, rows.Accessors.Set.Public)
	require.NotNil(t, rows.Accessors.Get)
	assert.Equal(t, component.GetBorrow, rows.Accessors.Get.Mode)
	assert.True(t, rows.Accessors.Get.Public)

	style, ok := widget.Field("style")
	require.True(t, ok)
	assert.True(t, style.Placeholder)
	require.NotNil(t, style.Accessors.Watch)
	assert.Equal(t, "style_changed", style.Accessors.Watch.Event)
	assert.False(t, style.Accessors.Watch.Public)
}

func TestLoadErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown child component", func(t *testing.T) {
		dir := writeFiles(t, map[string]string{"v.hcl": `
component "view" {
  child "header" {
    component = "ghost"
  }
}
`})
		_, err := NewLoader().Load(ctx, dir)
		assert.ErrorContains(t, err, `unknown component "ghost"`)
	})

	t.Run("duplicate declaration", func(t *testing.T) {
		dir := writeFiles(t, map[string]string{
			"a.hcl": `component "dup" {}`,
			"b.hcl": `component "dup" {}`,
		})
		_, err := NewLoader().Load(ctx, dir)
		assert.ErrorContains(t, err, `declared twice`)
	})

	t.Run("invalid syntax", func(t *testing.T) {
		dir := writeFiles(t, map[string]string{"bad.hcl": `component "x" {`})
		_, err := NewLoader().Load(ctx, dir)
		assert.ErrorContains(t, err, "failed to parse")
	})

	t.Run("validation failures surface", func(t *testing.T) {
		dir := writeFiles(t, map[string]string{"bad.hcl": `
component "bad" {
  prop "x" {
    value = 1
    set {}
  }
}
`})
		var malErr *component.MalformedFieldError
		_, err := NewLoader().Load(ctx, dir)
		require.ErrorAs(t, err, &malErr)
		assert.Contains(t, malErr.Reason, "setter")
	})

	t.Run("malformed handler source", func(t *testing.T) {
		dir := writeFiles(t, map[string]string{"bad.hcl": `
component "bad" {
  on "notdotted" {}
}
`})
		_, err := NewLoader().Load(ctx, dir)
		assert.ErrorContains(t, err, "child.event")
	})
}

func TestLoaderHandlerAction(t *testing.T) {
	ctx := context.Background()
	dir := writeFiles(t, map[string]string{
		"label.hcl": labelDecl,
		"view.hcl": `
component "view" {
  prop "clicks" {
    type    = number
    default = 0
    get {}
    set {}
  }

  child "header" {
    component = "label"
    input {
      text = "hello"
    }
  }

  on "header.activated" {
    clicks = count * 10
  }
}
`})

	comps, err := NewLoader().Load(ctx, dir)
	require.NoError(t, err)

	var view *component.Component
	for _, c := range comps {
		if c.Name == "view" {
			view = c
		}
	}
	require.NotNil(t, view)
	require.Len(t, view.Handlers, 1)

	// The handler body evaluates its expressions with the event args in
	// scope and writes the result through the provided surface.
	rec := &recordingWriter{}
	err = view.Handlers[0].Action(ctx, rec, map[string]cty.Value{"count": cty.NumberIntVal(3)})
	require.NoError(t, err)
	require.Len(t, rec.writes, 1)
	assert.Equal(t, "clicks", rec.writes[0].field)
	assert.True(t, rec.writes[0].value.RawEquals(cty.NumberIntVal(30)), "got %#v", rec.writes[0].value)
}

type recordedWrite struct {
	field string
	value cty.Value
}

type recordingWriter struct {
	writes []recordedWrite
}

func (r *recordingWriter) Set(_ context.Context, field string, value cty.Value) error {
	r.writes = append(r.writes, recordedWrite{field: field, value: value})
	return nil
}

func (r *recordingWriter) Raise(context.Context, string, map[string]cty.Value) error {
	return nil
}
