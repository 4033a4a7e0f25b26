package component

import (
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func parseExpr(t *testing.T, src string) hcl.Expression {
	t.Helper()
	expr, diags := hclsyntax.ParseExpression([]byte(src), "test.hcl", hcl.InitialPos)
	require.False(t, diags.HasErrors(), diags.Error())
	return expr
}

func TestExprDerivationReferences(t *testing.T) {
	t.Run("bare sibling references", func(t *testing.T) {
		d := NewExprDerivation(parseExpr(t, "width + height"))
		assert.Equal(t, []Ref{{Base: "height"}, {Base: "width"}}, d.References())
	})

	t.Run("dotted child references keep one attribute", func(t *testing.T) {
		d := NewExprDerivation(parseExpr(t, "label.text"))
		assert.Equal(t, []Ref{{Base: "label", Field: "text"}}, d.References())
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		d := NewExprDerivation(parseExpr(t, "a + a + a"))
		assert.Equal(t, []Ref{{Base: "a"}}, d.References())
	})

	t.Run("references are sorted by canonical form", func(t *testing.T) {
		d := NewExprDerivation(parseExpr(t, "z + child.size + a"))
		assert.Equal(t, []Ref{{Base: "a"}, {Base: "child", Field: "size"}, {Base: "z"}}, d.References())
	})

	t.Run("literal expression has no references", func(t *testing.T) {
		d := NewExprDerivation(parseExpr(t, "40 + 2"))
		assert.Empty(t, d.References())
	})
}

func TestExprDerivationEvaluate(t *testing.T) {
	d := NewExprDerivation(parseExpr(t, "width * 2"))

	scope := &hcl.EvalContext{
		Variables: map[string]cty.Value{"width": cty.NumberIntVal(21)},
	}
	val, err := d.Evaluate(scope)
	require.NoError(t, err)
	// RawEquals, not a deep compare: number values carry their arithmetic
	// precision, so structurally different representations can be equal.
	assert.True(t, val.RawEquals(cty.NumberIntVal(42)), "got %#v", val)

	_, err = d.Evaluate(&hcl.EvalContext{Variables: map[string]cty.Value{}})
	assert.Error(t, err)
}

func TestFuncDerivation(t *testing.T) {
	t.Run("declared references are returned verbatim", func(t *testing.T) {
		refs := []Ref{{Base: "a"}, {Base: "child", Field: "size"}}
		d := NewFuncDerivation(refs, func(map[string]cty.Value) (cty.Value, error) {
			return cty.NilVal, nil
		})
		assert.Equal(t, refs, d.References())
	})

	t.Run("arguments resolve by canonical key", func(t *testing.T) {
		d := NewFuncDerivation(
			[]Ref{{Base: "a"}, {Base: "child", Field: "size"}},
			func(args map[string]cty.Value) (cty.Value, error) {
				sum := args["a"].AsBigFloat()
				sum.Add(sum, args["child.size"].AsBigFloat())
				return cty.NumberVal(sum), nil
			},
		)

		scope := &hcl.EvalContext{Variables: map[string]cty.Value{
			"a":     cty.NumberIntVal(40),
			"child": cty.ObjectVal(map[string]cty.Value{"size": cty.NumberIntVal(2)}),
		}}
		val, err := d.Evaluate(scope)
		require.NoError(t, err)
		assert.True(t, val.RawEquals(cty.NumberIntVal(42)), "got %#v", val)
	})

	t.Run("missing reference is an error", func(t *testing.T) {
		d := NewFuncDerivation([]Ref{{Base: "ghost"}}, func(map[string]cty.Value) (cty.Value, error) {
			return cty.NilVal, nil
		})
		_, err := d.Evaluate(&hcl.EvalContext{Variables: map[string]cty.Value{}})
		assert.ErrorContains(t, err, "not found in scope")
	})

	t.Run("dotted reference into a non-object is an error", func(t *testing.T) {
		d := NewFuncDerivation([]Ref{{Base: "child", Field: "size"}}, func(map[string]cty.Value) (cty.Value, error) {
			return cty.NilVal, nil
		})
		scope := &hcl.EvalContext{Variables: map[string]cty.Value{"child": cty.NumberIntVal(1)}}
		_, err := d.Evaluate(scope)
		assert.ErrorContains(t, err, "no attribute")
	})

	t.Run("parent scopes are searched", func(t *testing.T) {
		d := NewFuncDerivation([]Ref{{Base: "a"}}, func(args map[string]cty.Value) (cty.Value, error) {
			return args["a"], nil
		})
		parent := &hcl.EvalContext{Variables: map[string]cty.Value{"a": cty.True}}
		child := parent.NewChild()
		child.Variables = map[string]cty.Value{}

		val, err := d.Evaluate(child)
		require.NoError(t, err)
		assert.Equal(t, cty.True, val)
	})
}

func TestRefString(t *testing.T) {
	assert.Equal(t, "width", Ref{Base: "width"}.String())
	assert.Equal(t, "label.text", Ref{Base: "label", Field: "text"}.String())
	assert.False(t, Ref{Base: "width"}.IsDotted())
	assert.True(t, Ref{Base: "label", Field: "text"}.IsDotted())
}
