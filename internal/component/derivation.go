package component

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Derivation is the pure expression that computes a field's value from other
// fields. It is a function node in the dataflow graph: an opaque evaluator
// plus the static list of field references it reads. References() is stable
// and deterministic; it is extracted once at field-model construction time.
type Derivation interface {
	References() []Ref
	Evaluate(ctx *hcl.EvalContext) (cty.Value, error)
}

// ExprDerivation wraps an hcl.Expression as a derivation. The reference list
// comes from the expression's variable traversals: the traversal root is the
// Base and, when the root is immediately followed by an attribute access, the
// attribute name is the Field.
type ExprDerivation struct {
	expr hcl.Expression
	refs []Ref
}

// NewExprDerivation analyzes expr and returns a derivation wrapping it.
func NewExprDerivation(expr hcl.Expression) *ExprDerivation {
	return &ExprDerivation{
		expr: expr,
		refs: refsFromExpression(expr),
	}
}

// References returns the unique references read by the expression, sorted by
// their canonical string form for determinism.
func (d *ExprDerivation) References() []Ref {
	return d.refs
}

// Evaluate evaluates the wrapped expression in the given scope.
func (d *ExprDerivation) Evaluate(ctx *hcl.EvalContext) (cty.Value, error) {
	val, diags := d.expr.Value(ctx)
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("evaluating derivation: %w", diags)
	}
	return val, nil
}

// Expression exposes the underlying expression for front-end diagnostics.
func (d *ExprDerivation) Expression() hcl.Expression {
	return d.expr
}

// refsFromExpression extracts the unique, sorted reference list from an
// expression's variable traversals.
func refsFromExpression(expr hcl.Expression) []Ref {
	seen := make(map[string]Ref)
	for _, traversal := range expr.Variables() {
		ref := Ref{Base: traversal.RootName()}
		if len(traversal) > 1 {
			if attr, ok := traversal[1].(hcl.TraverseAttr); ok {
				ref.Field = attr.Name
			}
		}
		seen[ref.String()] = ref
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	refs := make([]Ref, 0, len(keys))
	for _, k := range keys {
		refs = append(refs, seen[k])
	}
	return refs
}

// FuncDerivation is a derivation backed by a Go closure, used by
// host-registered components and tests. The reference list is declared
// explicitly; the closure receives the referenced values keyed by the
// canonical string form of each reference.
type FuncDerivation struct {
	refs []Ref
	fn   func(args map[string]cty.Value) (cty.Value, error)
}

// NewFuncDerivation builds a closure-backed derivation with the given
// declared references.
func NewFuncDerivation(refs []Ref, fn func(args map[string]cty.Value) (cty.Value, error)) *FuncDerivation {
	return &FuncDerivation{refs: refs, fn: fn}
}

// References returns the declared reference list.
func (d *FuncDerivation) References() []Ref {
	return d.refs
}

// Evaluate resolves each declared reference against the scope's variables and
// invokes the closure. Dotted references navigate one attribute into the
// base value, matching how an hcl.Expression would traverse it.
func (d *FuncDerivation) Evaluate(ctx *hcl.EvalContext) (cty.Value, error) {
	args := make(map[string]cty.Value, len(d.refs))
	for _, ref := range d.refs {
		val, err := lookupRef(ctx, ref)
		if err != nil {
			return cty.NilVal, err
		}
		args[ref.String()] = val
	}
	return d.fn(args)
}

// lookupRef finds a reference's value in the scope, walking parent contexts
// the way hcl traversal evaluation does.
func lookupRef(ctx *hcl.EvalContext, ref Ref) (cty.Value, error) {
	for scope := ctx; scope != nil; scope = scope.Parent() {
		val, ok := scope.Variables[ref.Base]
		if !ok {
			continue
		}
		if ref.Field == "" {
			return val, nil
		}
		if !val.Type().IsObjectType() || !val.Type().HasAttribute(ref.Field) {
			return cty.NilVal, fmt.Errorf("reference %q: %q has no attribute %q", ref, ref.Base, ref.Field)
		}
		return val.GetAttr(ref.Field), nil
	}
	return cty.NilVal, fmt.Errorf("reference %q not found in scope", ref)
}
