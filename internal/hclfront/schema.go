package hclfront

import (
	"github.com/hashicorp/hcl/v2"
)

// getBlock declares a read accessor. `mode` is "clone" (default) or "borrow".
type getBlock struct {
	Public *bool  `hcl:"public,optional"`
	Mode   string `hcl:"mode,optional"`
}

// setBlock declares a write accessor.
type setBlock struct {
	Public *bool `hcl:"public,optional"`
}

// watchBlock names the sibling event raised when the field's value changes.
type watchBlock struct {
	Event  string `hcl:"event,label"`
	Public *bool  `hcl:"public,optional"`
}

// fieldBlock is a `const` or `prop` block; the block type supplies the kind.
type fieldBlock struct {
	Name        string         `hcl:"name,label"`
	Type        hcl.Expression `hcl:"type,optional"`
	Value       hcl.Expression `hcl:"value,optional"`
	Default     hcl.Expression `hcl:"default,optional"`
	Placeholder bool           `hcl:"placeholder,optional"`
	Get         *getBlock      `hcl:"get,block"`
	Set         *setBlock      `hcl:"set,block"`
	Watch       *watchBlock    `hcl:"watch,block"`
}

// eventBlock declares a named event and its parameter list.
type eventBlock struct {
	Name   string   `hcl:"name,label"`
	Params []string `hcl:"params,optional"`
}

// inputsBlock carries the free-form `field = expression` attributes that
// parameterize a child.
type inputsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// childBlock instantiates another component under a local name.
type childBlock struct {
	Name      string       `hcl:"name,label"`
	Component string       `hcl:"component"`
	Inputs    *inputsBlock `hcl:"input,block"`
}

// onBlock binds a child event to a list of prop writes. Each body attribute
// is `prop = expression`, evaluated with the event's arguments in scope.
type onBlock struct {
	Source string   `hcl:"source,label"`
	Body   hcl.Body `hcl:",remain"`
}

// componentBlock is one `component "name" { ... }` declaration.
type componentBlock struct {
	Name          string        `hcl:"name,label"`
	PrototypeOnly bool          `hcl:"prototype_only,optional"`
	SimpleBuilder bool          `hcl:"simple_builder,optional"`
	Consts        []*fieldBlock `hcl:"const,block"`
	Props         []*fieldBlock `hcl:"prop,block"`
	Events        []*eventBlock `hcl:"event,block"`
	Children      []*childBlock `hcl:"child,block"`
	Handlers      []*onBlock    `hcl:"on,block"`
}

// fileRoot decodes all component declarations from one file.
type fileRoot struct {
	Components []*componentBlock `hcl:"component,block"`
	Remain     hcl.Body          `hcl:",remain"`
}

// presentExpr returns the expression, or nil when gohcl synthesized it for an
// absent optional attribute. gohcl fills missing expression attributes with a
// static null rather than leaving the field nil, so a nil check alone cannot
// tell "not written" from "written". The synthetic expression references no
// variables and evaluates cleanly to null; anything a declaration can
// actually write either references something or evaluates to a non-null
// constant. A literal `null` is treated as absent.
func presentExpr(expr hcl.Expression) hcl.Expression {
	if expr == nil {
		return nil
	}
	if len(expr.Variables()) > 0 {
		return expr
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() || !val.IsNull() {
		return expr
	}
	return nil
}
