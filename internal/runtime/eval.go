package runtime

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/sakura-flow/sakura/internal/item"
	"github.com/sakura-flow/sakura/internal/sakuraerr"
	"github.com/sakura-flow/sakura/internal/value"
)

// evalExpr resolves one expression against the current environment.
func evalExpr(expr hcl.Expression, env value.Environment) (cty.Value, error) {
	val, diags := expr.Value(&hcl.EvalContext{Variables: env})
	if diags.HasErrors() {
		diag := diags[0]
		t := sakuraerr.New(sakuraerr.KindRuntime, "interpreter", "while evaluating an expression").
			Message("%s", diag.Summary)
		if diag.Detail != "" {
			t.With("detail", diag.Detail)
		}
		if diag.Subject != nil {
			t.With("position", diag.Subject.String())
		}
		return cty.NilVal, t
	}
	return val, nil
}

// evalAssignments resolves an ordered assignment list into an environment.
func evalAssignments(assigns item.Assignments, env value.Environment) (value.Environment, error) {
	out := make(value.Environment, len(assigns))
	for _, a := range assigns {
		v, err := evalExpr(a.Expr, env)
		if err != nil {
			return nil, err
		}
		out[a.Key] = v
	}
	return out, nil
}
