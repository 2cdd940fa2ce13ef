// Package template renders template text against an environment. Templates
// use the same interpolation syntax as script value expressions, so one
// evaluation engine serves both.
package template

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/sakura-flow/sakura/internal/sakuraerr"
	"github.com/sakura-flow/sakura/internal/value"
)

// Render expands tmpl with the environment's entries as variables. The name
// is used for diagnostics only.
func Render(name, tmpl string, env value.Environment) (string, error) {
	expr, diags := hclsyntax.ParseTemplate([]byte(tmpl), name, hcl.InitialPos)
	if diags.HasErrors() {
		return "", sakuraerr.New(sakuraerr.KindParse, "template", "while parsing template "+name).
			Message("%s", diags[0].Summary)
	}

	val, diags := expr.Value(&hcl.EvalContext{Variables: env})
	if diags.HasErrors() {
		return "", sakuraerr.New(sakuraerr.KindRuntime, "template", "while rendering template "+name).
			Message("%s", diags[0].Summary).
			With("detail", diags[0].Detail)
	}

	str, err := convert.Convert(val, cty.String)
	if err != nil || str.IsNull() {
		return "", sakuraerr.New(sakuraerr.KindRuntime, "template", "while rendering template "+name).
			Message("template did not produce a string")
	}
	return str.AsString(), nil
}
