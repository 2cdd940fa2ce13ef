// Package template provides the built-in template blossom: it renders a
// template from the garden against its values and publishes the result as
// output, also writing it to a destination file when one is given.
package template

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zclconf/go-cty/cty"

	"github.com/sakura-flow/sakura/internal/garden"
	"github.com/sakura-flow/sakura/internal/item"
	"github.com/sakura-flow/sakura/internal/registry"
	"github.com/sakura-flow/sakura/internal/template"
	"github.com/sakura-flow/sakura/internal/value"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	Garden *garden.Garden
}

// Register registers the handler with the runtime.
func (m *Module) Register(r *registry.Registry) error {
	if !r.Register("special", "template", &handler{garden: m.Garden}) {
		return registry.ErrDuplicate("special", "template")
	}
	return nil
}

type handler struct {
	garden *garden.Garden
}

// ValidateInput requires the template source path.
func (h *handler) ValidateInput(it *item.Blossom) error {
	if !it.Values.Has("source") {
		return fmt.Errorf("template needs a \"source\" value")
	}
	return nil
}

// Execute renders the template. The rendered text becomes the output; with
// a "dest" value it is also written to that file.
func (h *handler) Execute(ctx context.Context, it *item.Blossom, values value.Environment) error {
	source, err := stringValue(values, "source")
	if err != nil {
		return err
	}

	rel := h.garden.RelativePath(it.Path, source)
	tmpl, ok := h.garden.GetTemplate(rel)
	if !ok {
		return fmt.Errorf("no template found for path %q", rel)
	}

	rendered, err := template.Render(rel, tmpl, values)
	if err != nil {
		return err
	}
	it.Output = cty.StringVal(rendered)

	if _, ok := values["dest"]; ok {
		dest, err := stringValue(values, "dest")
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %v", dest, err)
		}
		if err := os.WriteFile(dest, []byte(rendered), 0o644); err != nil {
			return fmt.Errorf("failed to write rendered template to %s: %v", dest, err)
		}
	}
	return nil
}

func stringValue(values value.Environment, key string) (string, error) {
	v, ok := values[key]
	if !ok || v.IsNull() || v.Type() != cty.String {
		return "", fmt.Errorf("%q must be a string value", key)
	}
	return v.AsString(), nil
}
