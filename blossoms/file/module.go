// Package file provides the built-in file blossom: it copies a binary blob
// from the garden to a destination path.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zclconf/go-cty/cty"

	"github.com/sakura-flow/sakura/internal/garden"
	"github.com/sakura-flow/sakura/internal/item"
	"github.com/sakura-flow/sakura/internal/registry"
	"github.com/sakura-flow/sakura/internal/value"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	Garden *garden.Garden
}

// Register registers the handler with the runtime.
func (m *Module) Register(r *registry.Registry) error {
	if !r.Register("special", "file", &handler{garden: m.Garden}) {
		return registry.ErrDuplicate("special", "file")
	}
	return nil
}

type handler struct {
	garden *garden.Garden
}

// ValidateInput requires source and dest paths.
func (h *handler) ValidateInput(it *item.Blossom) error {
	if !it.Values.Has("source") {
		return fmt.Errorf("file needs a \"source\" value")
	}
	if !it.Values.Has("dest") {
		return fmt.Errorf("file needs a \"dest\" value")
	}
	return nil
}

// Execute copies the garden blob to the destination path.
func (h *handler) Execute(ctx context.Context, it *item.Blossom, values value.Environment) error {
	source, err := stringValue(values, "source")
	if err != nil {
		return err
	}
	dest, err := stringValue(values, "dest")
	if err != nil {
		return err
	}

	rel := h.garden.RelativePath(it.Path, source)
	blob, ok := h.garden.GetFile(rel)
	if !ok {
		return fmt.Errorf("no file found for path %q", rel)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %v", dest, err)
	}
	if err := os.WriteFile(dest, blob, 0o644); err != nil {
		return fmt.Errorf("failed to write file to %s: %v", dest, err)
	}
	it.Output = cty.StringVal(dest)
	return nil
}

func stringValue(values value.Environment, key string) (string, error) {
	v, ok := values[key]
	if !ok || v.IsNull() || v.Type() != cty.String {
		return "", fmt.Errorf("%q must be a string value", key)
	}
	return v.AsString(), nil
}
