// Package assert provides the built-in assert blossom: every value must
// evaluate to true, otherwise the run fails.
package assert

import (
	"context"
	"fmt"
	"sort"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/sakura-flow/sakura/internal/item"
	"github.com/sakura-flow/sakura/internal/registry"
	"github.com/sakura-flow/sakura/internal/value"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the handler with the runtime.
func (m *Module) Register(r *registry.Registry) error {
	if !r.Register("special", "assert", &handler{}) {
		return registry.ErrDuplicate("special", "assert")
	}
	return nil
}

type handler struct{}

// ValidateInput requires at least one condition to check.
func (h *handler) ValidateInput(it *item.Blossom) error {
	if len(it.Values) == 0 {
		return fmt.Errorf("assert needs at least one value")
	}
	return nil
}

// Execute fails on the first value that is not true. Keys are checked in
// sorted order so failures are deterministic.
func (h *handler) Execute(ctx context.Context, it *item.Blossom, values value.Environment) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		b, err := convert.Convert(values[k], cty.Bool)
		if err != nil || b.IsNull() {
			return fmt.Errorf("assertion %q did not evaluate to a bool", k)
		}
		if !b.True() {
			return fmt.Errorf("assertion %q failed", k)
		}
	}
	return nil
}
