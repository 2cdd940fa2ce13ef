// Package print provides the built-in print blossom. It accepts any set of
// values and publishes them as its output, which the runtime renders as one
// atomic print block.
package print

import (
	"context"

	"github.com/zclconf/go-cty/cty"

	"github.com/sakura-flow/sakura/internal/item"
	"github.com/sakura-flow/sakura/internal/registry"
	"github.com/sakura-flow/sakura/internal/value"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the handler with the runtime.
func (m *Module) Register(r *registry.Registry) error {
	if !r.Register("special", "print", &handler{}) {
		return registry.ErrDuplicate("special", "print")
	}
	return nil
}

type handler struct{}

// ValidateInput accepts any value set; print has no required keys.
func (h *handler) ValidateInput(it *item.Blossom) error {
	return nil
}

// Execute publishes the resolved values as the blossom output.
func (h *handler) Execute(ctx context.Context, it *item.Blossom, values value.Environment) error {
	if len(values) == 0 {
		it.Output = cty.EmptyObjectVal
		return nil
	}
	it.Output = cty.ObjectVal(values)
	return nil
}
