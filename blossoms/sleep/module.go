// Package sleep provides the built-in sleep blossom, mainly useful to
// shape concurrency in scripts and tests.
package sleep

import (
	"context"
	"fmt"
	"time"

	"github.com/zclconf/go-cty/cty"

	"github.com/sakura-flow/sakura/internal/item"
	"github.com/sakura-flow/sakura/internal/registry"
	"github.com/sakura-flow/sakura/internal/value"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the handler with the runtime.
func (m *Module) Register(r *registry.Registry) error {
	if !r.Register("special", "sleep", &handler{}) {
		return registry.ErrDuplicate("special", "sleep")
	}
	return nil
}

type handler struct{}

// ValidateInput requires a duration value.
func (h *handler) ValidateInput(it *item.Blossom) error {
	if !it.Values.Has("duration") {
		return fmt.Errorf("sleep needs a \"duration\" value")
	}
	return nil
}

// Execute pauses for the configured duration or until the context ends.
func (h *handler) Execute(ctx context.Context, it *item.Blossom, values value.Environment) error {
	raw, ok := values["duration"]
	if !ok || raw.IsNull() || raw.Type() != cty.String {
		return fmt.Errorf("sleep needs a \"duration\" string like \"150ms\"")
	}
	d, err := time.ParseDuration(raw.AsString())
	if err != nil {
		return fmt.Errorf("invalid sleep duration %q: %v", raw.AsString(), err)
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
