// Package registry stores the host-supplied blossom handlers.
//
// Handlers are addressed by (group, name). The registry is written during
// startup and read-only once execution begins, so lookups take no lock.
package registry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakura-flow/sakura/internal/item"
	"github.com/sakura-flow/sakura/internal/value"
)

// Handler is the contract a blossom implementation fulfills.
//
// ValidateInput is called once per call site by the validator, before any
// execution. Execute is called by workers and must be safe for concurrent
// calls with distinct items; it may block and may set the item's Output.
type Handler interface {
	ValidateInput(it *item.Blossom) error
	Execute(ctx context.Context, it *item.Blossom, values value.Environment) error
}

// Module bundles a set of handlers that register themselves together.
type Module interface {
	Register(r *Registry) error
}

// Key addresses one handler.
type Key struct {
	Group string
	Name  string
}

// Registry maps (group, name) to handlers.
type Registry struct {
	handlers map[Key]Handler
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{handlers: make(map[Key]Handler)}
}

// Register adds a handler. It returns false, keeping the first
// registration, when the (group, name) pair is already taken.
func (r *Registry) Register(group, name string, h Handler) bool {
	key := Key{Group: group, Name: name}
	if _, exists := r.handlers[key]; exists {
		return false
	}
	slog.Debug("Registering blossom handler.", "group", group, "name", name)
	r.handlers[key] = h
	return true
}

// Get returns the handler for (group, name).
func (r *Registry) Get(group, name string) (Handler, bool) {
	h, ok := r.handlers[Key{Group: group, Name: name}]
	return h, ok
}

// Exists reports whether (group, name) is registered.
func (r *Registry) Exists(group, name string) bool {
	_, ok := r.handlers[Key{Group: group, Name: name}]
	return ok
}

// Len returns the number of registered handlers.
func (r *Registry) Len() int {
	return len(r.handlers)
}

// ErrDuplicate is the error a module returns when its registration was
// rejected because the (group, name) pair is already taken.
func ErrDuplicate(group, name string) error {
	return fmt.Errorf("blossom handler %s/%s already registered", group, name)
}
