// Package runtime executes a validated item tree: a fixed worker pool
// drains a shared queue of subtree requests, sequential children run in
// order in one worker, and parallel children fan out across the pool.
package runtime

import (
	"context"
	"io"

	"github.com/sakura-flow/sakura/internal/garden"
	"github.com/sakura-flow/sakura/internal/item"
	"github.com/sakura-flow/sakura/internal/registry"
	"github.com/sakura-flow/sakura/internal/value"
)

// Runtime ties the queue, the pool, and the interpreter together. The
// garden and the registry are read-only while a run is in flight.
type Runtime struct {
	garden   *garden.Garden
	registry *registry.Registry
	printer  *Printer
	queue    *queue
	pool     *pool
}

// Option adjusts a Runtime before it starts.
type Option func(*Runtime)

// WithWorkers sets the pool size.
func WithWorkers(n int) Option {
	return func(rt *Runtime) { rt.pool = newPool(n) }
}

// WithOutput redirects the print sink.
func WithOutput(out io.Writer) Option {
	return func(rt *Runtime) { rt.printer = NewPrinter(out) }
}

// WithPrinter shares an existing print sink.
func WithPrinter(p *Printer) Option {
	return func(rt *Runtime) { rt.printer = p }
}

// New builds a runtime over a populated garden and registry.
func New(g *garden.Garden, reg *registry.Registry, opts ...Option) *Runtime {
	rt := &Runtime{
		garden:   g,
		registry: reg,
		queue:    newQueue(),
		pool:     newPool(DefaultWorkerCount),
	}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.printer == nil {
		rt.printer = NewPrinter(io.Discard)
	}
	return rt
}

// Printer exposes the output sink, mainly for hosts that want to share it.
func (rt *Runtime) Printer() *Printer {
	return rt.printer
}

// Run executes the root item with the given initial environment, blocking
// until the whole tree has terminated. The pool is started for the duration
// of the call.
func (rt *Runtime) Run(ctx context.Context, root item.Item, initial value.Environment) error {
	rt.pool.start(ctx, rt)
	defer rt.pool.shutdown()

	if initial == nil {
		initial = value.NewEnvironment()
	}
	return rt.spawnParallel(ctx, []item.Item{root}, "", nil, initial)
}
