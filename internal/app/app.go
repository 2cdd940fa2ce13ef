// Package app wires the garden, the blossom registry, and the runtime into
// one host-facing application object.
package app

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/sakura-flow/sakura/blossoms/assert"
	"github.com/sakura-flow/sakura/blossoms/file"
	"github.com/sakura-flow/sakura/blossoms/print"
	"github.com/sakura-flow/sakura/blossoms/sleep"
	templateblossom "github.com/sakura-flow/sakura/blossoms/template"
	"github.com/sakura-flow/sakura/internal/garden"
	"github.com/sakura-flow/sakura/internal/registry"
	"github.com/sakura-flow/sakura/internal/runtime"
)

// Config holds the settings an App instance needs to run.
type Config struct {
	LogLevel  string
	LogFormat string
	Workers   int
}

// App encapsulates the application's dependencies and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	garden   *garden.Garden
	registry *registry.Registry
	printer  *runtime.Printer
}

// New builds a fully initialized App with its own logger, garden, and
// registry. The built-in blossoms are always registered; extra modules are
// registered after them.
func New(outW io.Writer, cfg *Config, modules ...registry.Module) (*App, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)

	g := garden.New()
	printer := runtime.NewPrinter(outW)

	reg := registry.New()
	builtins := []registry.Module{
		&print.Module{},
		&assert.Module{},
		&sleep.Module{},
		&templateblossom.Module{Garden: g},
		&file.Module{Garden: g},
	}
	for _, mod := range append(builtins, modules...) {
		if err := mod.Register(reg); err != nil {
			return nil, fmt.Errorf("failed to register blossom module: %w", err)
		}
	}
	logger.Debug("Blossom modules registered.", "handlers", reg.Len())

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		garden:   g,
		registry: reg,
		printer:  printer,
	}, nil
}

// Garden returns the application's garden, primarily for resource
// registration and tests.
func (a *App) Garden() *garden.Garden {
	return a.garden
}

// Registry returns the application's blossom registry.
func (a *App) Registry() *registry.Registry {
	return a.registry
}
