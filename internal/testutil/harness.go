// Package testutil provides shared helpers for integration-style tests:
// a harness that materializes script files in a temp directory and runs
// them through the full app, plus counting and recording handlers.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sakura-flow/sakura/internal/app"
	"github.com/sakura-flow/sakura/internal/registry"
	"github.com/sakura-flow/sakura/internal/value"
)

// SafeBuffer is a thread-safe buffer for capturing output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// RunResult holds the outcome of one harness run.
type RunResult struct {
	Output string
	Err    error
	App    *app.App
}

// RunOptions adjusts a harness run.
type RunOptions struct {
	// Entry selects the file passed to ProcessFiles; empty means the
	// script directory itself.
	Entry string
	// Initial is the initial value environment for the root tree.
	Initial value.Environment
	// DryRun stops after validation.
	DryRun bool
	// Workers sets the pool size (default 4).
	Workers int
	// Resources are registered on the garden before the run, keyed by a
	// pseudo path.
	Resources map[string]string
}

// Run materializes the given files under a fresh temp directory and runs
// ProcessFiles over them with the provided modules. Paths in files are
// relative, e.g. "root.sakura" or "templates/hello.txt".
func Run(t *testing.T, files map[string]string, opts RunOptions, modules ...registry.Module) *RunResult {
	t.Helper()

	tmpDir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	output := &SafeBuffer{}
	testApp, err := app.New(output, &app.Config{
		LogLevel:  "warn",
		LogFormat: "text",
		Workers:   workersOrDefault(opts.Workers),
	}, modules...)
	require.NoError(t, err)

	ctx := context.Background()
	for name, content := range opts.Resources {
		require.NoError(t, testApp.Garden().AddResource(ctx, content, name))
	}

	entry := tmpDir
	if opts.Entry != "" {
		entry = filepath.Join(tmpDir, opts.Entry)
	}
	runErr := testApp.ProcessFiles(ctx, entry, opts.Initial, opts.DryRun)

	return &RunResult{
		Output: output.String(),
		Err:    runErr,
		App:    testApp,
	}
}

func workersOrDefault(n int) int {
	if n > 0 {
		return n
	}
	return 4
}
