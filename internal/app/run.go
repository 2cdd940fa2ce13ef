package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/sakura-flow/sakura/internal/ctxlog"
	"github.com/sakura-flow/sakura/internal/garden"
	"github.com/sakura-flow/sakura/internal/runtime"
	"github.com/sakura-flow/sakura/internal/sakuraerr"
	"github.com/sakura-flow/sakura/internal/validator"
	"github.com/sakura-flow/sakura/internal/value"
)

// DefaultEntryFile is used when the input path is a directory.
const DefaultEntryFile = "root" + garden.Extension

// ProcessFiles is the host entry point: load and parse the scripts under
// inputPath, validate them, and execute the root tree with initialValues.
// With dryRun set it returns after successful validation without executing
// anything.
func (a *App) ProcessFiles(ctx context.Context, inputPath string, initialValues value.Environment, dryRun bool) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	info, err := os.Stat(inputPath)
	if err != nil {
		return sakuraerr.New(sakuraerr.KindPath, "app", "while reading script files").
			Message("not a regular file or directory as input-path: %s", inputPath)
	}

	treeFile := inputPath
	if info.IsDir() {
		treeFile = filepath.Join(inputPath, DefaultEntryFile)
		if _, err := os.Stat(treeFile); err != nil {
			return sakuraerr.New(sakuraerr.KindPath, "app", "while reading script files").
				Message("no %s found in directory %s", DefaultEntryFile, inputPath)
		}
	}

	if err := a.garden.AddTree(ctx, treeFile); err != nil {
		return err
	}

	absTree, err := filepath.Abs(treeFile)
	if err != nil {
		return sakuraerr.New(sakuraerr.KindPath, "app", "while reading script files").
			Message("cannot resolve path %s: %v", treeFile, err)
	}
	rootDir := filepath.Dir(absTree)
	root := a.garden.GetTree(filepath.Base(absTree), rootDir)
	if root == nil {
		return sakuraerr.New(sakuraerr.KindLink, "app", "while loading the root tree").
			Message("no tree found for the input-path %s", treeFile)
	}

	// Initial values may only name declared root parameters.
	var unknown []string
	for _, k := range initialValues.Keys() {
		if !root.Values.Has(k) {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		return sakuraerr.New(sakuraerr.KindValidation, "app", "while applying initial values").
			Message("following input-values are not valid for the initial tree").
			With("unknown-keys", strings.Join(unknown, ", "))
	}

	if err := validator.CheckAll(ctx, a.garden, a.registry); err != nil {
		return err
	}

	if dryRun {
		a.logger.Info("Dry-run requested, stopping after validation.")
		return nil
	}

	a.logger.Debug("Starting execution.", "workers", a.config.Workers, "root", root.ID)
	rt := runtime.New(a.garden, a.registry,
		runtime.WithWorkers(a.config.Workers),
		runtime.WithPrinter(a.printer),
	)
	return rt.Run(ctx, root, initialValues)
}
