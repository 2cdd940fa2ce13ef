// Package garden owns the library of parsed trees, resources, templates,
// and file blobs, all keyed by normalized relative path.
package garden

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/sakura-flow/sakura/internal/ctxlog"
	"github.com/sakura-flow/sakura/internal/fsutil"
	"github.com/sakura-flow/sakura/internal/item"
	"github.com/sakura-flow/sakura/internal/parser"
	"github.com/sakura-flow/sakura/internal/sakuraerr"
)

// Extension is the suffix that marks a script source file.
const Extension = ".sakura"

// Garden is populated before execution and read-only afterwards.
type Garden struct {
	RootPath  string
	Trees     map[string]*item.Tree
	Resources map[string]*item.Tree
	Templates map[string]string
	Files     map[string][]byte
}

// New returns an empty garden.
func New() *Garden {
	return &Garden{
		Trees:     make(map[string]*item.Tree),
		Resources: make(map[string]*item.Tree),
		Templates: make(map[string]string),
		Files:     make(map[string][]byte),
	}
}

// AddTree loads the script file at treePath together with every other
// source the surrounding directory provides: sibling scripts become trees,
// the contents of templates/ directories become templates, and the contents
// of files/ directories become file blobs. Re-adding an already-known
// relative path is a no-op.
func (g *Garden) AddTree(ctx context.Context, treePath string) error {
	logger := ctxlog.FromContext(ctx)

	abs, err := filepath.Abs(treePath)
	if err != nil {
		return sakuraerr.New(sakuraerr.KindPath, "garden", "while loading script files").
			Message("cannot resolve path %s: %v", treePath, err)
	}
	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		return sakuraerr.New(sakuraerr.KindPath, "garden", "while loading script files").
			Message("not a regular file: %s", treePath)
	}

	rootPath := filepath.Dir(abs)
	if g.RootPath == "" {
		g.RootPath = rootPath
	}

	set, err := fsutil.ScanScriptDir(rootPath, Extension)
	if err != nil {
		return sakuraerr.New(sakuraerr.KindPath, "garden", "while loading script files").
			Message("failed to walk %s: %v", rootPath, err)
	}
	logger.Debug("Scanned script directory.",
		"root", rootPath,
		"scripts", len(set.Scripts),
		"templates", len(set.Templates),
		"files", len(set.Files))

	for _, path := range set.Scripts {
		if err := g.addScript(ctx, rootPath, path); err != nil {
			return err
		}
	}
	for _, path := range set.Templates {
		if err := g.addBlob(rootPath, path, true); err != nil {
			return err
		}
	}
	for _, path := range set.Files {
		if err := g.addBlob(rootPath, path, false); err != nil {
			return err
		}
	}

	// The entry file itself may lack the script extension; load it directly
	// in that case.
	if _, ok := g.Trees[g.relKey(rootPath, abs)]; !ok {
		if err := g.addScript(ctx, rootPath, abs); err != nil {
			return err
		}
	}

	return nil
}

func (g *Garden) addScript(ctx context.Context, rootPath, path string) error {
	rel := g.relKey(rootPath, path)
	if _, ok := g.Trees[rel]; ok {
		return nil
	}

	tree, err := parser.ParseFile(path)
	if err != nil {
		return err
	}
	tree.RootPath = rootPath
	tree.RelativePath = rel
	g.Trees[rel] = tree

	ctxlog.FromContext(ctx).Debug("Registered tree.", "relPath", rel, "id", tree.ID)
	return nil
}

func (g *Garden) addBlob(rootPath, path string, isTemplate bool) error {
	rel := g.relKey(rootPath, path)
	if isTemplate {
		if _, ok := g.Templates[rel]; ok {
			return nil
		}
	} else if _, ok := g.Files[rel]; ok {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return sakuraerr.New(sakuraerr.KindPath, "garden", "while loading script files").
			Message("failed to read %s: %v", path, err)
	}
	if isTemplate {
		g.Templates[rel] = string(data)
	} else {
		g.Files[rel] = data
	}
	return nil
}

// AddResource parses script source held in memory and registers the
// resulting tree under its declared id, addressable as a blossom call.
func (g *Garden) AddResource(ctx context.Context, content, relPath string) error {
	tree, err := parser.Parse(relPath, []byte(content))
	if err != nil {
		return err
	}
	tree.RelativePath = normalize(relPath)
	g.Resources[tree.ID] = tree
	ctxlog.FromContext(ctx).Debug("Registered resource.", "id", tree.ID)
	return nil
}

// GetTree looks a tree up by relative path. A non-empty rootPath must match
// the garden's root.
func (g *Garden) GetTree(relPath, rootPath string) *item.Tree {
	if rootPath != "" && filepath.Clean(rootPath) != filepath.Clean(g.RootPath) {
		return nil
	}
	return g.Trees[normalize(relPath)]
}

// GetResource looks a resource tree up by id.
func (g *Garden) GetResource(id string) *item.Tree {
	return g.Resources[id]
}

// GetTemplate looks template text up by relative path.
func (g *Garden) GetTemplate(relPath string) (string, bool) {
	t, ok := g.Templates[normalize(relPath)]
	return t, ok
}

// GetFile looks a file blob up by relative path.
func (g *Garden) GetFile(relPath string) ([]byte, bool) {
	f, ok := g.Files[normalize(relPath)]
	return f, ok
}

// RelativePath computes the canonical garden key for a path referenced from
// inside a script file: the reference is joined onto the script's directory
// and the garden root is stripped.
func (g *Garden) RelativePath(blossomFilePath, internalRelPath string) string {
	joined := filepath.Join(filepath.Dir(blossomFilePath), internalRelPath)
	if rel, err := filepath.Rel(g.RootPath, joined); err == nil && !strings.HasPrefix(rel, "..") {
		return normalize(rel)
	}
	return normalize(internalRelPath)
}

func (g *Garden) relKey(rootPath, path string) string {
	rel, err := filepath.Rel(rootPath, path)
	if err != nil {
		return normalize(path)
	}
	return normalize(rel)
}

// normalize produces the canonical map key: forward slashes, no leading ./
func normalize(p string) string {
	return strings.TrimPrefix(filepath.ToSlash(filepath.Clean(p)), "./")
}
