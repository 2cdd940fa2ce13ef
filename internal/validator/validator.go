// Package validator performs the static pre-execution check of every loaded
// tree against the garden and the blossom registry. When it succeeds, every
// reachable blossom has a handler or a matching resource and every handler
// has approved its declared inputs.
package validator

import (
	"context"
	"path/filepath"
	"sort"

	"github.com/sakura-flow/sakura/internal/ctxlog"
	"github.com/sakura-flow/sakura/internal/garden"
	"github.com/sakura-flow/sakura/internal/item"
	"github.com/sakura-flow/sakura/internal/registry"
	"github.com/sakura-flow/sakura/internal/sakuraerr"
)

// CheckAll walks every tree and resource of the garden. It returns the
// first failure it finds.
func CheckAll(ctx context.Context, g *garden.Garden, reg *registry.Registry) error {
	logger := ctxlog.FromContext(ctx)
	c := &checker{garden: g, registry: reg}

	for _, rel := range sortedKeys(g.Trees) {
		if err := c.checkItem(g.Trees[rel], ""); err != nil {
			return err
		}
	}
	for _, id := range sortedKeys(g.Resources) {
		if err := c.checkItem(g.Resources[id], ""); err != nil {
			return err
		}
	}

	if err := c.checkReferenceCycles(); err != nil {
		return err
	}

	logger.Debug("Validation passed.", "trees", len(g.Trees), "resources", len(g.Resources))
	return nil
}

type checker struct {
	garden   *garden.Garden
	registry *registry.Registry
}

func (c *checker) checkItem(it item.Item, filePath string) error {
	switch t := it.(type) {
	case *item.Sequential:
		for _, child := range t.Children {
			if err := c.checkItem(child, filePath); err != nil {
				return err
			}
		}
		return nil

	case *item.Parallel:
		for _, child := range t.Children {
			if err := c.checkItem(child, filePath); err != nil {
				return err
			}
		}
		return nil

	case *item.Tree:
		completePath := filepath.Join(t.RootPath, t.RelativePath)
		return c.checkItem(t.Body, completePath)

	case *item.Subtree:
		// Resolution is deferred to the interpreter, which matches the
		// reference against the garden at expansion time.
		return nil

	case *item.BlossomGroup:
		for _, blossom := range t.Blossoms {
			blossom.GroupType = t.GroupType
			blossom.Name = t.ID
			blossom.Values.FillFrom(t.Values)
			if err := c.checkItem(blossom, filePath); err != nil {
				return err
			}
		}
		return nil

	case *item.Blossom:
		t.Path = filePath
		return c.checkBlossom(t)

	case *item.If:
		if err := c.checkItem(t.Then, filePath); err != nil {
			return err
		}
		if t.Else != nil {
			return c.checkItem(t.Else, filePath)
		}
		return nil

	case *item.For:
		return c.checkItem(t.Body, filePath)

	case *item.ForEach:
		return c.checkItem(t.Body, filePath)

	default:
		return sakuraerr.New(sakuraerr.KindValidation, "validator", "while checking items").
			Message("unhandled item kind %s", it.Kind())
	}
}

func (c *checker) checkBlossom(b *item.Blossom) error {
	// A blossom whose type names a resource is a subtree call and needs no
	// registered handler.
	if c.garden.GetResource(b.BlossomType) != nil {
		return nil
	}

	handler, ok := c.registry.Get(b.GroupType, b.BlossomType)
	if !ok {
		return blossomError(b, "unknown blossom-type")
	}

	if err := handler.ValidateInput(b); err != nil {
		return blossomError(b, "%s", err.Error())
	}
	return nil
}

func blossomError(b *item.Blossom, format string, args ...any) *sakuraerr.Table {
	return sakuraerr.New(sakuraerr.KindValidation, "validator", "while checking blossom-items").
		Message(format, args...).
		With("blossom-path", b.Path).
		With("blossom-group-type", b.GroupType).
		With("blossom-type", b.BlossomType).
		With("blossom-name", b.Name)
}

// checkReferenceCycles rejects gardens where a tree transitively references
// itself through subtree or resource calls.
func (c *checker) checkReferenceCycles() error {
	const (
		visiting = 1
		done     = 2
	)
	state := map[*item.Tree]int{}

	var visitTree func(t *item.Tree, name string) error
	var visitItem func(it item.Item) error

	resolve := func(id string) *item.Tree {
		if res := c.garden.GetResource(id); res != nil {
			return res
		}
		return c.garden.GetTree(id, "")
	}

	visitItem = func(it item.Item) error {
		switch t := it.(type) {
		case *item.Sequential:
			for _, child := range t.Children {
				if err := visitItem(child); err != nil {
					return err
				}
			}
		case *item.Parallel:
			for _, child := range t.Children {
				if err := visitItem(child); err != nil {
					return err
				}
			}
		case *item.Tree:
			return visitTree(t, t.ID)
		case *item.Subtree:
			if ref := resolve(t.ReferencedID); ref != nil {
				return visitTree(ref, t.ReferencedID)
			}
		case *item.BlossomGroup:
			for _, b := range t.Blossoms {
				if err := visitItem(b); err != nil {
					return err
				}
			}
		case *item.Blossom:
			if ref := c.garden.GetResource(t.BlossomType); ref != nil {
				return visitTree(ref, t.BlossomType)
			}
		case *item.If:
			if err := visitItem(t.Then); err != nil {
				return err
			}
			if t.Else != nil {
				return visitItem(t.Else)
			}
		case *item.For:
			return visitItem(t.Body)
		case *item.ForEach:
			return visitItem(t.Body)
		}
		return nil
	}

	visitTree = func(t *item.Tree, name string) error {
		switch state[t] {
		case visiting:
			return sakuraerr.New(sakuraerr.KindValidation, "validator", "while checking tree references").
				Message("tree %q transitively references itself", name)
		case done:
			return nil
		}
		state[t] = visiting
		if err := visitItem(t.Body); err != nil {
			return err
		}
		state[t] = done
		return nil
	}

	for _, rel := range sortedKeys(c.garden.Trees) {
		t := c.garden.Trees[rel]
		if err := visitTree(t, t.ID); err != nil {
			return err
		}
	}
	for _, id := range sortedKeys(c.garden.Resources) {
		if err := visitTree(c.garden.Resources[id], id); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
