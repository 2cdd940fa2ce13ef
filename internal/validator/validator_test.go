package validator

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakura-flow/sakura/internal/garden"
	"github.com/sakura-flow/sakura/internal/item"
	"github.com/sakura-flow/sakura/internal/parser"
	"github.com/sakura-flow/sakura/internal/registry"
	"github.com/sakura-flow/sakura/internal/sakuraerr"
	"github.com/sakura-flow/sakura/internal/value"
)

type stubHandler struct {
	required []string
}

func (h *stubHandler) ValidateInput(it *item.Blossom) error {
	for _, key := range h.required {
		if !it.Values.Has(key) {
			return fmt.Errorf("missing required value %q", key)
		}
	}
	return nil
}

func (h *stubHandler) Execute(ctx context.Context, it *item.Blossom, values value.Environment) error {
	return nil
}

func gardenWithTree(t *testing.T, src string) *garden.Garden {
	t.Helper()
	tree, err := parser.Parse("root.sakura", []byte(src))
	require.NoError(t, err)
	tree.RelativePath = "root.sakura"
	tree.RootPath = "/scripts"

	g := garden.New()
	g.RootPath = "/scripts"
	g.Trees["root.sakura"] = tree
	return g
}

func TestCheckAllAcceptsKnownBlossoms(t *testing.T) {
	g := gardenWithTree(t, `
tree "root" {
  blossom_group "special" "g" {
    blossom "print" {
      text = "hi"
    }
  }
}`)
	reg := registry.New()
	require.True(t, reg.Register("special", "print", &stubHandler{}))

	require.NoError(t, CheckAll(context.Background(), g, reg))
}

func TestCheckAllRejectsUnknownBlossom(t *testing.T) {
	g := gardenWithTree(t, `
tree "root" {
  blossom_group "foo" "g1" {
    blossom "bar" {}
  }
}`)
	reg := registry.New()

	err := CheckAll(context.Background(), g, reg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown blossom-type")
	assert.Contains(t, err.Error(), "bar")

	var table *sakuraerr.Table
	require.ErrorAs(t, err, &table)
	assert.Equal(t, sakuraerr.KindValidation, table.Kind)
	blossomType, _ := table.Get("blossom-type")
	assert.Equal(t, "bar", blossomType)
	path, _ := table.Get("blossom-path")
	assert.Equal(t, "/scripts/root.sakura", path)
}

func TestCheckAllDelegatesToHandlerValidation(t *testing.T) {
	g := gardenWithTree(t, `
tree "root" {
  blossom_group "special" "g" {
    blossom "print" {}
  }
}`)
	reg := registry.New()
	require.True(t, reg.Register("special", "print", &stubHandler{required: []string{"text"}}))

	err := CheckAll(context.Background(), g, reg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required value")
}

func TestCheckAllGroupFillSatisfiesHandler(t *testing.T) {
	g := gardenWithTree(t, `
tree "root" {
  blossom_group "special" "g" {
    text = "group default"

    blossom "print" {}
  }
}`)
	reg := registry.New()
	require.True(t, reg.Register("special", "print", &stubHandler{required: []string{"text"}}))

	// The group default is filled into the blossom before validation.
	require.NoError(t, CheckAll(context.Background(), g, reg))
}

func TestCheckAllAcceptsResourceCalls(t *testing.T) {
	g := gardenWithTree(t, `
tree "root" {
  blossom_group "anything" "g" {
    blossom "helper" {}
  }
}`)
	require.NoError(t, g.AddResource(context.Background(), `tree "helper" {}`, "helper.sakura"))

	// No handler registered: the call resolves against the resource.
	require.NoError(t, CheckAll(context.Background(), g, registry.New()))
}

func TestCheckAllWalksControlFlow(t *testing.T) {
	g := gardenWithTree(t, `
tree "root" {
  if {
    condition = true
    then {
      blossom_group "foo" "a" {
        blossom "bad" {}
      }
    }
  }
}`)

	err := CheckAll(context.Background(), g, registry.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown blossom-type")
}

func TestCheckAllRejectsReferenceCycles(t *testing.T) {
	g := garden.New()
	ctx := context.Background()
	require.NoError(t, g.AddResource(ctx, `tree "a" {
  subtree "b" {}
}`, "a.sakura"))
	require.NoError(t, g.AddResource(ctx, `tree "b" {
  subtree "a" {}
}`, "b.sakura"))

	err := CheckAll(ctx, g, registry.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "references itself")
}

func TestCheckAllAllowsDiamondReferences(t *testing.T) {
	g := garden.New()
	ctx := context.Background()
	require.NoError(t, g.AddResource(ctx, `tree "shared" {}`, "shared.sakura"))
	require.NoError(t, g.AddResource(ctx, `tree "left" {
  subtree "shared" {}
}`, "left.sakura"))
	require.NoError(t, g.AddResource(ctx, `tree "right" {
  subtree "shared" {}
}`, "right.sakura"))

	require.NoError(t, CheckAll(ctx, g, registry.New()))
}
