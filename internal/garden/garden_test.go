package garden

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestAddTreeDiscoversDirectory(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"root.sakura": `tree "root" {
  blossom_group "special" "g" {
    blossom "print" {}
  }
}`,
		"sub/other.sakura":    `tree "other" {}`,
		"templates/hello.txt": "Hello ${name}!",
		"files/blob.bin":      "\x00\x01\x02",
		"templates/notes.md":  "plain",
	})

	g := New()
	require.NoError(t, g.AddTree(context.Background(), filepath.Join(dir, "root.sakura")))

	assert.Equal(t, dir, g.RootPath)
	assert.Len(t, g.Trees, 2)

	root := g.GetTree("root.sakura", dir)
	require.NotNil(t, root)
	assert.Equal(t, "root", root.ID)
	assert.Equal(t, "root.sakura", root.RelativePath)

	other := g.GetTree("sub/other.sakura", "")
	require.NotNil(t, other)
	assert.Equal(t, "other", other.ID)

	tmpl, ok := g.GetTemplate("templates/hello.txt")
	require.True(t, ok)
	assert.Equal(t, "Hello ${name}!", tmpl)
	_, ok = g.GetTemplate("templates/notes.md")
	assert.True(t, ok)

	blob, ok := g.GetFile("files/blob.bin")
	require.True(t, ok)
	assert.Equal(t, []byte{0, 1, 2}, blob)
}

func TestAddTreeIsIdempotent(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"root.sakura": `tree "root" {}`,
	})

	g := New()
	ctx := context.Background()
	require.NoError(t, g.AddTree(ctx, filepath.Join(dir, "root.sakura")))
	first := g.GetTree("root.sakura", "")

	require.NoError(t, g.AddTree(ctx, filepath.Join(dir, "root.sakura")))
	assert.Same(t, first, g.GetTree("root.sakura", ""))
	assert.Len(t, g.Trees, 1)
}

func TestAddTreeRejectsMissingPath(t *testing.T) {
	g := New()
	err := g.AddTree(context.Background(), filepath.Join(t.TempDir(), "nope.sakura"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a regular file")
}

func TestAddTreeFailsOnBrokenSibling(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"root.sakura":   `tree "root" {}`,
		"broken.sakura": "tree \"broken\" {\n  bogus {}\n}",
	})

	g := New()
	err := g.AddTree(context.Background(), filepath.Join(dir, "root.sakura"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown block type")
}

func TestAddResource(t *testing.T) {
	g := New()
	require.NoError(t, g.AddResource(context.Background(), `tree "helper" {
  x = 1
}`, "helper.sakura"))

	res := g.GetResource("helper")
	require.NotNil(t, res)
	assert.Equal(t, []string{"x"}, res.Values.Keys())

	assert.Nil(t, g.GetResource("unknown"))
}

func TestGetTreeChecksRootPath(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"root.sakura": `tree "root" {}`,
	})

	g := New()
	require.NoError(t, g.AddTree(context.Background(), filepath.Join(dir, "root.sakura")))

	assert.NotNil(t, g.GetTree("root.sakura", dir))
	assert.NotNil(t, g.GetTree("root.sakura", ""))
	assert.Nil(t, g.GetTree("root.sakura", "/somewhere/else"))
}

func TestRelativePath(t *testing.T) {
	g := New()
	g.RootPath = "/work/scripts"

	rel := g.RelativePath("/work/scripts/sub/a.sakura", "templates/t.txt")
	assert.Equal(t, "sub/templates/t.txt", rel)

	rel = g.RelativePath("/work/scripts/a.sakura", "files/data.bin")
	assert.Equal(t, "files/data.bin", rel)
}
