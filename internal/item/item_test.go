package item

import (
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func expr(t *testing.T, src string) hcl.Expression {
	t.Helper()
	e, diags := hclsyntax.ParseExpression([]byte(src), "test", hcl.InitialPos)
	require.False(t, diags.HasErrors(), "parse %q: %s", src, diags.Error())
	return e
}

func TestAssignmentsFillFrom(t *testing.T) {
	child := Assignments{{Key: "a", Expr: expr(t, "1")}}
	group := Assignments{
		{Key: "a", Expr: expr(t, "10")},
		{Key: "b", Expr: expr(t, "2")},
	}

	child.FillFrom(group)

	// The child value wins; only missing keys are filled.
	require.Equal(t, []string{"a", "b"}, child.Keys())
	aExpr, ok := child.Get("a")
	require.True(t, ok)
	v, _ := aExpr.Value(nil)
	assert.True(t, v.RawEquals(cty.NumberIntVal(1)))
}

func TestAssignmentsSet(t *testing.T) {
	var a Assignments
	a.Set("x", expr(t, "1"))
	a.Set("y", expr(t, "2"))
	a.Set("x", expr(t, "3"))

	require.Equal(t, []string{"x", "y"}, a.Keys())
	xExpr, _ := a.Get("x")
	v, _ := xExpr.Value(nil)
	assert.True(t, v.RawEquals(cty.NumberIntVal(3)))
}

func TestBlossomCopyIsIndependent(t *testing.T) {
	b := &Blossom{
		GroupType:   "special",
		Name:        "n",
		BlossomType: "print",
		Values:      Assignments{{Key: "a", Expr: expr(t, "1")}},
		Output:      cty.StringVal("old"),
	}

	cp := b.Copy().(*Blossom)
	assert.Equal(t, cty.NilVal, cp.Output)

	cp.Values.Set("b", expr(t, "2"))
	assert.False(t, b.Values.Has("b"))
}

func TestTreeCopyIsDeep(t *testing.T) {
	tree := &Tree{
		ID:     "root",
		Values: Assignments{{Key: "x", Expr: expr(t, "1")}},
		Body: &Sequential{Children: []Item{
			&BlossomGroup{
				GroupType: "special",
				ID:        "g",
				Blossoms:  []*Blossom{{BlossomType: "print"}},
			},
		}},
	}

	cp := tree.Copy().(*Tree)
	cpSeq := cp.Body.(*Sequential)
	cpGroup := cpSeq.Children[0].(*BlossomGroup)

	origGroup := tree.Body.(*Sequential).Children[0].(*BlossomGroup)
	require.NotSame(t, origGroup, cpGroup)
	require.NotSame(t, origGroup.Blossoms[0], cpGroup.Blossoms[0])

	cpGroup.Blossoms[0].Name = "changed"
	assert.Empty(t, origGroup.Blossoms[0].Name)
}

func TestKindString(t *testing.T) {
	items := map[Item]string{
		&Blossom{}:      "blossom",
		&BlossomGroup{}: "blossom-group",
		&Tree{}:         "tree",
		&Subtree{}:      "subtree",
		&Sequential{}:   "sequential",
		&Parallel{}:     "parallel",
		&If{}:           "if",
		&For{}:          "for",
		&ForEach{}:      "for-each",
	}
	for it, want := range items {
		assert.Equal(t, want, it.Kind().String())
	}
}
