package sakuraerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableRendering(t *testing.T) {
	err := New(KindValidation, "validator", "while checking blossom-items").
		Message("unknown blossom-type").
		With("blossom-type", "bar")

	out := err.Error()
	assert.Contains(t, out, "ERROR (validation)")
	assert.Contains(t, out, "component:")
	assert.Contains(t, out, "validator")
	assert.Contains(t, out, "unknown blossom-type")
	assert.Contains(t, out, "bar")
}

func TestTableRowOrder(t *testing.T) {
	err := New(KindRuntime, "interpreter", "src").
		Message("boom").
		With("extra", "detail")

	rows := err.Rows()
	require.Len(t, rows, 4)
	assert.Equal(t, "component", rows[0].Key)
	assert.Equal(t, "source", rows[1].Key)
	assert.Equal(t, "message", rows[2].Key)
	assert.Equal(t, "extra", rows[3].Key)
}

func TestTableGet(t *testing.T) {
	err := New(KindLink, "garden", "src").Message("missing")

	component, ok := err.Get("component")
	require.True(t, ok)
	assert.Equal(t, "garden", component)

	_, ok = err.Get("nope")
	assert.False(t, ok)
}

func TestTableSurvivesWrapping(t *testing.T) {
	inner := New(KindParse, "parser", "src").Message("bad token")
	wrapped := fmt.Errorf("loading failed: %w", inner)

	var table *Table
	require.True(t, errors.As(wrapped, &table))
	assert.Equal(t, KindParse, table.Kind)
}

func TestKindStrings(t *testing.T) {
	assert.Equal(t, "path", KindPath.String())
	assert.Equal(t, "parse", KindParse.String())
	assert.Equal(t, "link", KindLink.String())
	assert.Equal(t, "validation", KindValidation.String())
	assert.Equal(t, "runtime", KindRuntime.String())
}

func TestMultiLineValueIndents(t *testing.T) {
	err := New(KindRuntime, "interpreter", "src").
		With("message", "line one\nline two")

	out := err.Error()
	assert.Contains(t, out, "line one")
	assert.Contains(t, out, "line two")
}
