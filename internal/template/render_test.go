package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/sakura-flow/sakura/internal/value"
)

func TestRenderInterpolation(t *testing.T) {
	env := value.Environment{
		"name":  cty.StringVal("world"),
		"count": cty.NumberIntVal(3),
	}

	out, err := Render("greeting", "Hello ${name}, you have ${count} items.", env)
	require.NoError(t, err)
	assert.Equal(t, "Hello world, you have 3 items.", out)
}

func TestRenderPlainText(t *testing.T) {
	out, err := Render("plain", "no interpolation here", nil)
	require.NoError(t, err)
	assert.Equal(t, "no interpolation here", out)
}

func TestRenderUndefinedName(t *testing.T) {
	_, err := Render("bad", "value: ${missing}", value.Environment{})
	require.Error(t, err)
}

func TestRenderBrokenTemplate(t *testing.T) {
	_, err := Render("broken", "open ${", value.Environment{})
	require.Error(t, err)
}
