package print

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/sakura-flow/sakura/internal/item"
	"github.com/sakura-flow/sakura/internal/registry"
	"github.com/sakura-flow/sakura/internal/value"
)

func TestRegister(t *testing.T) {
	r := registry.New()
	require.NoError(t, (&Module{}).Register(r))
	require.True(t, r.Exists("special", "print"))
}

func TestExecutePublishesValues(t *testing.T) {
	h := &handler{}
	b := &item.Blossom{}

	err := h.Execute(context.Background(), b, value.Environment{
		"text": cty.StringVal("hi"),
		"n":    cty.NumberIntVal(2),
	})
	require.NoError(t, err)

	obj := b.Output.AsValueMap()
	assert.True(t, obj["text"].RawEquals(cty.StringVal("hi")))
	assert.True(t, obj["n"].RawEquals(cty.NumberIntVal(2)))
}

func TestExecuteEmptyValues(t *testing.T) {
	h := &handler{}
	b := &item.Blossom{}

	require.NoError(t, h.Execute(context.Background(), b, value.Environment{}))
	assert.True(t, b.Output.RawEquals(cty.EmptyObjectVal))
}
