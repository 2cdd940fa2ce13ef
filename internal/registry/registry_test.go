package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakura-flow/sakura/internal/item"
	"github.com/sakura-flow/sakura/internal/value"
)

type nopHandler struct{ id int }

func (h *nopHandler) ValidateInput(it *item.Blossom) error { return nil }

func (h *nopHandler) Execute(ctx context.Context, it *item.Blossom, values value.Environment) error {
	return nil
}

func TestRegisterAndGet(t *testing.T) {
	r := New()
	assert.Equal(t, 0, r.Len())

	h := &nopHandler{id: 1}
	require.True(t, r.Register("special", "print", h))
	assert.Equal(t, 1, r.Len())

	got, ok := r.Get("special", "print")
	require.True(t, ok)
	assert.Same(t, h, got)

	assert.True(t, r.Exists("special", "print"))
	assert.False(t, r.Exists("special", "other"))
	assert.False(t, r.Exists("other", "print"))
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := New()
	first := &nopHandler{id: 1}
	second := &nopHandler{id: 2}

	require.True(t, r.Register("special", "print", first))
	assert.False(t, r.Register("special", "print", second))

	// The first registration is kept.
	got, ok := r.Get("special", "print")
	require.True(t, ok)
	assert.Same(t, first, got)
}

func TestSameNameDifferentGroup(t *testing.T) {
	r := New()
	require.True(t, r.Register("a", "x", &nopHandler{id: 1}))
	require.True(t, r.Register("b", "x", &nopHandler{id: 2}))
	assert.Equal(t, 2, r.Len())
}
