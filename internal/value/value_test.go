package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestDeepCopy(t *testing.T) {
	env := Environment{
		"a": cty.NumberIntVal(1),
		"b": cty.StringVal("x"),
	}

	cp := env.DeepCopy()
	require.Equal(t, env, cp)

	cp["a"] = cty.NumberIntVal(2)
	cp["c"] = cty.True
	assert.True(t, env["a"].RawEquals(cty.NumberIntVal(1)))
	assert.NotContains(t, env, "c")
}

func TestMergeReplace(t *testing.T) {
	dst := Environment{"a": cty.NumberIntVal(1), "b": cty.NumberIntVal(2)}
	src := Environment{"b": cty.NumberIntVal(20), "c": cty.NumberIntVal(30)}

	Merge(dst, src, Replace)

	assert.True(t, dst["a"].RawEquals(cty.NumberIntVal(1)))
	assert.True(t, dst["b"].RawEquals(cty.NumberIntVal(20)))
	assert.True(t, dst["c"].RawEquals(cty.NumberIntVal(30)))
}

func TestMergeOnlyNonExisting(t *testing.T) {
	dst := Environment{"a": cty.NumberIntVal(1)}
	src := Environment{"a": cty.NumberIntVal(10), "b": cty.NumberIntVal(2)}

	Merge(dst, src, OnlyNonExisting)

	// Existing values never change; the key set never shrinks.
	assert.True(t, dst["a"].RawEquals(cty.NumberIntVal(1)))
	assert.True(t, dst["b"].RawEquals(cty.NumberIntVal(2)))
}

func TestMergeOnlyExisting(t *testing.T) {
	dst := Environment{"a": cty.NumberIntVal(1)}
	src := Environment{"a": cty.NumberIntVal(10), "b": cty.NumberIntVal(2)}

	Merge(dst, src, OnlyExisting)

	assert.True(t, dst["a"].RawEquals(cty.NumberIntVal(10)))
	assert.NotContains(t, dst, "b")
}

func TestMergeEmptySourceIsIdentity(t *testing.T) {
	for _, mode := range []MergeMode{Replace, OnlyNonExisting, OnlyExisting} {
		dst := Environment{"a": cty.NumberIntVal(1)}
		Merge(dst, Environment{}, mode)
		assert.Len(t, dst, 1)
		assert.True(t, dst["a"].RawEquals(cty.NumberIntVal(1)))
	}
}

func TestCheckInput(t *testing.T) {
	declared := Environment{"x": cty.NumberIntVal(0), "y": cty.NumberIntVal(0)}

	assert.Empty(t, CheckInput(declared, Environment{}))
	assert.Empty(t, CheckInput(declared, Environment{"x": cty.NumberIntVal(1)}))
	assert.Equal(t, []string{"z"}, CheckInput(declared, Environment{"z": cty.NumberIntVal(1)}))
	assert.Equal(t, []string{"a", "b"},
		CheckInput(declared, Environment{"b": cty.True, "a": cty.True, "x": cty.True}))
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		val  cty.Value
		want string
	}{
		{"null", cty.NullVal(cty.String), "null"},
		{"bool", cty.True, "true"},
		{"int", cty.NumberIntVal(42), "42"},
		{"float", cty.NumberFloatVal(1.5), "1.5"},
		{"string", cty.StringVal("hello"), "hello"},
		{"tuple", cty.TupleVal([]cty.Value{cty.NumberIntVal(1), cty.StringVal("a")}), "[1, a]"},
		{"object", cty.ObjectVal(map[string]cty.Value{
			"b": cty.NumberIntVal(2),
			"a": cty.NumberIntVal(1),
		}), "{a: 1, b: 2}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.val))
		})
	}
}

func TestFromGo(t *testing.T) {
	v, err := FromGo(map[string]any{
		"n":    3,
		"f":    2.5,
		"s":    "txt",
		"b":    true,
		"list": []any{1, "two"},
	})
	require.NoError(t, err)

	obj := v.AsValueMap()
	assert.True(t, obj["n"].RawEquals(cty.NumberIntVal(3)))
	assert.True(t, obj["f"].RawEquals(cty.NumberFloatVal(2.5)))
	assert.True(t, obj["s"].RawEquals(cty.StringVal("txt")))
	assert.True(t, obj["b"].RawEquals(cty.True))
	assert.True(t, obj["list"].RawEquals(cty.TupleVal([]cty.Value{
		cty.NumberIntVal(1), cty.StringVal("two"),
	})))

	_, err = FromGo(struct{}{})
	assert.Error(t, err)
}

func TestWholeNumber(t *testing.T) {
	n, err := WholeNumber(cty.NumberIntVal(7))
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	_, err = WholeNumber(cty.NumberFloatVal(1.5))
	assert.ErrorContains(t, err, "whole number")

	_, err = WholeNumber(cty.StringVal("7"))
	assert.ErrorContains(t, err, "expected a number")
}

func TestBool(t *testing.T) {
	b, err := Bool(cty.True)
	require.NoError(t, err)
	assert.True(t, b)

	_, err = Bool(cty.NumberIntVal(1))
	assert.Error(t, err)

	_, err = Bool(cty.NullVal(cty.Bool))
	assert.Error(t, err)
}
