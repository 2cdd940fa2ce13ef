package value

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// FromGo converts a plain Go value, as produced by a YAML or JSON decoder,
// into a cty value. Heterogeneous slices become tuples and maps become
// objects, which matches how script literals are typed.
func FromGo(v any) (cty.Value, error) {
	switch t := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case bool:
		return cty.BoolVal(t), nil
	case int:
		return cty.NumberIntVal(int64(t)), nil
	case int64:
		return cty.NumberIntVal(t), nil
	case uint64:
		return cty.NumberUIntVal(t), nil
	case float64:
		return cty.NumberFloatVal(t), nil
	case string:
		return cty.StringVal(t), nil
	case []any:
		if len(t) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, 0, len(t))
		for i, ev := range t {
			cv, err := FromGo(ev)
			if err != nil {
				return cty.NilVal, fmt.Errorf("element %d: %w", i, err)
			}
			elems = append(elems, cv)
		}
		return cty.TupleVal(elems), nil
	case map[string]any:
		if len(t) == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, len(t))
		for k, ev := range t {
			cv, err := FromGo(ev)
			if err != nil {
				return cty.NilVal, fmt.Errorf("key %q: %w", k, err)
			}
			attrs[k] = cv
		}
		return cty.ObjectVal(attrs), nil
	default:
		return cty.NilVal, fmt.Errorf("unsupported value type %T", v)
	}
}

// EnvironmentFromGo converts a decoded map into an Environment.
func EnvironmentFromGo(m map[string]any) (Environment, error) {
	env := make(Environment, len(m))
	for k, v := range m {
		cv, err := FromGo(v)
		if err != nil {
			return nil, fmt.Errorf("value for %q: %w", k, err)
		}
		env[k] = cv
	}
	return env, nil
}

// WholeNumber extracts an int64 from a number value, failing when the value
// is not a number or has a fractional part.
func WholeNumber(v cty.Value) (int64, error) {
	if v.IsNull() || v.Type() != cty.Number {
		return 0, fmt.Errorf("expected a number, got %s", typeName(v))
	}
	bf := v.AsBigFloat()
	if !bf.IsInt() {
		return 0, fmt.Errorf("expected a whole number, got %s", bf.Text('g', -1))
	}
	i, _ := bf.Int64()
	return i, nil
}

// Bool extracts a native bool, failing on anything but a non-null cty.Bool.
func Bool(v cty.Value) (bool, error) {
	if v.IsNull() || v.Type() != cty.Bool {
		return false, fmt.Errorf("expected a bool, got %s", typeName(v))
	}
	return v.True(), nil
}

func typeName(v cty.Value) string {
	if v.IsNull() {
		return "null"
	}
	return v.Type().FriendlyName()
}
