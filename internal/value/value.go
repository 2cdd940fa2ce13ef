// Package value implements the dynamic value model of the runtime. Values
// are cty values, so an Environment can hold null, bool, number, string,
// list, and object data without a type switch of its own, and copying never
// aliases mutable state because cty values are immutable.
package value

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Environment is the set of named values visible to an item. Environments
// flow from parent to child; a child may shadow entries in its own copy but
// mutations never propagate back up.
type Environment map[string]cty.Value

// NewEnvironment returns an empty environment.
func NewEnvironment() Environment {
	return make(Environment)
}

// DeepCopy returns an independent copy of the environment. The contained
// values are immutable, so copying the map is sufficient.
func (e Environment) DeepCopy() Environment {
	out := make(Environment, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Keys returns the sorted key set.
func (e Environment) Keys() []string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MergeMode selects how Merge treats keys already present in the destination.
type MergeMode int

const (
	// Replace overwrites destination entries with source entries.
	Replace MergeMode = iota
	// OnlyNonExisting inserts a source entry only when the destination has
	// no entry for that key. Used to fan group defaults into blossoms.
	OnlyNonExisting
	// OnlyExisting overwrites a destination entry only when it already
	// exists. Used to apply caller values to a tree's declared parameters.
	OnlyExisting
)

// Merge folds src into dst according to mode.
func Merge(dst, src Environment, mode MergeMode) {
	for k, v := range src {
		_, exists := dst[k]
		switch mode {
		case Replace:
			dst[k] = v
		case OnlyNonExisting:
			if !exists {
				dst[k] = v
			}
		case OnlyExisting:
			if exists {
				dst[k] = v
			}
		}
	}
}

// CheckInput returns the sorted list of keys in supplied that are not
// declared. An empty result means the input is acceptable.
func CheckInput(declared, supplied Environment) []string {
	var unknown []string
	for k := range supplied {
		if _, ok := declared[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// Format renders a value for display. Object keys are sorted so that output
// is stable across runs.
func Format(v cty.Value) string {
	var b strings.Builder
	formatInto(&b, v, 0)
	return b.String()
}

func formatInto(b *strings.Builder, v cty.Value, depth int) {
	if v.IsNull() {
		b.WriteString("null")
		return
	}
	ty := v.Type()
	switch {
	case ty == cty.Bool:
		if v.True() {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case ty == cty.Number:
		bf := v.AsBigFloat()
		b.WriteString(bf.Text('g', -1))
	case ty == cty.String:
		b.WriteString(v.AsString())
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		b.WriteString("[")
		first := true
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			if !first {
				b.WriteString(", ")
			}
			first = false
			formatInto(b, ev, depth+1)
		}
		b.WriteString("]")
	case ty.IsObjectType() || ty.IsMapType():
		vm := v.AsValueMap()
		keys := make([]string, 0, len(vm))
		for k := range vm {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("{")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(b, "%s: ", k)
			formatInto(b, vm[k], depth+1)
		}
		b.WriteString("}")
	default:
		fmt.Fprintf(b, "%v", v)
	}
}
