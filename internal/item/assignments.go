package item

import "github.com/hashicorp/hcl/v2"

// Assignment is one named value of an item, kept as an unevaluated
// expression until execution.
type Assignment struct {
	Key  string
	Expr hcl.Expression
}

// Assignments is an ordered list of named value expressions. Order follows
// the source file and only matters for display; lookups are by key.
type Assignments []Assignment

// Has reports whether a key is present.
func (a Assignments) Has(key string) bool {
	for _, as := range a {
		if as.Key == key {
			return true
		}
	}
	return false
}

// Get returns the expression for a key.
func (a Assignments) Get(key string) (hcl.Expression, bool) {
	for _, as := range a {
		if as.Key == key {
			return as.Expr, true
		}
	}
	return nil, false
}

// Keys returns the keys in source order.
func (a Assignments) Keys() []string {
	keys := make([]string, 0, len(a))
	for _, as := range a {
		keys = append(keys, as.Key)
	}
	return keys
}

// Set replaces the expression for key, appending when absent.
func (a *Assignments) Set(key string, expr hcl.Expression) {
	for i, as := range *a {
		if as.Key == key {
			(*a)[i].Expr = expr
			return
		}
	}
	*a = append(*a, Assignment{Key: key, Expr: expr})
}

// FillFrom appends every assignment of src whose key is not yet present.
// This is the fill-only fan-out from a blossom group into its blossoms: a
// blossom-supplied value always wins over a group default.
func (a *Assignments) FillFrom(src Assignments) {
	for _, as := range src {
		if !a.Has(as.Key) {
			*a = append(*a, as)
		}
	}
}

// Copy returns an independent list. Expressions are shared; they are
// read-only after parsing.
func (a Assignments) Copy() Assignments {
	out := make(Assignments, len(a))
	copy(out, a)
	return out
}
