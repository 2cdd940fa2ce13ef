// Package item defines the intermediate representation of a parsed script:
// a tree of items over which the validator and the interpreter operate.
//
// Items form a closed sum type. Value-bearing fields hold raw
// hcl.Expression instances; evaluation is deferred until execution so that
// a value can reference names that only exist in the environment of the
// enclosing loop or tree call. This mirrors how step arguments stay
// unevaluated in the config model until the executor resolves them.
package item

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Kind tags the variant of an Item.
type Kind int

const (
	KindBlossom Kind = iota
	KindBlossomGroup
	KindTree
	KindSubtree
	KindSequential
	KindParallel
	KindIf
	KindFor
	KindForEach
)

func (k Kind) String() string {
	switch k {
	case KindBlossom:
		return "blossom"
	case KindBlossomGroup:
		return "blossom-group"
	case KindTree:
		return "tree"
	case KindSubtree:
		return "subtree"
	case KindSequential:
		return "sequential"
	case KindParallel:
		return "parallel"
	case KindIf:
		return "if"
	case KindFor:
		return "for"
	case KindForEach:
		return "for-each"
	default:
		return "invalid"
	}
}

// Item is the closed interface over all node variants.
type Item interface {
	Kind() Kind
	// Copy returns a deep copy of the item. Expressions are shared (they
	// are read-only after parsing); environments and outputs are not.
	Copy() Item
}

// Blossom is a single action invocation, the leaf of the execution tree.
type Blossom struct {
	// GroupType and Name are stamped from the enclosing group before
	// validation and execution.
	GroupType string
	Name      string
	// BlossomType is the call target: a handler name within the group, or
	// the id of a garden resource.
	BlossomType string
	// Path is the source file the blossom was parsed from, recorded by the
	// validator for error messages.
	Path   string
	Values Assignments
	// Output is written only by the worker executing this blossom.
	Output cty.Value
}

func (b *Blossom) Kind() Kind { return KindBlossom }

func (b *Blossom) Copy() Item {
	cp := *b
	cp.Values = b.Values.Copy()
	cp.Output = cty.NilVal
	return &cp
}

// BlossomGroup is a named cluster of blossom calls sharing a group type and
// a set of default values.
type BlossomGroup struct {
	GroupType     string
	ID            string
	NameHierarchy []string
	Values        Assignments
	Blossoms      []*Blossom
}

func (g *BlossomGroup) Kind() Kind { return KindBlossomGroup }

func (g *BlossomGroup) Copy() Item {
	cp := *g
	cp.NameHierarchy = append([]string(nil), g.NameHierarchy...)
	cp.Values = g.Values.Copy()
	cp.Blossoms = make([]*Blossom, len(g.Blossoms))
	for i, b := range g.Blossoms {
		cp.Blossoms[i] = b.Copy().(*Blossom)
	}
	return &cp
}

// Tree is a reusable script unit parsed from one source file. Its declared
// values are the parameters a caller may override.
type Tree struct {
	RootPath     string
	RelativePath string
	ID           string
	Values       Assignments
	Body         Item
}

func (t *Tree) Kind() Kind { return KindTree }

func (t *Tree) Copy() Item {
	cp := *t
	cp.Values = t.Values.Copy()
	if t.Body != nil {
		cp.Body = t.Body.Copy()
	}
	return &cp
}

// Subtree is an un-inlined reference to another tree, resolved by id
// through the garden at execution time.
type Subtree struct {
	ReferencedID string
	Values       Assignments
}

func (s *Subtree) Kind() Kind { return KindSubtree }

func (s *Subtree) Copy() Item {
	cp := *s
	cp.Values = s.Values.Copy()
	return &cp
}

// Sequential executes its children in order, stopping at the first error.
type Sequential struct {
	Children []Item
}

func (s *Sequential) Kind() Kind { return KindSequential }

func (s *Sequential) Copy() Item {
	cp := &Sequential{Children: make([]Item, len(s.Children))}
	for i, c := range s.Children {
		cp.Children[i] = c.Copy()
	}
	return cp
}

// Parallel executes its children concurrently and waits for all of them.
type Parallel struct {
	Children []Item
}

func (p *Parallel) Kind() Kind { return KindParallel }

func (p *Parallel) Copy() Item {
	cp := &Parallel{Children: make([]Item, len(p.Children))}
	for i, c := range p.Children {
		cp.Children[i] = c.Copy()
	}
	return cp
}

// If branches on a boolean expression over the environment. Else may be nil.
type If struct {
	Condition hcl.Expression
	Then      Item
	Else      Item
}

func (i *If) Kind() Kind { return KindIf }

func (i *If) Copy() Item {
	cp := *i
	if i.Then != nil {
		cp.Then = i.Then.Copy()
	}
	if i.Else != nil {
		cp.Else = i.Else.Copy()
	}
	return &cp
}

// For is an integer range loop over the half-open interval [Start, End).
type For struct {
	Var   string
	Start hcl.Expression
	End   hcl.Expression
	Body  Item
}

func (f *For) Kind() Kind { return KindFor }

func (f *For) Copy() Item {
	cp := *f
	if f.Body != nil {
		cp.Body = f.Body.Copy()
	}
	return &cp
}

// ForEach iterates an array value, binding Var to each element in turn.
type ForEach struct {
	Var      string
	Iterable hcl.Expression
	Body     Item
}

func (f *ForEach) Kind() Kind { return KindForEach }

func (f *ForEach) Copy() Item {
	cp := *f
	if f.Body != nil {
		cp.Body = f.Body.Copy()
	}
	return &cp
}
