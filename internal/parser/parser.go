// Package parser turns script source text into an item tree.
//
// The surface syntax is HCL: a file holds exactly one `tree "<id>"` block
// whose body mixes parameter attributes with nested control-flow blocks.
// All value positions stay unevaluated hcl.Expression instances; the
// interpreter resolves them against the environment at execution time.
package parser

import (
	"fmt"
	"os"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"

	"github.com/sakura-flow/sakura/internal/item"
)

// ParseFile reads and parses a single script file.
func ParseFile(path string) (*item.Tree, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script file %s: %w", path, err)
	}
	return Parse(path, src)
}

// Parse parses script source into a tree. The filename is used for
// diagnostics only.
func Parse(filename string, src []byte) (*item.Tree, error) {
	hclParser := hclparse.NewParser()
	file, diags := hclParser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, parseError(filename, src, diags)
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("unexpected body type for %s", filename)
	}

	var treeBlock *hclsyntax.Block
	for _, block := range body.Blocks {
		if block.Type != "tree" {
			return nil, syntaxError(filename, block.TypeRange,
				"only \"tree\" blocks are allowed at the top level, got %q", block.Type)
		}
		if treeBlock != nil {
			return nil, syntaxError(filename, block.TypeRange,
				"a script file must contain exactly one \"tree\" block")
		}
		treeBlock = block
	}
	if treeBlock == nil {
		return nil, syntaxError(filename, body.SrcRange,
			"a script file must contain a \"tree\" block")
	}
	if len(body.Attributes) > 0 {
		attr := firstAttribute(body.Attributes)
		return nil, syntaxError(filename, attr.SrcRange,
			"attributes are not allowed outside the \"tree\" block")
	}

	return parseTree(filename, treeBlock)
}

func parseTree(filename string, block *hclsyntax.Block) (*item.Tree, error) {
	if len(block.Labels) != 1 {
		return nil, syntaxError(filename, block.TypeRange,
			"a \"tree\" block needs exactly one label: the tree id")
	}

	values := attributeAssignments(block.Body)
	children, err := parseContainerBlocks(filename, block.Body)
	if err != nil {
		return nil, err
	}

	return &item.Tree{
		ID:     block.Labels[0],
		Values: values,
		Body:   wrapSequential(children),
	}, nil
}

// parseContainerBlocks parses the nested blocks of a container body into
// items, preserving source order and rejecting duplicate child ids.
func parseContainerBlocks(filename string, body *hclsyntax.Body) ([]item.Item, error) {
	var children []item.Item
	seenIDs := map[string]hcl.Range{}

	for _, block := range body.Blocks {
		child, err := parseItemBlock(filename, block)
		if err != nil {
			return nil, err
		}

		if id := childID(child); id != "" {
			if prev, dup := seenIDs[id]; dup {
				return nil, syntaxError(filename, block.TypeRange,
					"duplicate child id %q, first defined at %s", id, prev.String())
			}
			seenIDs[id] = block.TypeRange
		}
		children = append(children, child)
	}

	return children, nil
}

func childID(it item.Item) string {
	if g, ok := it.(*item.BlossomGroup); ok {
		return g.ID
	}
	return ""
}

func parseItemBlock(filename string, block *hclsyntax.Block) (item.Item, error) {
	switch block.Type {
	case "seq":
		return parseSeq(filename, block)
	case "parallel":
		return parseParallel(filename, block)
	case "blossom_group":
		return parseBlossomGroup(filename, block)
	case "subtree":
		return parseSubtree(filename, block)
	case "if":
		return parseIf(filename, block)
	case "for":
		return parseFor(filename, block)
	case "for_each":
		return parseForEach(filename, block)
	default:
		return nil, syntaxError(filename, block.TypeRange,
			"unknown block type %q", block.Type)
	}
}

func parseSeq(filename string, block *hclsyntax.Block) (item.Item, error) {
	if err := rejectAttributes(filename, block); err != nil {
		return nil, err
	}
	children, err := parseContainerBlocks(filename, block.Body)
	if err != nil {
		return nil, err
	}
	return &item.Sequential{Children: children}, nil
}

func parseParallel(filename string, block *hclsyntax.Block) (item.Item, error) {
	if err := rejectAttributes(filename, block); err != nil {
		return nil, err
	}
	children, err := parseContainerBlocks(filename, block.Body)
	if err != nil {
		return nil, err
	}
	return &item.Parallel{Children: children}, nil
}

func parseBlossomGroup(filename string, block *hclsyntax.Block) (item.Item, error) {
	if len(block.Labels) != 2 {
		return nil, syntaxError(filename, block.TypeRange,
			"a \"blossom_group\" block needs two labels: the group type and the group id")
	}

	group := &item.BlossomGroup{
		GroupType: block.Labels[0],
		ID:        block.Labels[1],
		Values:    attributeAssignments(block.Body),
	}

	for _, inner := range block.Body.Blocks {
		if inner.Type != "blossom" {
			return nil, syntaxError(filename, inner.TypeRange,
				"a \"blossom_group\" may only contain \"blossom\" blocks, got %q", inner.Type)
		}
		if len(inner.Labels) != 1 {
			return nil, syntaxError(filename, inner.TypeRange,
				"a \"blossom\" block needs exactly one label: the blossom type")
		}
		if len(inner.Body.Blocks) > 0 {
			return nil, syntaxError(filename, inner.Body.Blocks[0].TypeRange,
				"a \"blossom\" block may not contain nested blocks")
		}
		group.Blossoms = append(group.Blossoms, &item.Blossom{
			BlossomType: inner.Labels[0],
			Values:      attributeAssignments(inner.Body),
		})
	}

	return group, nil
}

func parseSubtree(filename string, block *hclsyntax.Block) (item.Item, error) {
	if len(block.Labels) != 1 {
		return nil, syntaxError(filename, block.TypeRange,
			"a \"subtree\" block needs exactly one label: the referenced tree id")
	}
	if len(block.Body.Blocks) > 0 {
		return nil, syntaxError(filename, block.Body.Blocks[0].TypeRange,
			"a \"subtree\" block may not contain nested blocks")
	}
	return &item.Subtree{
		ReferencedID: block.Labels[0],
		Values:       attributeAssignments(block.Body),
	}, nil
}

func parseIf(filename string, block *hclsyntax.Block) (item.Item, error) {
	cond, ok := block.Body.Attributes["condition"]
	if !ok {
		return nil, syntaxError(filename, block.TypeRange,
			"an \"if\" block needs a \"condition\" attribute")
	}
	if len(block.Body.Attributes) > 1 {
		return nil, syntaxError(filename, block.TypeRange,
			"an \"if\" block may only have the \"condition\" attribute")
	}

	out := &item.If{Condition: cond.Expr}
	for _, inner := range block.Body.Blocks {
		switch inner.Type {
		case "then":
			if out.Then != nil {
				return nil, syntaxError(filename, inner.TypeRange, "duplicate \"then\" block")
			}
			children, err := parseContainerBlocks(filename, inner.Body)
			if err != nil {
				return nil, err
			}
			out.Then = wrapSequential(children)
		case "else":
			if out.Else != nil {
				return nil, syntaxError(filename, inner.TypeRange, "duplicate \"else\" block")
			}
			children, err := parseContainerBlocks(filename, inner.Body)
			if err != nil {
				return nil, err
			}
			out.Else = wrapSequential(children)
		default:
			return nil, syntaxError(filename, inner.TypeRange,
				"an \"if\" block may only contain \"then\" and \"else\" blocks, got %q", inner.Type)
		}
	}
	if out.Then == nil {
		return nil, syntaxError(filename, block.TypeRange,
			"an \"if\" block needs a \"then\" block")
	}
	return out, nil
}

func parseFor(filename string, block *hclsyntax.Block) (item.Item, error) {
	if len(block.Labels) != 1 {
		return nil, syntaxError(filename, block.TypeRange,
			"a \"for\" block needs exactly one label: the loop variable")
	}
	start, ok := block.Body.Attributes["start"]
	if !ok {
		return nil, syntaxError(filename, block.TypeRange, "a \"for\" block needs a \"start\" attribute")
	}
	end, ok := block.Body.Attributes["end"]
	if !ok {
		return nil, syntaxError(filename, block.TypeRange, "a \"for\" block needs an \"end\" attribute")
	}

	body, err := parseDoBlock(filename, block)
	if err != nil {
		return nil, err
	}
	return &item.For{
		Var:   block.Labels[0],
		Start: start.Expr,
		End:   end.Expr,
		Body:  body,
	}, nil
}

func parseForEach(filename string, block *hclsyntax.Block) (item.Item, error) {
	if len(block.Labels) != 1 {
		return nil, syntaxError(filename, block.TypeRange,
			"a \"for_each\" block needs exactly one label: the loop variable")
	}
	items, ok := block.Body.Attributes["items"]
	if !ok {
		return nil, syntaxError(filename, block.TypeRange,
			"a \"for_each\" block needs an \"items\" attribute")
	}

	body, err := parseDoBlock(filename, block)
	if err != nil {
		return nil, err
	}
	return &item.ForEach{
		Var:      block.Labels[0],
		Iterable: items.Expr,
		Body:     body,
	}, nil
}

func parseDoBlock(filename string, block *hclsyntax.Block) (item.Item, error) {
	var do *hclsyntax.Block
	for _, inner := range block.Body.Blocks {
		if inner.Type != "do" {
			return nil, syntaxError(filename, inner.TypeRange,
				"a %q block may only contain a \"do\" block, got %q", block.Type, inner.Type)
		}
		if do != nil {
			return nil, syntaxError(filename, inner.TypeRange, "duplicate \"do\" block")
		}
		do = inner
	}
	if do == nil {
		return nil, syntaxError(filename, block.TypeRange,
			"a %q block needs a \"do\" block", block.Type)
	}
	children, err := parseContainerBlocks(filename, do.Body)
	if err != nil {
		return nil, err
	}
	return wrapSequential(children), nil
}

// attributeAssignments collects the bare attributes of a body in source
// order. hclsyntax stores attributes in a map, so ordering is recovered
// from the source ranges.
func attributeAssignments(body *hclsyntax.Body) item.Assignments {
	attrs := make([]*hclsyntax.Attribute, 0, len(body.Attributes))
	for _, attr := range body.Attributes {
		attrs = append(attrs, attr)
	}
	sort.Slice(attrs, func(i, j int) bool {
		return attrs[i].SrcRange.Start.Byte < attrs[j].SrcRange.Start.Byte
	})

	out := make(item.Assignments, 0, len(attrs))
	for _, attr := range attrs {
		out = append(out, item.Assignment{Key: attr.Name, Expr: attr.Expr})
	}
	return out
}

func rejectAttributes(filename string, block *hclsyntax.Block) error {
	if len(block.Body.Attributes) > 0 {
		attr := firstAttribute(block.Body.Attributes)
		return syntaxError(filename, attr.SrcRange,
			"a %q block may not have attributes", block.Type)
	}
	return nil
}

func firstAttribute(attrs hclsyntax.Attributes) *hclsyntax.Attribute {
	var first *hclsyntax.Attribute
	for _, attr := range attrs {
		if first == nil || attr.SrcRange.Start.Byte < first.SrcRange.Start.Byte {
			first = attr
		}
	}
	return first
}

// wrapSequential turns a child list into a single body item. A lone
// container child is used directly; everything else gets an implicit
// sequential wrapper.
func wrapSequential(children []item.Item) item.Item {
	if len(children) == 1 {
		switch children[0].(type) {
		case *item.Sequential, *item.Parallel:
			return children[0]
		}
	}
	return &item.Sequential{Children: children}
}
