package runtime

import (
	"context"
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/sakura-flow/sakura/internal/ctxlog"
	"github.com/sakura-flow/sakura/internal/item"
	"github.com/sakura-flow/sakura/internal/sakuraerr"
	"github.com/sakura-flow/sakura/internal/value"
)

// processItem executes one item in the calling worker. The environment is
// owned by the caller; subtree boundaries deep-copy it.
func (rt *Runtime) processItem(ctx context.Context, it item.Item, env value.Environment, hierarchy []string) error {
	if err := ctx.Err(); err != nil {
		return sakuraerr.New(sakuraerr.KindRuntime, "interpreter", "while executing items").
			Message("execution canceled: %v", err)
	}

	switch t := it.(type) {
	case *item.Sequential:
		return rt.spawnSequential(ctx, t.Children, env, hierarchy)

	case *item.Parallel:
		return rt.spawnParallel(ctx, t.Children, "parallel", hierarchy, env)

	case *item.Tree:
		return rt.enterTree(ctx, t, env, hierarchy)

	case *item.Subtree:
		return rt.callTree(ctx, t.ReferencedID, t.Values, env, hierarchy)

	case *item.BlossomGroup:
		return rt.execBlossomGroup(ctx, t, env, hierarchy)

	case *item.Blossom:
		return rt.execBlossom(ctx, t, env, hierarchy)

	case *item.If:
		return rt.execIf(ctx, t, env, hierarchy)

	case *item.For:
		return rt.execFor(ctx, t, env, hierarchy)

	case *item.ForEach:
		return rt.execForEach(ctx, t, env, hierarchy)

	default:
		return sakuraerr.New(sakuraerr.KindRuntime, "interpreter", "while executing items").
			Message("unhandled item kind %s", it.Kind())
	}
}

// enterTree scopes the environment down to the tree's declared parameters:
// defaults are evaluated first, then inherited values override them under
// ONLY_EXISTING so a caller cannot smuggle unknown names across the
// boundary.
func (rt *Runtime) enterTree(ctx context.Context, t *item.Tree, env value.Environment, hierarchy []string) error {
	inner, err := evalAssignments(t.Values, env)
	if err != nil {
		return err
	}
	value.Merge(inner, env, value.OnlyExisting)

	return rt.processItem(ctx, t.Body, inner, extend(hierarchy, t.ID))
}

// callTree resolves a reference by id against the garden's resources, then
// against the trees by relative path, deep-copies the match, and runs it
// with the caller's values applied to the declared parameters. Unknown
// caller keys abort the call.
func (rt *Runtime) callTree(ctx context.Context, ref string, callValues item.Assignments, env value.Environment, hierarchy []string) error {
	resolved := rt.garden.GetResource(ref)
	if resolved == nil {
		resolved = rt.garden.GetTree(ref, "")
	}
	if resolved == nil {
		return sakuraerr.New(sakuraerr.KindLink, "interpreter", "while resolving a subtree call").
			Message("no tree or resource found for id %q", ref)
	}

	cp := resolved.Copy().(*item.Tree)

	caller, err := evalAssignments(callValues, env)
	if err != nil {
		return err
	}
	declared, err := evalAssignments(cp.Values, env)
	if err != nil {
		return err
	}

	if unknown := value.CheckInput(declared, caller); len(unknown) > 0 {
		return sakuraerr.New(sakuraerr.KindValidation, "interpreter", "while resolving a subtree call").
			Message("input-values not valid for tree %q", ref).
			With("unknown-keys", strings.Join(unknown, ", "))
	}
	value.Merge(declared, caller, value.OnlyExisting)

	return rt.processItem(ctx, cp.Body, declared, extend(hierarchy, ref))
}

// execBlossomGroup stamps each child blossom with the group's identity,
// fills the group defaults into it, and runs the children sequentially.
// Parallelism comes only from enclosing parallel blocks.
func (rt *Runtime) execBlossomGroup(ctx context.Context, g *item.BlossomGroup, env value.Environment, hierarchy []string) error {
	g.NameHierarchy = extend(hierarchy, g.ID)
	rt.printer.Print(hierarchyBlock(g.NameHierarchy))

	for _, b := range g.Blossoms {
		b.GroupType = g.GroupType
		b.Name = g.ID
		b.Values.FillFrom(g.Values)

		if err := rt.execBlossom(ctx, b, env, g.NameHierarchy); err != nil {
			return err
		}
	}
	return nil
}

func (rt *Runtime) execBlossom(ctx context.Context, b *item.Blossom, env value.Environment, hierarchy []string) error {
	// A blossom call naming a resource is a subtree call.
	if rt.garden.GetResource(b.BlossomType) != nil {
		return rt.callTree(ctx, b.BlossomType, b.Values, env, hierarchy)
	}

	handler, ok := rt.registry.Get(b.GroupType, b.BlossomType)
	if !ok {
		return sakuraerr.New(sakuraerr.KindRuntime, "interpreter", "while executing a blossom").
			Message("unknown blossom-type").
			With("blossom-group-type", b.GroupType).
			With("blossom-type", b.BlossomType)
	}

	values, err := evalAssignments(b.Values, env)
	if err != nil {
		return err
	}

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Executing blossom.",
		"group", b.GroupType, "type", b.BlossomType, "name", b.Name)

	if err := handler.Execute(ctx, b, values); err != nil {
		return sakuraerr.New(sakuraerr.KindRuntime, "blossom", "while executing a blossom").
			Message("%s", err.Error()).
			With("blossom-path", b.Path).
			With("blossom-group-type", b.GroupType).
			With("blossom-type", b.BlossomType).
			With("blossom-name", b.Name)
	}

	rt.printer.Print(blossomBlock(b, values, hierarchy))

	// The output stays addressable for the rest of the enclosing container
	// under the blossom's name.
	if b.Name != "" && b.Output != cty.NilVal {
		env[b.Name] = b.Output
	}
	return nil
}

func (rt *Runtime) execIf(ctx context.Context, t *item.If, env value.Environment, hierarchy []string) error {
	condVal, err := evalExpr(t.Condition, env)
	if err != nil {
		return err
	}
	boolVal, convErr := convert.Convert(condVal, cty.Bool)
	if convErr != nil || boolVal.IsNull() {
		return sakuraerr.New(sakuraerr.KindRuntime, "interpreter", "while executing an if-branch").
			Message("condition did not evaluate to a bool")
	}

	if boolVal.True() {
		return rt.processItem(ctx, t.Then, env, hierarchy)
	}
	if t.Else != nil {
		return rt.processItem(ctx, t.Else, env, hierarchy)
	}
	return nil
}

func (rt *Runtime) execFor(ctx context.Context, t *item.For, env value.Environment, hierarchy []string) error {
	startVal, err := evalExpr(t.Start, env)
	if err != nil {
		return err
	}
	start, err := value.WholeNumber(startVal)
	if err != nil {
		return forError(t.Var, "start", err)
	}

	endVal, err := evalExpr(t.End, env)
	if err != nil {
		return err
	}
	end, err := value.WholeNumber(endVal)
	if err != nil {
		return forError(t.Var, "end", err)
	}

	for i := start; i < end; i++ {
		loopEnv := env.DeepCopy()
		loopEnv[t.Var] = cty.NumberIntVal(i)
		if err := rt.processItem(ctx, t.Body, loopEnv, hierarchy); err != nil {
			return err
		}
	}
	return nil
}

func (rt *Runtime) execForEach(ctx context.Context, t *item.ForEach, env value.Environment, hierarchy []string) error {
	iterVal, err := evalExpr(t.Iterable, env)
	if err != nil {
		return err
	}
	if iterVal.IsNull() || !iterVal.CanIterateElements() {
		return sakuraerr.New(sakuraerr.KindRuntime, "interpreter", "while executing a for-each loop").
			Message("for-each over %q needs an array value", t.Var)
	}

	// Iteration is sequential even inside a parallel context; fan-out only
	// happens through explicit parallel blocks.
	for it := iterVal.ElementIterator(); it.Next(); {
		_, elem := it.Element()
		loopEnv := env.DeepCopy()
		loopEnv[t.Var] = elem
		if err := rt.processItem(ctx, t.Body, loopEnv, hierarchy); err != nil {
			return err
		}
	}
	return nil
}

// extend copies the hierarchy before appending so sibling executions never
// share a backing array.
func extend(hierarchy []string, name string) []string {
	out := make([]string, len(hierarchy), len(hierarchy)+1)
	copy(out, hierarchy)
	return append(out, name)
}

func forError(varName, bound string, err error) error {
	return sakuraerr.New(sakuraerr.KindRuntime, "interpreter", "while executing a for-loop").
		Message("%s of loop over %q: %v", bound, varName, err)
}

// hierarchyBlock renders the call hierarchy with increasing indentation,
// one name per line.
func hierarchyBlock(hierarchy []string) string {
	var b strings.Builder
	for i, name := range hierarchy {
		b.WriteString(strings.Repeat("   ", i))
		b.WriteString(name)
		b.WriteString("\n")
	}
	return b.String()
}

// blossomBlock renders one blossom execution for the print sink.
func blossomBlock(b *item.Blossom, values value.Environment, hierarchy []string) string {
	var sb strings.Builder
	if len(hierarchy) > 0 {
		sb.WriteString(strings.Join(hierarchy, " / "))
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "blossom: %s (%s/%s)\n", b.Name, b.GroupType, b.BlossomType)

	if len(values) > 0 {
		sb.WriteString("values:\n")
		for _, k := range values.Keys() {
			fmt.Fprintf(&sb, "   %s: %s\n", k, value.Format(values[k]))
		}
	}
	if b.Output != cty.NilVal {
		fmt.Fprintf(&sb, "output:\n   %s\n", value.Format(b.Output))
	}
	return sb.String()
}
