package command

import (
	"errors"
	"fmt"

	"relaycore/internal/tree"
)

// ArgumentsNodeName is the reserved capture name used by every structured
// command's single argument node. It never collides with literal names,
// so argument payloads can be read generically across commands.
const ArgumentsNodeName = "arguments"

// ErrEmptyParse reports a parse result with no matched nodes. A
// successful parse always matches at least the alias, so hitting this is
// a programming error, not bad user input.
var ErrEmptyParse = errors.New("command: cannot read alias from an empty parse")

// ReadAlias returns the name of the first matched node.
func ReadAlias(res *tree.ParseResults) (string, error) {
	if res == nil || len(res.Nodes) == 0 {
		return "", ErrEmptyParse
	}
	return res.Nodes[0].Name, nil
}

// ReadArguments returns the value captured under the reserved argument
// name, or fallback when the command was invoked bare. A stored value of
// the wrong type is a factory/command mismatch and fails loudly.
func ReadArguments[V any](res *tree.ParseResults, fallback V) (V, error) {
	raw, ok := res.Arguments[ArgumentsNodeName]
	if !ok {
		return fallback, nil
	}
	v, ok := raw.(V)
	if !ok {
		return fallback, fmt.Errorf("command: parsed argument is %T, expected %T", raw, fallback)
	}
	return v, nil
}

// AliasRedirect builds a forwarding stub for a secondary alias: a literal
// that copies the target's permission predicates and executor, and
// forwards parsing to the target's children by identifier without owning
// them. Removing the target later leaves the stub executable on its own.
func AliasRedirect(a *tree.Arena, target tree.NodeID, alias string) (tree.NodeID, error) {
	if a == nil {
		return tree.None, errors.New("command: nil arena")
	}
	if alias == "" {
		return tree.None, errors.New("command: empty alias")
	}
	t, ok := a.Node(target)
	if !ok {
		return tree.None, fmt.Errorf("command: redirect target %d: %w", target, tree.ErrUnknownNode)
	}
	opts := []tree.Option{tree.WithRedirect(target)}
	if exec := t.Executor(); exec != nil {
		opts = append(opts, tree.WithExecutor(exec))
	}
	if req := t.Requires(); req != nil {
		opts = append(opts, tree.WithRequirement(req))
	}
	if req := t.RequiresWithContext(); req != nil {
		opts = append(opts, tree.WithContextRequirement(req))
	}
	return a.NewLiteral(alias, opts...), nil
}

// ArgumentNode builds the single reserved-name capture node for a
// command: a greedy typed capture whose executor delegates to the owning
// alias node's executor.
func ArgumentNode(a *tree.Arena, t tree.ArgumentType, aliasNode tree.NodeID) (tree.NodeID, error) {
	if a == nil {
		return tree.None, errors.New("command: nil arena")
	}
	if t == nil {
		return tree.None, errors.New("command: nil argument type")
	}
	owner, ok := a.Node(aliasNode)
	if !ok {
		return tree.None, fmt.Errorf("command: alias node %d: %w", aliasNode, tree.ErrUnknownNode)
	}
	var opts []tree.Option
	if exec := owner.Executor(); exec != nil {
		opts = append(opts, tree.WithExecutor(exec))
	}
	return a.NewArgument(ArgumentsNodeName, t, opts...), nil
}

// HintingNode mirrors a node subtree into suggestion-only shadow form.
// Executable or redirecting sources are rejected; hints must stay purely
// descriptive.
func HintingNode(a *tree.Arena, id tree.NodeID) (tree.NodeID, error) {
	if a == nil {
		return tree.None, errors.New("command: nil arena")
	}
	return a.CloneAsHint(id)
}
