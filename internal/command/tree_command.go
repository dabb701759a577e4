package command

import (
	"fmt"

	"relaycore/internal/tree"
)

// TreeCommand is the structured command variant: a grammar subtree rooted
// at a literal node matching the command's primary alias. Registration
// attaches the root node to the manager's shared arena; execution runs
// the executor reached by the parse.
type TreeCommand struct {
	arena *tree.Arena
	node  tree.NodeID
}

// NewTreeCommand wraps a fully-built alias node living in the given
// arena. The node's name must equal the primary alias used at
// registration.
func NewTreeCommand(arena *tree.Arena, node tree.NodeID) *TreeCommand {
	return &TreeCommand{arena: arena, node: node}
}

// Kind returns KindTree.
func (c *TreeCommand) Kind() Kind { return KindTree }

// Node returns the identifier of the command's root alias node.
func (c *TreeCommand) Node() tree.NodeID { return c.node }

// HasPermission evaluates the matched alias node's plain and
// context-aware predicates. A redirect stub carries copies of the
// canonical node's predicates, so aliases gate identically.
func (c *TreeCommand) HasPermission(inv Invocation) bool {
	ti, ok := inv.(*TreeInvocation)
	if !ok {
		return false
	}
	res := ti.Results()
	if len(res.Nodes) == 0 {
		return false
	}
	n, ok := c.arena.Node(res.Nodes[0].ID)
	if !ok {
		return false
	}
	return n.CanUse(inv.Source()) && n.CanUseWithContext(inv.Source(), res)
}

// Execute runs the executor of the last executable node the parse
// reached. A parse that reached no executable node is malformed input.
func (c *TreeCommand) Execute(inv Invocation) error {
	ti, ok := inv.(*TreeInvocation)
	if !ok {
		return fmt.Errorf("command: tree command got %T invocation", inv)
	}
	res := ti.Results()
	if res.Exec == nil {
		return &tree.SyntaxError{Input: res.Line, Msg: "incomplete command"}
	}
	return res.Exec(res)
}

// Suggest completes the partial line against the grammar subtree,
// including hint shadows.
func (c *TreeCommand) Suggest(inv Invocation) ([]string, error) {
	ti, ok := inv.(*TreeInvocation)
	if !ok {
		return nil, fmt.Errorf("command: tree command got %T invocation", inv)
	}
	return c.arena.Suggest(inv.Source(), ti.Results().Line), nil
}
