// Package tree implements the grammar-node arena backing structured
// commands: literal and argument nodes indexed by identifier, with
// redirects, requirements, and hint shadows for suggestion display.
//
// Nodes are referenced by NodeID, never by pointer. A redirect stores the
// target's identifier; removing the target invalidates the identifier and
// readers degrade gracefully instead of chasing a dangling reference.
//
// The arena performs no locking of its own. The command manager guards it
// together with the alias table.
package tree

// NodeID identifies a node within an Arena. The zero value is None.
type NodeID uint32

// None is the absent node identifier.
const None NodeID = 0

// Requirement gates a node on the command source.
type Requirement func(source any) bool

// ContextRequirement gates a node on the source plus the parse results so
// far. Used for checks that depend on earlier arguments.
type ContextRequirement func(source any, res *ParseResults) bool

// Executor runs the action attached to a node after a successful parse.
type Executor func(res *ParseResults) error

// Node is a single grammar node. Literal nodes match a fixed token;
// argument nodes capture one typed value through their ArgumentType.
type Node struct {
	id          NodeID
	name        string
	argType     ArgumentType // nil for literals
	exec        Executor
	requires    Requirement
	requiresCtx ContextRequirement
	redirect    NodeID
	hint        bool
	children    []NodeID
	byName      map[string]NodeID
}

// ID returns the node's arena identifier.
func (n *Node) ID() NodeID { return n.id }

// Name returns the literal token or the argument capture name.
func (n *Node) Name() string { return n.name }

// IsArgument reports whether the node captures a typed value.
func (n *Node) IsArgument() bool { return n.argType != nil }

// Type returns the argument parser, or nil for literals.
func (n *Node) Type() ArgumentType { return n.argType }

// Executor returns the node's action, or nil if the node is not executable.
func (n *Node) Executor() Executor { return n.exec }

// Requires returns the node's permission predicate, or nil.
func (n *Node) Requires() Requirement { return n.requires }

// RequiresWithContext returns the node's context-aware permission
// predicate, or nil.
func (n *Node) RequiresWithContext() ContextRequirement { return n.requiresCtx }

// Redirect returns the identifier of the redirect target, or None.
func (n *Node) Redirect() NodeID { return n.redirect }

// Hint reports whether the node is a suggestion-only shadow.
func (n *Node) Hint() bool { return n.hint }

// Children returns the identifiers of the node's children in insertion
// order. The returned slice must not be mutated.
func (n *Node) Children() []NodeID { return n.children }

// CanUse evaluates the node's requirement for the given source. Nodes
// without a requirement allow every source; hint nodes deny every source.
func (n *Node) CanUse(source any) bool {
	if n.hint {
		return false
	}
	if n.requires == nil {
		return true
	}
	return n.requires(source)
}

// CanUseWithContext evaluates the context-aware requirement, if any.
func (n *Node) CanUseWithContext(source any, res *ParseResults) bool {
	if n.requiresCtx == nil {
		return true
	}
	return n.requiresCtx(source, res)
}

// Option configures a node at creation time.
type Option func(*Node)

// WithExecutor marks the node executable with the given action.
func WithExecutor(exec Executor) Option {
	return func(n *Node) { n.exec = exec }
}

// WithRequirement sets the node's permission predicate.
func WithRequirement(req Requirement) Option {
	return func(n *Node) { n.requires = req }
}

// WithContextRequirement sets the node's context-aware permission predicate.
func WithContextRequirement(req ContextRequirement) Option {
	return func(n *Node) { n.requiresCtx = req }
}

// WithRedirect makes the node forward to the target node's children during
// parsing. The target is held by identifier only.
func WithRedirect(target NodeID) Option {
	return func(n *Node) { n.redirect = target }
}
