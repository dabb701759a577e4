package tree

import (
	"errors"
	"strings"
)

var (
	// ErrUnknownNode is returned when an identifier does not resolve.
	ErrUnknownNode = errors.New("tree: unknown node")
	// ErrExecutableHint is returned when a hint is built from an
	// executable node.
	ErrExecutableHint = errors.New("tree: cannot use an executable node for hinting")
	// ErrRedirectHint is returned when a hint is built from a node that
	// carries a redirect.
	ErrRedirectHint = errors.New("tree: cannot use a node with a redirect for hinting")
)

// Arena owns every grammar node and hands out identifiers. The root node
// is created with the arena and holds one child per registered alias.
type Arena struct {
	nodes map[NodeID]*Node
	next  NodeID
	root  NodeID
}

// NewArena returns an arena containing only the root node.
func NewArena() *Arena {
	a := &Arena{nodes: make(map[NodeID]*Node), next: 1}
	a.root = a.insert(&Node{name: ""})
	return a
}

// Root returns the identifier of the root node.
func (a *Arena) Root() NodeID { return a.root }

// Node resolves an identifier. The second result is false when the node
// has been removed or never existed.
func (a *Arena) Node(id NodeID) (*Node, bool) {
	n, ok := a.nodes[id]
	return n, ok
}

func (a *Arena) insert(n *Node) NodeID {
	n.id = a.next
	a.next++
	a.nodes[n.id] = n
	return n.id
}

// NewLiteral creates a detached literal node matching the given token.
func (a *Arena) NewLiteral(name string, opts ...Option) NodeID {
	n := &Node{name: name}
	for _, opt := range opts {
		opt(n)
	}
	return a.insert(n)
}

// NewArgument creates a detached argument node capturing one value of the
// given type under the given name.
func (a *Arena) NewArgument(name string, t ArgumentType, opts ...Option) NodeID {
	n := &Node{name: name, argType: t}
	for _, opt := range opts {
		opt(n)
	}
	return a.insert(n)
}

// AddChild attaches child under parent. A child with the same
// case-insensitive name replaces the previous one; the replaced subtree is
// dropped from the arena.
func (a *Arena) AddChild(parent, child NodeID) error {
	p, ok := a.nodes[parent]
	if !ok {
		return ErrUnknownNode
	}
	c, ok := a.nodes[child]
	if !ok {
		return ErrUnknownNode
	}
	key := strings.ToLower(c.name)
	if p.byName == nil {
		p.byName = make(map[string]NodeID)
	}
	if prev, ok := p.byName[key]; ok {
		a.detach(p, prev)
	}
	p.byName[key] = child
	p.children = append(p.children, child)
	return nil
}

// RemoveChild detaches the named child from parent and removes its
// subtree from the arena. Unknown names are ignored.
func (a *Arena) RemoveChild(parent NodeID, name string) {
	p, ok := a.nodes[parent]
	if !ok {
		return
	}
	id, ok := p.byName[strings.ToLower(name)]
	if !ok {
		return
	}
	a.detach(p, id)
}

func (a *Arena) detach(parent *Node, id NodeID) {
	delete(parent.byName, strings.ToLower(a.nodes[id].name))
	for i, c := range parent.children {
		if c == id {
			parent.children = append(parent.children[:i], parent.children[i+1:]...)
			break
		}
	}
	a.remove(id)
}

// remove deletes a node and its descendants. Redirects into the removed
// subtree become dangling identifiers, which readers tolerate.
func (a *Arena) remove(id NodeID) {
	n, ok := a.nodes[id]
	if !ok {
		return
	}
	for _, c := range n.children {
		a.remove(c)
	}
	delete(a.nodes, id)
}

// Child returns the identifier of the named child of parent, or None.
func (a *Arena) Child(parent NodeID, name string) NodeID {
	p, ok := a.nodes[parent]
	if !ok {
		return None
	}
	id, ok := p.byName[strings.ToLower(name)]
	if !ok {
		return None
	}
	return id
}

// CloneAsHint recursively mirrors the subtree rooted at id into a
// suggestion-only shadow. The clones carry no executor, no redirect, and
// deny every source; the real node's requirement stays the sole gate for
// offering the hint. Fails if the source node is executable or redirects.
func (a *Arena) CloneAsHint(id NodeID) (NodeID, error) {
	n, ok := a.nodes[id]
	if !ok {
		return None, ErrUnknownNode
	}
	if n.exec != nil {
		return None, ErrExecutableHint
	}
	if n.redirect != None {
		return None, ErrRedirectHint
	}
	clone := &Node{name: n.name, argType: n.argType, hint: true}
	cloneID := a.insert(clone)
	for _, childID := range n.children {
		hinted, err := a.CloneAsHint(childID)
		if err != nil {
			a.remove(cloneID)
			return None, err
		}
		if err := a.AddChild(cloneID, hinted); err != nil {
			a.remove(cloneID)
			return None, err
		}
	}
	return cloneID, nil
}
