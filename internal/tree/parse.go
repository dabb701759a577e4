package tree

import "strings"

// ParsedNode records one node matched during a parse.
type ParsedNode struct {
	ID   NodeID
	Name string
}

// ParseResults is the outcome of a successful parse: the matched node
// chain in order, captured arguments by name, and the executor of the last
// executable node reached. A ParseResults belongs to a single dispatch
// call and is never shared.
type ParseResults struct {
	Source    any
	Line      string
	Nodes     []ParsedNode
	Arguments map[string]any
	Exec      Executor
}

// Parse walks the tree from the root, matching literal tokens
// case-insensitively and letting argument nodes capture typed values.
// A node with a redirect forwards the walk to its target's children while
// the matched alias keeps its own name in the results. Input that matches
// no child yields a *SyntaxError.
func (a *Arena) Parse(source any, line string) (*ParseResults, error) {
	res := &ParseResults{Source: source, Line: line, Arguments: make(map[string]any)}
	cur := a.nodes[a.root]
	remaining := line
	for remaining != "" {
		token := remaining
		rest := ""
		if i := strings.IndexByte(remaining, ' '); i >= 0 {
			token = remaining[:i]
			rest = remaining[i+1:]
		}
		if n := a.literalChild(cur, token, source); n != nil {
			res.Nodes = append(res.Nodes, ParsedNode{ID: n.id, Name: n.name})
			if n.exec != nil {
				res.Exec = n.exec
			}
			remaining = rest
			cur = a.resolve(n)
			continue
		}
		n := a.argumentChild(cur, source)
		if n == nil {
			return nil, &SyntaxError{Input: token, Msg: "unknown argument"}
		}
		value, rest, err := n.argType.Parse(remaining)
		if err != nil {
			return nil, err
		}
		res.Arguments[n.name] = value
		res.Nodes = append(res.Nodes, ParsedNode{ID: n.id, Name: n.name})
		if n.exec != nil {
			res.Exec = n.exec
		}
		remaining = rest
		cur = n
	}
	if len(res.Nodes) == 0 {
		return nil, &SyntaxError{Msg: "expected a command"}
	}
	return res, nil
}

// Suggest completes the partial last token of line against the children
// reachable after walking the completed tokens. Completed tokens that
// match nothing end the walk early with no suggestions to offer.
func (a *Arena) Suggest(source any, line string) []string {
	cur := a.nodes[a.root]
	remaining := line
	for {
		i := strings.IndexByte(remaining, ' ')
		if i < 0 {
			break
		}
		n := a.literalChild(cur, remaining[:i], source)
		if n == nil {
			break
		}
		remaining = remaining[i+1:]
		cur = a.resolve(n)
	}
	return a.complete(cur, source, remaining)
}

func (a *Arena) literalChild(parent *Node, token string, source any) *Node {
	id, ok := parent.byName[strings.ToLower(token)]
	if !ok {
		return nil
	}
	n, ok := a.nodes[id]
	if !ok || n.hint || n.IsArgument() || !n.CanUse(source) {
		return nil
	}
	return n
}

func (a *Arena) argumentChild(parent *Node, source any) *Node {
	for _, id := range parent.children {
		if n, ok := a.nodes[id]; ok && n.IsArgument() && !n.hint && n.CanUse(source) {
			return n
		}
	}
	return nil
}

func (a *Arena) complete(cur *Node, source any, prefix string) []string {
	// Hint shadows always deny on their own requirement; they are gated
	// by the requirement of the real argument node they describe.
	hintsAllowed := true
	if arg := a.argumentChild(cur, source); arg == nil {
		for _, id := range cur.children {
			if n, ok := a.nodes[id]; ok && n.IsArgument() && !n.hint {
				hintsAllowed = false
				break
			}
		}
	}

	var out []string
	seen := make(map[string]bool)
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, id := range cur.children {
		n, ok := a.nodes[id]
		if !ok {
			continue
		}
		if n.hint {
			if !hintsAllowed {
				continue
			}
		} else if !n.CanUse(source) {
			continue
		}
		if n.IsArgument() {
			for _, s := range n.argType.Suggest(prefix) {
				add(s)
			}
			continue
		}
		if len(prefix) <= len(n.name) && strings.EqualFold(n.name[:len(prefix)], prefix) {
			add(n.name)
		}
	}
	return out
}

// resolve follows a redirect when the target still exists; a dangling
// identifier degrades to the node itself.
func (a *Arena) resolve(n *Node) *Node {
	if n.redirect == None {
		return n
	}
	if target, ok := a.nodes[n.redirect]; ok {
		return target
	}
	return n
}
