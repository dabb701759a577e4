// Package command provides the transport-agnostic command core of the
// proxy: an alias table, a grammar-node dispatcher for structured
// commands, invocation factories per command style, and the
// execution/suggestion/permission pipeline. How lines reach this package
// (console, session transport) is defined by the callers that wrap it.
package command

// Kind tags a command style. The invocation factory registry is keyed by
// Kind, so custom styles can exist; they dispatch through the fallback
// factory.
type Kind string

const (
	// KindTree marks structured commands backed by a grammar subtree
	// with typed arguments and tab-completion.
	KindTree Kind = "tree"
	// KindRaw marks commands that receive the unsplit remainder of the
	// line verbatim.
	KindRaw Kind = "raw"
	// KindLegacy marks commands that receive whitespace-split tokens.
	KindLegacy Kind = "legacy"
)

// Invocation is the per-call bundle passed to a command: the source, the
// alias actually used, and a style-specific argument payload. Invocations
// are created fresh per dispatch and never shared across calls.
type Invocation interface {
	Source() Source
	Alias() string
}

// Command is the universal contract all three styles implement. Handlers
// type-assert the Invocation to the shape their Kind produces.
type Command interface {
	Kind() Kind
	HasPermission(inv Invocation) bool
	Execute(inv Invocation) error
	Suggest(inv Invocation) ([]string, error)
}
