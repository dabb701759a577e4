package command

import "relaycore/internal/tree"

// RawInvocation carries the trailing text after the alias as one opaque
// string.
type RawInvocation struct {
	source Source
	alias  string
	args   string
}

// Source returns the invoking source.
func (i *RawInvocation) Source() Source { return i.source }

// Alias returns the alias used to invoke the command.
func (i *RawInvocation) Alias() string { return i.alias }

// Arguments returns the unsplit trailing text, possibly empty.
func (i *RawInvocation) Arguments() string { return i.args }

// LegacyInvocation carries the trailing text split into tokens.
type LegacyInvocation struct {
	source Source
	alias  string
	args   []string
}

// Source returns the invoking source.
func (i *LegacyInvocation) Source() Source { return i.source }

// Alias returns the alias used to invoke the command.
func (i *LegacyInvocation) Alias() string { return i.alias }

// Arguments returns the split tokens, possibly empty.
func (i *LegacyInvocation) Arguments() []string { return i.args }

// TreeInvocation carries the parse results of a structured command line.
type TreeInvocation struct {
	source  Source
	alias   string
	results *tree.ParseResults
}

// Source returns the invoking source.
func (i *TreeInvocation) Source() Source { return i.source }

// Alias returns the name of the first matched node.
func (i *TreeInvocation) Alias() string { return i.alias }

// Results returns the parse results for this call.
func (i *TreeInvocation) Results() *tree.ParseResults { return i.results }

// GenericInvocation is produced by the fallback factory for command kinds
// with no registered factory: the alias plus the verbatim trailing text.
type GenericInvocation struct {
	source Source
	alias  string
	args   string
}

// Source returns the invoking source.
func (i *GenericInvocation) Source() Source { return i.source }

// Alias returns the alias used to invoke the command.
func (i *GenericInvocation) Alias() string { return i.alias }

// Arguments returns the verbatim trailing text.
func (i *GenericInvocation) Arguments() string { return i.args }
