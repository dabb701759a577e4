package command

import (
	"strings"

	"github.com/google/shlex"

	"relaycore/internal/tree"
)

// InvocationFactory turns a command line into the invocation shape one
// command style expects. IncludeAlias reports whether the factory wants
// the alias re-prepended to the line it is given.
type InvocationFactory interface {
	Create(source Source, cmdLine string) (Invocation, error)
	IncludeAlias() bool
}

// splitLine splits a command line on the first space. args is the empty
// string when the line holds only the alias.
func splitLine(line string) (alias, args string) {
	if i := strings.IndexByte(line, ' '); i >= 0 {
		return line[:i], line[i+1:]
	}
	return line, ""
}

type rawFactory struct{}

func (rawFactory) IncludeAlias() bool { return true }

func (rawFactory) Create(source Source, cmdLine string) (Invocation, error) {
	alias, args := splitLine(cmdLine)
	return &RawInvocation{source: source, alias: alias, args: args}, nil
}

type legacyFactory struct{}

func (legacyFactory) IncludeAlias() bool { return true }

func (legacyFactory) Create(source Source, cmdLine string) (Invocation, error) {
	alias, args := splitLine(cmdLine)
	return &LegacyInvocation{source: source, alias: alias, args: splitTokens(args)}, nil
}

// splitTokens is quote-aware; unbalanced quotes degrade to a plain
// whitespace split so malformed input still reaches the handler.
func splitTokens(args string) []string {
	if args == "" {
		return nil
	}
	tokens, err := shlex.Split(args)
	if err != nil {
		return strings.Fields(args)
	}
	return tokens
}

type treeFactory struct {
	arena *tree.Arena
}

func (treeFactory) IncludeAlias() bool { return true }

func (f treeFactory) Create(source Source, cmdLine string) (Invocation, error) {
	res, err := f.arena.Parse(source, cmdLine)
	if err != nil {
		return nil, err
	}
	alias, err := ReadAlias(res)
	if err != nil {
		return nil, err
	}
	return &TreeInvocation{source: source, alias: alias, results: res}, nil
}

type fallbackFactory struct{}

func (fallbackFactory) IncludeAlias() bool { return true }

func (fallbackFactory) Create(source Source, cmdLine string) (Invocation, error) {
	alias, args := splitLine(cmdLine)
	return &GenericInvocation{source: source, alias: alias, args: args}, nil
}

// factoryRegistry maps a command's Kind to its invocation factory.
// Unknown kinds fall back to the generic factory, so the registry never
// fails to produce some invocation.
type factoryRegistry struct {
	factories map[Kind]InvocationFactory
	fallback  InvocationFactory
}

func newFactoryRegistry(arena *tree.Arena) *factoryRegistry {
	return &factoryRegistry{
		factories: map[Kind]InvocationFactory{
			KindTree:   treeFactory{arena: arena},
			KindRaw:    rawFactory{},
			KindLegacy: legacyFactory{},
		},
		fallback: fallbackFactory{},
	}
}

func (r *factoryRegistry) factory(kind Kind) InvocationFactory {
	if f, ok := r.factories[kind]; ok {
		return f
	}
	return r.fallback
}

// createInvocation rebuilds the command line the factory expects and
// delegates to it. spaced reports whether the caller's line contained a
// space after the alias; it must be preserved even when args is empty,
// or a trailing-space line would complete the alias instead of the
// subtree.
func (r *factoryRegistry) createInvocation(cmd Command, source Source, alias, args string, spaced bool) (Invocation, error) {
	f := r.factory(cmd.Kind())
	line := args
	if f.IncludeAlias() {
		line = alias
		if spaced {
			line = alias + " " + args
		}
	}
	return f.Create(source, line)
}
