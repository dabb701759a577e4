package command

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"relaycore/internal/event"
	"relaycore/internal/tree"
	"relaycore/internal/worker"
)

// ErrNoAliases is returned by Register when no alias is provided.
var ErrNoAliases = errors.New("command: no aliases provided")

// Manager owns the alias table and the shared grammar arena, and runs the
// execution, suggestion, and permission pipeline.
//
// The alias table keeps insertion order, so alias completion is offered
// in registration order. Keys are lower-cased on the way in; a later
// registration under a used alias silently replaces the earlier one so
// plugins may override built-ins.
//
// Registration is rare next to dispatch traffic, so a single RWMutex
// guards the table and arena: register/unregister take the write lock,
// everything else reads. Command handlers run under the read lock; they
// must not call Register or Unregister on the same manager.
type Manager struct {
	mu        sync.RWMutex
	aliases   *orderedmap.OrderedMap[string, Command]
	arena     *tree.Arena
	factories *factoryRegistry
	notifier  event.Notifier
	pool      *worker.Pool
	recorder  func(source Source, alias, cmdLine string)
	limiter   *RateLimiter
}

// NewManager wires a manager to its two collaborators: the pre-execution
// notifier and the pool used by ExecuteImmediately.
func NewManager(notifier event.Notifier, pool *worker.Pool) *Manager {
	if notifier == nil {
		notifier = event.Allow
	}
	arena := tree.NewArena()
	return &Manager{
		aliases:   orderedmap.New[string, Command](),
		arena:     arena,
		factories: newFactoryRegistry(arena),
		notifier:  notifier,
		pool:      pool,
	}
}

// Arena returns the shared grammar arena. Build tree command nodes here
// before registering; the manager synchronizes access only for its own
// operations.
func (m *Manager) Arena() *tree.Arena { return m.arena }

// OnExecuted installs an observer called after every successfully handled
// command line. Used by the surrounding proxy to keep command history.
// The observer runs on the dispatch path and must not register or
// unregister commands on this manager.
func (m *Manager) OnExecuted(fn func(source Source, alias, cmdLine string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recorder = fn
}

// UseRateLimiter throttles Execute and ExecuteImmediately per source.
// A throttled line is dropped as unhandled. Nil removes the limit.
func (m *Manager) UseRateLimiter(l *RateLimiter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.limiter = l
}

// Register maps every alias to cmd, first alias canonical. For tree
// commands the root node is attached to the shared arena and each
// secondary alias gets a forwarding stub.
func (m *Manager) Register(cmd Command, aliases ...string) error {
	if cmd == nil {
		return errors.New("command: nil command")
	}
	if len(aliases) == 0 {
		return ErrNoAliases
	}
	for i, alias := range aliases {
		if alias == "" {
			return fmt.Errorf("command: empty alias at index %d", i)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	canonical := strings.ToLower(aliases[0])
	if tc, ok := cmd.(*TreeCommand); ok {
		n, ok := m.arena.Node(tc.Node())
		if !ok {
			return fmt.Errorf("command: node of %q: %w", canonical, tree.ErrUnknownNode)
		}
		if !strings.EqualFold(n.Name(), canonical) {
			return fmt.Errorf("command: node %q does not match primary alias %q", n.Name(), canonical)
		}
		if err := m.arena.AddChild(m.arena.Root(), tc.Node()); err != nil {
			return err
		}
		for _, alias := range aliases[1:] {
			stub, err := AliasRedirect(m.arena, tc.Node(), strings.ToLower(alias))
			if err != nil {
				return err
			}
			if err := m.arena.AddChild(m.arena.Root(), stub); err != nil {
				return err
			}
		}
	}
	for _, alias := range aliases {
		m.aliases.Set(strings.ToLower(alias), cmd)
	}
	return nil
}

// Unregister removes one alias. Other aliases of the same command stay
// registered. For tree commands the canonical grammar node is detached
// from the arena, so redirects that pointed at it stop forwarding but
// keep their copied executor.
func (m *Manager) Unregister(alias string) {
	key := strings.ToLower(alias)

	m.mu.Lock()
	defer m.mu.Unlock()

	cmd, ok := m.aliases.Get(key)
	if !ok {
		return
	}
	m.aliases.Delete(key)
	if tc, ok := cmd.(*TreeCommand); ok {
		if n, ok := m.arena.Node(tc.Node()); ok {
			m.arena.RemoveChild(m.arena.Root(), n.Name())
		}
		m.arena.RemoveChild(m.arena.Root(), key)
	}
}

// HasCommand reports whether the alias is registered.
func (m *Manager) HasCommand(alias string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.aliases.Get(strings.ToLower(alias))
	return ok
}

// AllCommands returns every distinct registered command in registration
// order. A command registered under several aliases appears once.
func (m *Manager) AllCommands() []Command {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[Command]bool, m.aliases.Len())
	out := make([]Command, 0, m.aliases.Len())
	for pair := m.aliases.Oldest(); pair != nil; pair = pair.Next() {
		if !seen[pair.Value] {
			seen[pair.Value] = true
			out = append(out, pair.Value)
		}
	}
	return out
}

// RegisteredAliases returns every registered alias in insertion order.
func (m *Manager) RegisteredAliases() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, m.aliases.Len())
	for pair := m.aliases.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// Execute fires the pre-execution notification and, unless the result
// cancels or forwards the line, dispatches the possibly rewritten command
// inline. The boolean result is "handled": an unknown alias, a denied
// permission, or malformed input all yield false without error.
func (m *Manager) Execute(ctx context.Context, source Source, cmdLine string) (bool, error) {
	if source == nil {
		return false, errors.New("command: nil source")
	}
	if !m.allowRate(source) {
		return false, nil
	}
	result, err := m.notifier.Notify(ctx, source, cmdLine)
	if err != nil {
		return false, fmt.Errorf("command: notify %q for %s: %w", cmdLine, source.Name(), err)
	}
	if result.ForwardToServer || !result.Allowed {
		return false, nil
	}
	line := cmdLine
	if result.Rewritten != "" {
		line = result.Rewritten
	}
	return m.dispatch(source, line)
}

// ExecuteImmediately dispatches without a pre-execution notification, on
// the worker pool.
func (m *Manager) ExecuteImmediately(source Source, cmdLine string) *worker.Future[bool] {
	return worker.Submit(m.pool, func() (bool, error) {
		if !m.allowRate(source) {
			return false, nil
		}
		return m.dispatch(source, cmdLine)
	})
}

// allowRate consults the optional per-source rate limiter.
func (m *Manager) allowRate(source Source) bool {
	m.mu.RLock()
	l := m.limiter
	m.mu.RUnlock()
	return l == nil || l.Allow(source.Name())
}

// dispatch resolves the alias, builds the invocation, checks permission,
// and runs the command. Syntax-shaped failures are recovered into a
// "not handled" result; anything else is wrapped with the command line
// and source and surfaced once. A panicking handler is isolated to this
// call rather than taking the process down.
func (m *Manager) dispatch(source Source, cmdLine string) (handled bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			handled = false
			err = fmt.Errorf("command: unable to invoke %q for %s: panic: %v", cmdLine, source.Name(), r)
		}
	}()

	alias, args := splitLine(cmdLine)

	m.mu.RLock()
	defer m.mu.RUnlock()

	cmd, ok := m.aliases.Get(strings.ToLower(alias))
	if !ok {
		// Alias isn't registered; the caller may forward the line
		// elsewhere.
		return false, nil
	}
	inv, err := m.factories.createInvocation(cmd, source, alias, args, len(alias) < len(cmdLine))
	if err != nil {
		if tree.IsSyntax(err) {
			return false, nil
		}
		return false, fmt.Errorf("command: unable to invoke %q for %s: %w", cmdLine, source.Name(), err)
	}
	if !cmd.HasPermission(inv) {
		return false, nil
	}
	if err := cmd.Execute(inv); err != nil {
		if tree.IsSyntax(err) {
			return false, nil
		}
		return false, fmt.Errorf("command: unable to invoke %q for %s: %w", cmdLine, source.Name(), err)
	}
	if m.recorder != nil {
		m.recorder(source, strings.ToLower(alias), cmdLine)
	}
	return true, nil
}

// OfferSuggestions completes a partial command line. A line with no space
// yet is a partial alias: every registered alias the source may run with
// empty arguments is offered as "/"+alias, in registration order. A line
// with a space delegates to the resolved command's own suggester;
// malformed input yields no suggestions.
func (m *Manager) OfferSuggestions(source Source, cmdLine string) ([]string, error) {
	if source == nil {
		return nil, errors.New("command: nil source")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	i := strings.IndexByte(cmdLine, ' ')
	if i < 0 {
		var out []string
		for pair := m.aliases.Oldest(); pair != nil; pair = pair.Next() {
			alias := pair.Key
			if len(cmdLine) <= len(alias) && strings.EqualFold(alias[:len(cmdLine)], cmdLine) &&
				m.allowed(pair.Value, source, alias, "", false) {
				out = append(out, "/"+alias)
			}
		}
		return out, nil
	}

	alias, args := cmdLine[:i], cmdLine[i+1:]
	cmd, ok := m.aliases.Get(strings.ToLower(alias))
	if !ok {
		return nil, nil
	}
	inv, err := m.factories.createInvocation(cmd, source, alias, args, true)
	if err != nil {
		if tree.IsSyntax(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("command: unable to suggest %q for %s: %w", cmdLine, source.Name(), err)
	}
	if !cmd.HasPermission(inv) {
		return nil, nil
	}
	suggestions, err := cmd.Suggest(inv)
	if err != nil {
		if tree.IsSyntax(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("command: unable to suggest %q for %s: %w", cmdLine, source.Name(), err)
	}
	return suggestions, nil
}

// HasPermission reports whether the source may run the command line. It
// only evaluates the permission predicate; nothing executes. Unknown
// aliases and malformed input are false.
func (m *Manager) HasPermission(source Source, cmdLine string) bool {
	alias, args := splitLine(cmdLine)
	args = strings.TrimSpace(args)

	m.mu.RLock()
	defer m.mu.RUnlock()

	cmd, ok := m.aliases.Get(strings.ToLower(alias))
	if !ok {
		return false
	}
	return m.allowed(cmd, source, alias, args, args != "")
}

// allowed builds a throwaway invocation and evaluates the command's
// permission predicate. Callers hold at least the read lock.
func (m *Manager) allowed(cmd Command, source Source, alias, args string, spaced bool) bool {
	inv, err := m.factories.createInvocation(cmd, source, alias, args, spaced)
	if err != nil {
		if !tree.IsSyntax(err) {
			log.Printf("[WARN] Permission check for %q failed: %v", alias, err)
		}
		return false
	}
	return cmd.HasPermission(inv)
}
