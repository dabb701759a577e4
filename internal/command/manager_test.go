package command

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relaycore/internal/event"
	"relaycore/internal/tree"
	"relaycore/internal/worker"
)

type fakeSource struct {
	name  string
	perms map[string]bool
	msgs  []string
}

func (s *fakeSource) Name() string { return s.name }

func (s *fakeSource) HasPermission(p string) bool { return s.perms[p] }

func (s *fakeSource) SendMessage(msg string) { s.msgs = append(s.msgs, msg) }

type fakeCommand struct {
	kind    Kind
	perm    string
	runs    int
	lastInv Invocation
	sugg    []string
	execErr error
}

func (c *fakeCommand) Kind() Kind { return c.kind }

func (c *fakeCommand) HasPermission(inv Invocation) bool {
	if c.perm == "" {
		return true
	}
	return inv.Source().HasPermission(c.perm)
}

func (c *fakeCommand) Execute(inv Invocation) error {
	c.runs++
	c.lastInv = inv
	return c.execErr
}

func (c *fakeCommand) Suggest(Invocation) ([]string, error) { return c.sugg, nil }

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	pool := worker.NewPool(2)
	t.Cleanup(pool.Close)
	return NewManager(event.Allow, pool)
}

// teleportCommand builds a structured "tp" command gated on proxy.tp,
// capturing a greedy arguments string.
func teleportCommand(t *testing.T, m *Manager) (*TreeCommand, *int, *string) {
	t.Helper()
	a := m.Arena()
	runs := new(int)
	lastArgs := new(string)
	lit := a.NewLiteral("tp",
		tree.WithRequirement(func(s any) bool { return s.(Source).HasPermission("proxy.tp") }),
		tree.WithExecutor(func(res *tree.ParseResults) error {
			args, err := ReadArguments(res, "")
			if err != nil {
				return err
			}
			*runs++
			*lastArgs = args
			return nil
		}),
	)
	arg, err := ArgumentNode(a, tree.GreedyString{}, lit)
	require.NoError(t, err)
	require.NoError(t, a.AddChild(lit, arg))
	return NewTreeCommand(a, lit), runs, lastArgs
}

func TestRegisterRequiresAliases(t *testing.T) {
	m := newTestManager(t)
	err := m.Register(&fakeCommand{kind: KindRaw})
	assert.ErrorIs(t, err, ErrNoAliases)
	assert.Error(t, m.Register(nil, "x"))
}

func TestRegisterAllAliasesResolveToSameCommand(t *testing.T) {
	m := newTestManager(t)
	cmd := &fakeCommand{kind: KindRaw}
	require.NoError(t, m.Register(cmd, "Announce", "BROADCAST", "say"))

	for _, alias := range []string{"announce", "broadcast", "say", "ANNOUNCE"} {
		assert.True(t, m.HasCommand(alias), alias)
	}
	assert.Equal(t, []string{"announce", "broadcast", "say"}, m.RegisteredAliases())
}

func TestAllCommandsDeduplicatesAliases(t *testing.T) {
	m := newTestManager(t)
	announce := &fakeCommand{kind: KindRaw}
	ping := &fakeCommand{kind: KindRaw}
	require.NoError(t, m.Register(announce, "announce", "say"))
	require.NoError(t, m.Register(ping, "ping"))

	cmds := m.AllCommands()
	require.Len(t, cmds, 2)
	assert.Same(t, announce, cmds[0])
	assert.Same(t, ping, cmds[1])
}

func TestRegisterLastWriteWins(t *testing.T) {
	m := newTestManager(t)
	first := &fakeCommand{kind: KindRaw}
	second := &fakeCommand{kind: KindRaw}
	require.NoError(t, m.Register(first, "ping"))
	require.NoError(t, m.Register(second, "ping"))

	src := &fakeSource{name: "player"}
	handled, err := m.Execute(context.Background(), src, "ping")
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, 0, first.runs, "overridden command must not run")
	assert.Equal(t, 1, second.runs)
}

func TestUnregisterRemovesOnlyOneAlias(t *testing.T) {
	m := newTestManager(t)
	cmd := &fakeCommand{kind: KindRaw}
	require.NoError(t, m.Register(cmd, "announce", "say"))

	m.Unregister("ANNOUNCE")
	assert.False(t, m.HasCommand("announce"))
	assert.True(t, m.HasCommand("say"))
}

func TestExecuteShutdownScenarios(t *testing.T) {
	m := newTestManager(t)
	stops := 0
	require.NoError(t, m.Register(NewShutdownCommand(func() { stops++ }), "shutdown"))

	handled, err := m.Execute(context.Background(), ConsoleSource{}, "shutdown")
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, 1, stops, "shutdown side effect invoked exactly once")

	outsider := &fakeSource{name: "player"}
	handled, err = m.Execute(context.Background(), outsider, "shutdown")
	require.NoError(t, err)
	assert.False(t, handled)
	assert.Equal(t, 1, stops, "unauthorized source must not trigger shutdown")
}

func TestExecuteUnknownCommand(t *testing.T) {
	m := newTestManager(t)
	handled, err := m.Execute(context.Background(), &fakeSource{name: "player"}, "unknown-cmd foo bar")
	require.NoError(t, err, "unknown command is not an error")
	assert.False(t, handled)
}

func TestExecuteTreeCommand(t *testing.T) {
	m := newTestManager(t)
	cmd, runs, lastArgs := teleportCommand(t, m)
	require.NoError(t, m.Register(cmd, "tp"))

	allowed := &fakeSource{name: "mod", perms: map[string]bool{"proxy.tp": true}}
	handled, err := m.Execute(context.Background(), allowed, "tp 10 20 30")
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, 1, *runs)
	assert.Equal(t, "10 20 30", *lastArgs)

	denied := &fakeSource{name: "player"}
	handled, err = m.Execute(context.Background(), denied, "tp 10 20 30")
	require.NoError(t, err)
	assert.False(t, handled)
	assert.Equal(t, 1, *runs, "denied teleport must not run the handler")
}

func TestTreeCommandAliasRedirect(t *testing.T) {
	m := newTestManager(t)
	cmd, runs, lastArgs := teleportCommand(t, m)
	require.NoError(t, m.Register(cmd, "tp", "teleport"))

	src := &fakeSource{name: "mod", perms: map[string]bool{"proxy.tp": true}}
	handled, err := m.Execute(context.Background(), src, "teleport 1 2 3")
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, "1 2 3", *lastArgs)

	// Removing the canonical alias detaches its node; the redirect keeps
	// the copied executor and still handles a bare invocation.
	m.Unregister("tp")
	assert.True(t, m.HasCommand("teleport"))

	handled, err = m.Execute(context.Background(), src, "teleport")
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, 2, *runs)
}

func TestExecuteNotificationControlsDispatch(t *testing.T) {
	pool := worker.NewPool(1)
	t.Cleanup(pool.Close)

	var notified []string
	notifier := event.NotifierFunc(func(_ context.Context, _ any, line string) (event.Result, error) {
		notified = append(notified, line)
		switch line {
		case "blocked":
			return event.Result{Allowed: false}, nil
		case "forward":
			return event.Result{Allowed: true, ForwardToServer: true}, nil
		case "old":
			return event.Result{Allowed: true, Rewritten: "ping"}, nil
		}
		return event.Result{Allowed: true}, nil
	})
	m := NewManager(notifier, pool)
	cmd := &fakeCommand{kind: KindRaw}
	require.NoError(t, m.Register(cmd, "ping"))
	src := &fakeSource{name: "player"}

	handled, err := m.Execute(context.Background(), src, "blocked")
	require.NoError(t, err)
	assert.False(t, handled)

	handled, err = m.Execute(context.Background(), src, "forward")
	require.NoError(t, err)
	assert.False(t, handled, "forwarded lines are not handled here")

	handled, err = m.Execute(context.Background(), src, "old")
	require.NoError(t, err)
	assert.True(t, handled, "rewritten line dispatches instead")
	assert.Equal(t, 1, cmd.runs)
	assert.Equal(t, []string{"blocked", "forward", "old"}, notified)
}

func TestExecuteImmediatelySkipsNotification(t *testing.T) {
	pool := worker.NewPool(1)
	t.Cleanup(pool.Close)

	notifications := 0
	notifier := event.NotifierFunc(func(context.Context, any, string) (event.Result, error) {
		notifications++
		return event.Result{Allowed: true}, nil
	})
	m := NewManager(notifier, pool)
	cmd := &fakeCommand{kind: KindRaw}
	require.NoError(t, m.Register(cmd, "ping"))

	fut := m.ExecuteImmediately(&fakeSource{name: "player"}, "ping pong")
	handled, err := fut.Wait(context.Background())
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, 0, notifications)

	inv, ok := cmd.lastInv.(*RawInvocation)
	require.True(t, ok)
	assert.Equal(t, "ping", inv.Alias())
	assert.Equal(t, "pong", inv.Arguments())
}

func TestExecuteWrapsUnexpectedFailure(t *testing.T) {
	m := newTestManager(t)
	boom := errors.New("boom")
	require.NoError(t, m.Register(&fakeCommand{kind: KindRaw, execErr: boom}, "explode"))

	handled, err := m.Execute(context.Background(), &fakeSource{name: "player"}, "explode now")
	assert.False(t, handled)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "explode now", "failure identifies the command line")
	assert.Contains(t, err.Error(), "player", "failure identifies the source")
}

func TestExecuteRecoversSyntaxFailure(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.Register(&fakeCommand{
		kind:    KindRaw,
		execErr: &tree.SyntaxError{Msg: "bad input"},
	}, "parseme"))

	handled, err := m.Execute(context.Background(), &fakeSource{name: "player"}, "parseme ???")
	require.NoError(t, err, "syntax-shaped failures are not system faults")
	assert.False(t, handled)
}

func TestExecuteIsolatesPanickingHandler(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.Register(panicCommand{}, "crash"))

	handled, err := m.Execute(context.Background(), &fakeSource{name: "player"}, "crash")
	assert.False(t, handled)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "crash")
}

type panicCommand struct{}

func (panicCommand) Kind() Kind                           { return KindRaw }
func (panicCommand) HasPermission(Invocation) bool        { return true }
func (panicCommand) Execute(Invocation) error             { panic("handler bug") }
func (panicCommand) Suggest(Invocation) ([]string, error) { return nil, nil }

func TestOfferSuggestionsPartialAlias(t *testing.T) {
	m := newTestManager(t)
	stops := 0
	require.NoError(t, m.Register(NewShutdownCommand(func() { stops++ }), "shutdown"))

	got, err := m.OfferSuggestions(ConsoleSource{}, "sh")
	require.NoError(t, err)
	assert.Equal(t, []string{"/shutdown"}, got)
	assert.Equal(t, 0, stops, "suggesting never executes")

	got, err = m.OfferSuggestions(&fakeSource{name: "player"}, "sh")
	require.NoError(t, err)
	assert.Empty(t, got, "denied aliases are not suggested")
}

func TestOfferSuggestionsRegistrationOrder(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.Register(&fakeCommand{kind: KindRaw}, "show"))
	require.NoError(t, m.Register(&fakeCommand{kind: KindRaw}, "shell"))

	got, err := m.OfferSuggestions(&fakeSource{name: "player"}, "sh")
	require.NoError(t, err)
	assert.Equal(t, []string{"/show", "/shell"}, got, "alias completion keeps registration order")
}

func TestOfferSuggestionsDelegatesToCommand(t *testing.T) {
	m := newTestManager(t)
	stops := 0
	require.NoError(t, m.Register(NewShutdownCommand(func() { stops++ }), "shutdown"))

	got, err := m.OfferSuggestions(ConsoleSource{}, "shutdown ")
	require.NoError(t, err)
	assert.Empty(t, got, "zero-arg command has no argument suggestions")

	custom := &fakeCommand{kind: KindRaw, sugg: []string{"alpha", "beta"}}
	require.NoError(t, m.Register(custom, "pick"))
	got, err = m.OfferSuggestions(ConsoleSource{}, "pick a")
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, got)
}

func TestOfferSuggestionsTreeTrailingSpace(t *testing.T) {
	m := newTestManager(t)
	a := m.Arena()
	lit := a.NewLiteral("server")
	require.NoError(t, a.AddChild(lit, a.NewLiteral("lobby")))
	require.NoError(t, a.AddChild(lit, a.NewLiteral("survival")))
	require.NoError(t, m.Register(NewTreeCommand(a, lit), "server"))

	got, err := m.OfferSuggestions(&fakeSource{name: "player"}, "server ")
	require.NoError(t, err)
	assert.Equal(t, []string{"lobby", "survival"}, got,
		"a trailing space completes the subtree, not the alias itself")
}

func TestOfferSuggestionsUnknownAlias(t *testing.T) {
	m := newTestManager(t)
	got, err := m.OfferSuggestions(&fakeSource{name: "player"}, "nope ")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestHasPermission(t *testing.T) {
	m := newTestManager(t)
	cmd, runs, _ := teleportCommand(t, m)
	require.NoError(t, m.Register(cmd, "tp"))

	allowed := &fakeSource{name: "mod", perms: map[string]bool{"proxy.tp": true}}
	assert.True(t, m.HasPermission(allowed, "tp 10 20 30"))
	assert.False(t, m.HasPermission(&fakeSource{name: "player"}, "tp 10 20 30"))
	assert.False(t, m.HasPermission(allowed, "unknown"))
	assert.Equal(t, 0, *runs, "permission checks never execute")
}

func TestCustomKindUsesFallbackFactory(t *testing.T) {
	m := newTestManager(t)
	cmd := &fakeCommand{kind: Kind("plugin-defined")}
	require.NoError(t, m.Register(cmd, "custom"))

	handled, err := m.Execute(context.Background(), &fakeSource{name: "player"}, "custom one two")
	require.NoError(t, err)
	assert.True(t, handled)

	inv, ok := cmd.lastInv.(*GenericInvocation)
	require.True(t, ok, "unknown kinds get the fallback invocation")
	assert.Equal(t, "custom", inv.Alias())
	assert.Equal(t, "one two", inv.Arguments())
}

func TestLegacyInvocationSplitsTokens(t *testing.T) {
	m := newTestManager(t)
	cmd := &fakeCommand{kind: KindLegacy}
	require.NoError(t, m.Register(cmd, "kick"))

	handled, err := m.Execute(context.Background(), &fakeSource{name: "mod"}, `kick player "being rude"`)
	require.NoError(t, err)
	assert.True(t, handled)

	inv, ok := cmd.lastInv.(*LegacyInvocation)
	require.True(t, ok)
	assert.Equal(t, []string{"player", "being rude"}, inv.Arguments(), "quoted tokens stay together")
}

func TestOnExecutedObserver(t *testing.T) {
	m := newTestManager(t)
	var seen []string
	m.OnExecuted(func(_ Source, alias, line string) {
		seen = append(seen, alias+"|"+line)
	})
	require.NoError(t, m.Register(&fakeCommand{kind: KindRaw}, "ping"))

	_, err := m.Execute(context.Background(), &fakeSource{name: "player"}, "PING pong")
	require.NoError(t, err)
	_, err = m.Execute(context.Background(), &fakeSource{name: "player"}, "missing")
	require.NoError(t, err)

	assert.Equal(t, []string{"ping|PING pong"}, seen, "only handled lines are recorded")
}
