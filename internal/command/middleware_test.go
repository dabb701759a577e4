package command

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyMiddlewaresOrder(t *testing.T) {
	inner := &fakeCommand{kind: KindRaw}
	var order []string
	tag := func(name string) Middleware {
		return func(cmd Command) Command {
			return &WrappedCommand{
				Command: cmd,
				Wrap: func(inv Invocation) error {
					order = append(order, name)
					return cmd.Execute(inv)
				},
			}
		}
	}

	cmd := ApplyMiddlewares(inner, tag("first"), tag("second"))
	src := &fakeSource{name: "console"}
	require.NoError(t, cmd.Execute(&RawInvocation{source: src, alias: "ping"}))

	// The last middleware in the list is the outermost.
	assert.Equal(t, []string{"second", "first"}, order)
	assert.Equal(t, 1, inner.runs)
}

func TestWrappedCommandDelegates(t *testing.T) {
	inner := &fakeCommand{kind: KindLegacy, perm: "proxy.admin", sugg: []string{"on", "off"}}
	cmd := ApplyMiddlewares(inner, WithExecutionLog())

	assert.Equal(t, KindLegacy, cmd.Kind())

	src := &fakeSource{name: "console", perms: map[string]bool{"proxy.admin": true}}
	inv := &LegacyInvocation{source: src, alias: "maintenance"}
	assert.True(t, cmd.HasPermission(inv))

	sugg, err := cmd.Suggest(inv)
	require.NoError(t, err)
	assert.Equal(t, []string{"on", "off"}, sugg)
}

func TestWithExecutionLogPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	inner := &fakeCommand{kind: KindRaw, execErr: boom}
	cmd := ApplyMiddlewares(inner, WithExecutionLog())

	src := &fakeSource{name: "console"}
	err := cmd.Execute(&RawInvocation{source: src, alias: "ping"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, inner.runs)
}

func TestWithPermissionGate(t *testing.T) {
	inner := &fakeCommand{kind: KindRaw}
	cmd := ApplyMiddlewares(inner, WithPermissionGate("proxy.staff"))

	denied := &fakeSource{name: "player"}
	require.NoError(t, cmd.Execute(&RawInvocation{source: denied, alias: "kick"}))
	assert.Equal(t, 0, inner.runs)
	require.Len(t, denied.msgs, 1)

	granted := &fakeSource{name: "admin", perms: map[string]bool{"proxy.staff": true}}
	require.NoError(t, cmd.Execute(&RawInvocation{source: granted, alias: "kick"}))
	assert.Equal(t, 1, inner.runs)
}
