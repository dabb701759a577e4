package command

// ShutdownPermission gates the built-in shutdown command.
const ShutdownPermission = "relaycore.command.shutdown"

// ShutdownCommand stops the proxy. Legacy style; arguments are ignored.
type ShutdownCommand struct {
	stop func()
}

// NewShutdownCommand wraps the stop function invoked on execution.
func NewShutdownCommand(stop func()) *ShutdownCommand {
	return &ShutdownCommand{stop: stop}
}

// Kind returns KindLegacy.
func (*ShutdownCommand) Kind() Kind { return KindLegacy }

// HasPermission consults the source's authorization backend. The console
// always passes.
func (*ShutdownCommand) HasPermission(inv Invocation) bool {
	return inv.Source().HasPermission(ShutdownPermission)
}

// Execute stops the proxy.
func (c *ShutdownCommand) Execute(inv Invocation) error {
	inv.Source().SendMessage("Shutting down the proxy...")
	c.stop()
	return nil
}

// Suggest returns nothing; shutdown takes no arguments.
func (*ShutdownCommand) Suggest(Invocation) ([]string, error) {
	return nil, nil
}
