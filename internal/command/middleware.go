package command

import "log"

// Middleware wraps a command (e.g. logging, extra permission gates).
type Middleware func(Command) Command

// WrappedCommand overrides Execute while delegating everything else to
// the inner command.
type WrappedCommand struct {
	Command
	Wrap func(inv Invocation) error
}

// Execute runs the wrapper, falling back to the inner command.
func (w *WrappedCommand) Execute(inv Invocation) error {
	if w.Wrap != nil {
		return w.Wrap(inv)
	}
	return w.Command.Execute(inv)
}

// ApplyMiddlewares applies middlewares in order; the last in the list is
// the outermost.
func ApplyMiddlewares(cmd Command, mws ...Middleware) Command {
	for _, mw := range mws {
		cmd = mw(cmd)
	}
	return cmd
}

// WithExecutionLog logs every execution of the wrapped command.
func WithExecutionLog() Middleware {
	return func(cmd Command) Command {
		return &WrappedCommand{
			Command: cmd,
			Wrap: func(inv Invocation) error {
				err := cmd.Execute(inv)
				if err != nil {
					log.Printf("[WARN] Command %s from %s failed: %v", inv.Alias(), inv.Source().Name(), err)
					return err
				}
				log.Printf("[INFO] Command %s from %s", inv.Alias(), inv.Source().Name())
				return nil
			},
		}
	}
}

// WithPermissionGate denies the wrapped command unless the source holds
// the given permission, on top of the command's own predicate.
func WithPermissionGate(permission string) Middleware {
	return func(cmd Command) Command {
		return &WrappedCommand{
			Command: cmd,
			Wrap: func(inv Invocation) error {
				if !inv.Source().HasPermission(permission) {
					inv.Source().SendMessage("You are not allowed to use this command.")
					return nil
				}
				return cmd.Execute(inv)
			},
		}
	}
}
