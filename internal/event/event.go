// Package event defines the pre-execution notification boundary of the
// command core, plus a small in-process bus callers can use to observe
// dispatched commands.
package event

import "context"

// Result is the outcome of a pre-execution notification. ForwardToServer
// and a false Allowed are treated identically by the dispatcher: the line
// is not handled here. A non-empty Rewritten replaces the line before
// dispatch.
type Result struct {
	Allowed         bool
	ForwardToServer bool
	// Rewritten, when non-empty, replaces the command line before
	// dispatch. Empty means the line runs unchanged; rewriting a line
	// to nothing is not expressible.
	Rewritten string
}

// Notifier announces a command's imminent execution and may cancel or
// rewrite it. The source is passed opaquely; implementations that care
// assert it to the command package's Source.
type Notifier interface {
	Notify(ctx context.Context, source any, cmdLine string) (Result, error)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, source any, cmdLine string) (Result, error)

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, source any, cmdLine string) (Result, error) {
	return f(ctx, source, cmdLine)
}

// Allow lets every command through unchanged.
var Allow Notifier = NotifierFunc(func(context.Context, any, string) (Result, error) {
	return Result{Allowed: true}, nil
})
