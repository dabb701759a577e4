package command

import "fmt"

// Source is the identity a command line originates from: the proxy console
// or a remote session. Permission strings are resolved by whatever
// authorization backend the Source implementation consults.
type Source interface {
	Name() string
	HasPermission(permission string) bool
	SendMessage(msg string)
}

// ConsoleSource is the proxy console. It holds every permission.
type ConsoleSource struct{}

// Name returns "console".
func (ConsoleSource) Name() string { return "console" }

// HasPermission always grants.
func (ConsoleSource) HasPermission(string) bool { return true }

// SendMessage prints to the console.
func (ConsoleSource) SendMessage(msg string) { fmt.Println(msg) }
