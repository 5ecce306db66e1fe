// Package terminal implements the connection screen logic for btterm.
//
// A Session binds to a serial.Service, opens the configured device on first
// entry, encodes outgoing lines, and renders inbound data through a Console.
// It holds no rendering code of its own: the tui package and the send
// command each supply a Console, and the mirror package can be added with
// MultiConsole.
//
// Session methods are not safe for concurrent use. Callers that attach a
// Session to a Service from a goroutine other than the one driving the
// Session should attach a serial.Mailbox instead and dispatch its events on
// the driving goroutine.
package terminal
