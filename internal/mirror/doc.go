// Package mirror serves a read-only WebSocket feed of the terminal log.
//
// A Mirror implements terminal.Console. Every status line, sent message,
// received chunk and notice is published as a JSON event to all clients
// connected to /ws:
//
//	{"type":"received","text":"OK\n","time":"2025-01-02T15:04:05.123Z"}
//
// New clients first receive the most recent events (see Config.History),
// then live events. Slow clients are dropped rather than allowed to stall
// the terminal: publishing never blocks the caller.
//
// The mirror is optional and only started with --mirror.
package mirror
