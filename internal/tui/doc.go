// Package tui implements the interactive terminal screen of btterm.
//
// Built on Bubble Tea, it follows the Model-Update-View pattern: every
// session call and every display change happens inside Update, on the
// program's goroutine.
//
// # Screens
//
//   - Terminal: a scrolling log of status lines, sent messages and received
//     text above a single-line input. Enter sends the line, ctrl+x toggles
//     hex mode, ctrl+d disconnects, ctrl+l clears the log.
//   - Picker: a filterable list of paired devices shown before the terminal
//     when no address was given.
//
// # Event Flow
//
// The transport holder delivers connection events on its own goroutines.
// They are collected by a serial.Mailbox, and a command waiting on the
// mailbox turns each batch into an eventsMsg. Update then dispatches the
// batch to the session, so the session is never touched concurrently.
//
// # Framework Components
//
//   - bubbles/viewport: the scrolling log
//   - bubbles/textinput: the message input
//   - bubbles/spinner: shown while a connection is pending
//   - bubbles/list: the device picker
//   - bubbles/help and bubbles/key: key bindings and the footer
//   - lipgloss: styling and layout
package tui
