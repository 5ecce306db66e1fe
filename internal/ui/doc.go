// Package ui provides the styled, non-interactive output of the btterm CLI.
//
// The interactive terminal lives in package tui. Everything here follows a
// "print and exit" pattern: the devices, scan, config and send commands
// render their results with these components and return.
//
// # Components
//
//   - Header: command banner showing the operation and its parameters
//   - Table: aligned device and bridge listings
//   - Result: success, failure and warning boxes
//   - Printer: writes the components to an io.Writer at terminal width
//
// # Logging Integration
//
// zap logging is silent unless BTTERM_LOG_LEVEL is set, so the curated
// output here is not interleaved with log lines.
package ui
