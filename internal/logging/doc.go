// Package logging provides structured logging for btterm.
//
// This package wraps a zap logger with convenience functions for the logging
// patterns used throughout the application. Logging is silent by default so
// that the terminal UI owns the screen; it is switched on with the
// BTTERM_LOG_LEVEL environment variable or the --log-level flag.
//
// # Log Levels
//
//   - Debug: hex dumps of every chunk read or written
//   - Info: connection lifecycle (lookup, open, close)
//   - Warn: connection loss, dropped mirror clients
//   - Error: startup failures
//
// # Structured Logging
//
// All log functions use structured fields:
//
//	logging.Info("Device resolved",
//	    zap.String("address", "48:E7:29:9F:90:06"),
//	    zap.String("name", "HC-05"),
//	)
//
// # Specialized Logging
//
// Connection events:
//
//	logging.LogConnection(address, "open_started")
//	logging.LogConnection(address, "open_failed")
//
// Serial traffic:
//
//	logging.LogSerialData(address, "received", chunk)
//	logging.LogSerialData(address, "sent", data)
//
// # Output
//
// Non-interactive commands log to stdout in console format. The interactive
// terminal cannot share stdout with Bubble Tea, so it initializes logging
// with InitializeToFile:
//
//	if err := logging.InitializeToFile(level, "/tmp/btterm.log"); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// # Thread Safety
//
// All logging functions are safe for concurrent use.
package logging
