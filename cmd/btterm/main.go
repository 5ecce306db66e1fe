// Btterm is a serial terminal for Bluetooth devices.
//
// It connects to one remote device over an RFCOMM socket, a BLE UART
// service, a bound TTY or a TCP serial bridge, and shows a scrolling log of
// what is sent and received. Messages can be typed as text or as hex bytes.
//
// Usage:
//
//	btterm [address] [flags]
//	btterm [command] [flags]
//
// Running without a command opens the interactive terminal.
// See 'btterm --help' for available commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/muurk/btterm/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "btterm [address]",
	Short: "Bluetooth serial terminal",
	Long: `A serial terminal for Bluetooth devices.

Connects to a device by MAC address (or saved nickname) and opens an
interactive terminal: typed lines are sent with the configured newline,
received data is shown as it arrives. ctrl+x switches between text and
hex input.

If no command is specified, the interactive terminal opens for the given
address, or for the configured default device.`,
	Version:       version.Version,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runConnect,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("btterm %s (commit: %s) %s\n", version.Version, version.Commit, version.Platform())
	},
}
