package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/btterm/internal/discovery"
	"github.com/muurk/btterm/internal/ui"
)

var (
	scanTimeout    int
	scanBLE        bool
	scanMDNS       bool
	scanUARTOnly   bool
	scanNamePrefix string
)

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", 0, "Scan timeout in seconds (default from config, 10)")
	scanCmd.Flags().BoolVar(&scanBLE, "ble", false, "Scan for advertising BLE devices (default when no scan type is given)")
	scanCmd.Flags().BoolVar(&scanMDNS, "mdns", false, "Scan the local network for TCP serial bridges")
	scanCmd.Flags().BoolVar(&scanUARTOnly, "uart", false, "Only show BLE devices advertising the Nordic UART service")
	scanCmd.Flags().StringVar(&scanNamePrefix, "name", "", "Only show BLE devices whose name starts with this")

	rootCmd.AddCommand(scanCmd)
}

// scanCmd discovers devices
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for BLE devices and serial bridges",
	Long: `Scan for devices to connect to.

--ble listens for BLE advertisements and lists each device once, strongest
signal first. --mdns browses the local network for ser2net and telnet
serial bridges that the tcp transport can connect to.`,
	Example: `  # BLE scan for 10 seconds (default)
  btterm scan

  # Only BLE UART devices, 5 second scan
  btterm scan --uart --timeout 5

  # Serial bridges on the network
  btterm scan --mdns

  # Both
  btterm scan --ble --mdns`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	if err := setupLogging(false); err != nil {
		return err
	}

	reg, _, err := loadRegistry()
	if err != nil {
		return err
	}

	timeout := scanTimeout
	if timeout <= 0 && reg.Preferences != nil {
		timeout = reg.Preferences.ScanTimeout
	}
	if timeout <= 0 {
		timeout = int(discovery.DefaultScanTimeout / time.Second)
	}
	doBLE := scanBLE || !scanMDNS

	printer := ui.NewPrinter(cmd.OutOrStdout())
	printer.PrintHeader("Device scan", "btterm scan", map[string]string{
		"Timeout": strconv.Itoa(timeout) + "s",
		"BLE":     strconv.FormatBool(doBLE),
		"mDNS":    strconv.FormatBool(scanMDNS),
	})

	ctx := cmd.Context()
	d := time.Duration(timeout) * time.Second

	if doBLE {
		if err := scanBLEDevices(ctx, printer, d); err != nil {
			return err
		}
	}
	if scanMDNS {
		if err := scanBridges(ctx, printer, d); err != nil {
			return err
		}
	}
	return nil
}

func scanBLEDevices(ctx context.Context, printer *ui.Printer, timeout time.Duration) error {
	scanner := discovery.NewBLEScanner()
	scanner.Timeout = timeout
	scanner.UARTOnly = scanUARTOnly
	scanner.NamePrefix = scanNamePrefix

	devices, err := scanner.Scan(ctx)
	if err != nil {
		printer.PrintError("BLE scan failed", err, []string{
			"Check that the Bluetooth adapter is powered on",
			"Scanning may need root or the CAP_NET_ADMIN capability",
		})
		return err
	}

	table := ui.NewTable("ADDRESS", "NAME", "RSSI", "UART")
	for _, dev := range devices {
		uart := ""
		if dev.UART {
			uart = "yes"
		}
		table.AddRow(dev.Address, dev.Name, fmt.Sprintf("%d dBm", dev.RSSI), uart)
	}
	printer.Println("")
	printer.PrintTable(table, "No BLE devices found.")
	return nil
}

func scanBridges(ctx context.Context, printer *ui.Printer, timeout time.Duration) error {
	scanner := discovery.NewScanner()
	scanner.Timeout = timeout

	bridges, err := scanner.ScanForBridgesWithContext(ctx)
	if err != nil {
		printer.PrintError("mDNS scan failed", err, []string{
			"Check that multicast traffic is allowed on this network",
		})
		return err
	}

	table := ui.NewTable("INSTANCE", "ADDRESS", "SERVICE", "HOST")
	for _, b := range bridges {
		table.AddRow(b.Instance, b.Addr(), b.Service, b.Hostname)
	}
	printer.Println("")
	printer.PrintTable(table, "No serial bridges found.")
	if len(bridges) > 0 {
		printer.Println(ui.TableMutedStyle.Render(fmt.Sprintf("  Connect with: btterm --transport tcp --tcp-addr %s", bridges[0].Addr())))
	}
	return nil
}
