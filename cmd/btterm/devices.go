package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/btterm/internal/bluez"
	"github.com/muurk/btterm/internal/config"
	"github.com/muurk/btterm/internal/ui"
)

var (
	devicesAll   bool
	devicesSaved bool
)

func init() {
	devicesCmd.Flags().BoolVar(&devicesAll, "all", false, "Include devices that are known but not paired")
	devicesCmd.Flags().BoolVar(&devicesSaved, "saved", false, "List devices saved in the config file instead of asking BlueZ")

	rootCmd.AddCommand(devicesCmd)
}

// devicesCmd lists devices known to BlueZ
var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List paired Bluetooth devices",
	Long: `List the devices BlueZ knows about, with the serial services they
advertise. By default only paired or bonded devices are shown.`,
	Example: `  # Paired devices on the default adapter
  btterm devices

  # Everything BlueZ has seen on hci1
  btterm devices --all --adapter hci1

  # Devices remembered from earlier sessions
  btterm devices --saved`,
	Args: cobra.NoArgs,
	RunE: runDevices,
}

func runDevices(cmd *cobra.Command, args []string) error {
	if err := setupLogging(false); err != nil {
		return err
	}

	reg, path, err := loadRegistry()
	if err != nil {
		return err
	}
	printer := ui.NewPrinter(cmd.OutOrStdout())

	if devicesSaved {
		printer.PrintHeader("Saved devices", "btterm devices --saved", map[string]string{"Config": path})
		printer.PrintTable(savedDevicesTable(reg), "No saved devices. Connect to a device to remember it.")
		return nil
	}

	adapter := adapterFlag
	if adapter == "" && reg.Preferences != nil && reg.Preferences.Adapter != "" {
		adapter = reg.Preferences.Adapter
	}

	client, err := bluez.NewClient(adapter)
	if err != nil {
		printer.PrintError("Cannot reach BlueZ", err, []string{
			"Check that bluetoothd is running (systemctl status bluetooth)",
			"Check that the system D-Bus is available",
		})
		return err
	}
	defer client.Close()

	devices, err := client.ListDevices(cmd.Context(), !devicesAll)
	if err != nil {
		return fmt.Errorf("failed to list devices: %w", err)
	}

	title := "Paired devices"
	if devicesAll {
		title = "Known devices"
	}
	printer.PrintHeader(title, "btterm devices", map[string]string{"Adapter": client.Adapter()})
	printer.PrintTable(devicesTable(devices, reg), "No devices found. Pair the device with bluetoothctl first.")
	return nil
}

func devicesTable(devices []bluez.Device, reg *config.Registry) *ui.Table {
	table := ui.NewTable("ADDRESS", "NAME", "NICKNAME", "SERVICES", "STATE")
	for _, dev := range devices {
		nickname := ""
		if saved := reg.GetDevice(dev.Address); saved != nil {
			nickname = saved.Nickname
		}
		table.AddRow(dev.Address, dev.DisplayName(), nickname, serviceTags(&dev), deviceState(&dev))
	}
	return table
}

func savedDevicesTable(reg *config.Registry) *ui.Table {
	table := ui.NewTable("ADDRESS", "NICKNAME", "NAME", "TRANSPORT", "LAST SEEN")
	for _, addr := range sortedKeys(reg.Devices) {
		d := reg.Devices[addr]
		lastSeen := ""
		if !d.LastSeen.IsZero() {
			lastSeen = d.LastSeen.Local().Format(time.DateTime)
		}
		table.AddRow(addr, d.Nickname, d.Name, d.Transport, lastSeen)
	}
	return table
}

func serviceTags(dev *bluez.Device) string {
	var tags []string
	if dev.SupportsSerialPort() {
		tags = append(tags, "SPP")
	}
	if dev.SupportsNordicUART() {
		tags = append(tags, "BLE UART")
	}
	return strings.Join(tags, ", ")
}

func deviceState(dev *bluez.Device) string {
	var states []string
	if dev.Connected {
		states = append(states, "connected")
	}
	if dev.Paired || dev.Bonded {
		states = append(states, "paired")
	}
	if dev.Trusted {
		states = append(states, "trusted")
	}
	return strings.Join(states, ", ")
}
