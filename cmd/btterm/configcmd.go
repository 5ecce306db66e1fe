package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/muurk/btterm/internal/config"
	"github.com/muurk/btterm/internal/ui"
)

var resetYes bool

func init() {
	configResetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "Do not ask for confirmation")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetDeviceCmd)
	configCmd.AddCommand(configSetNewlineCmd)
	configCmd.AddCommand(configNicknameCmd)
	configCmd.AddCommand(configResetCmd)
	rootCmd.AddCommand(configCmd)
}

// configCmd groups the registry management commands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change saved settings",
	Long: `Show or change the settings stored in the btterm config file.

Settings saved here are used when the matching flag is not given.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, path, err := loadRegistry()
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(reg)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}

		printer := ui.NewPrinter(cmd.OutOrStdout())
		printer.PrintHeader("Configuration", "btterm config show", map[string]string{
			"Path":    path,
			"Devices": strconv.Itoa(len(reg.Devices)),
		})
		printer.Print(string(data))
		return nil
	},
}

var configSetDeviceCmd = &cobra.Command{
	Use:     "set-device <address>",
	Short:   "Set the default device",
	Example: `  btterm config set-device 48:E7:29:9F:90:06`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateRegistry(cmd, "Default device updated", func(reg *config.Registry) (map[string]string, error) {
			addr, err := reg.LookupAddress(args[0])
			if err != nil {
				return nil, err
			}
			if err := reg.SetDefaultDevice(addr); err != nil {
				return nil, err
			}
			return map[string]string{"Device": reg.DefaultDevice()}, nil
		})
	},
}

var configSetNewlineCmd = &cobra.Command{
	Use:   "set-newline <crlf|lf> [address]",
	Short: "Set the newline style, globally or for one device",
	Example: `  # All devices
  btterm config set-newline lf

  # One device only
  btterm config set-newline crlf 48:E7:29:9F:90:06`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateRegistry(cmd, "Newline updated", func(reg *config.Registry) (map[string]string, error) {
			if len(args) == 1 {
				if err := reg.SetNewline(args[0]); err != nil {
					return nil, err
				}
				return map[string]string{"Newline": reg.Preferences.Newline}, nil
			}

			addr, err := reg.LookupAddress(args[1])
			if err != nil {
				return nil, err
			}
			if err := reg.SetDeviceNewline(addr, args[0]); err != nil {
				return nil, err
			}
			return map[string]string{"Device": addr, "Newline": reg.GetDevice(addr).Newline}, nil
		})
	},
}

var configNicknameCmd = &cobra.Command{
	Use:     "nickname <address> <name>",
	Short:   "Give a device a nickname usable in place of its address",
	Example: `  btterm config nickname 48:E7:29:9F:90:06 bench`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateRegistry(cmd, "Nickname saved", func(reg *config.Registry) (map[string]string, error) {
			addr, err := reg.LookupAddress(args[0])
			if err != nil {
				return nil, err
			}
			reg.SetDeviceNickname(addr, args[1])
			return map[string]string{"Device": addr, "Nickname": args[1]}, nil
		})
	},
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}

		printer := ui.NewPrinter(cmd.OutOrStdout())
		if !resetYes && !printer.Confirm(cmd.InOrStdin(), "Reset configuration",
			[]string{"Saved devices and nicknames are removed", "Preferences return to their defaults"},
			"Reset "+path+"?") {
			return nil
		}

		if err := config.NewRegistry().SaveFile(path); err != nil {
			return err
		}
		printer.PrintSuccess("Configuration reset", map[string]string{"Path": path})
		return nil
	},
}

// updateRegistry loads the registry, applies change, saves and reports
func updateRegistry(cmd *cobra.Command, title string, change func(reg *config.Registry) (map[string]string, error)) error {
	reg, path, err := loadRegistry()
	if err != nil {
		return err
	}
	details, err := change(reg)
	if err != nil {
		return err
	}
	if err := reg.SaveFile(path); err != nil {
		return err
	}

	ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess(title, details)
	return nil
}

func sortedKeys(devices map[string]*config.Device) []string {
	keys := make([]string, 0, len(devices))
	for k, d := range devices {
		if d != nil {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
