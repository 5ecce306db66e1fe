package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/muurk/btterm/internal/bluez"
	"github.com/muurk/btterm/internal/config"
	"github.com/muurk/btterm/internal/logging"
	"github.com/muurk/btterm/internal/textutil"
	"github.com/muurk/btterm/internal/transport"
)

// Connection flags, shared by every command that opens a device
var (
	deviceFlag    string
	transportFlag string
	channelFlag   int
	portPathFlag  string
	baudFlag      int
	tcpAddrFlag   string
	newlineFlag   string
	hexFlag       bool
	mirrorFlag    string
	adapterFlag   string
	configFlag    string
	logFileFlag   string
	logLevelFlag  string
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&deviceFlag, "device", "", "Device address or nickname (default: configured default device)")
	pf.StringVar(&transportFlag, "transport", "", "Transport: auto, rfcomm, ble, tty or tcp")
	pf.IntVar(&channelFlag, "channel", 0, "RFCOMM channel (1-30)")
	pf.StringVar(&portPathFlag, "port-path", "", "TTY device for the tty transport (default /dev/rfcomm0)")
	pf.IntVar(&baudFlag, "baud", 0, "Baud rate for the tty transport (default 115200)")
	pf.StringVar(&tcpAddrFlag, "tcp-addr", "", "host:port of a serial bridge for the tcp transport")
	pf.StringVar(&newlineFlag, "newline", "", "Newline style: crlf or lf")
	pf.BoolVar(&hexFlag, "hex", false, "Start in hex mode")
	pf.StringVar(&mirrorFlag, "mirror", "", "Serve the session log over WebSocket on this address (e.g. 127.0.0.1:8765)")
	pf.StringVar(&adapterFlag, "adapter", "", "BlueZ adapter (default hci0)")
	pf.StringVar(&configFlag, "config", "", "Config file (default $XDG_CONFIG_HOME/btterm/config.yaml)")
	pf.StringVar(&logFileFlag, "log-file", "", "Log file for the interactive terminal (default btterm.log in the config dir)")
	pf.StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn or error (default $"+logging.LogLevelEnvVar+")")
}

// sessionSettings is everything needed to open one device
type sessionSettings struct {
	Address    string
	Nickname   string
	Newline    textutil.Newline
	Hex        bool
	Adapter    string
	MirrorAddr string
	Transport  transport.Options
}

// flagValues captures the connection flags so resolution can be tested
type flagValues struct {
	Device, Transport, PortPath, TCPAddr, Newline, Mirror, Adapter string
	Channel, Baud                                                  int
	Hex                                                            bool
	changed                                                        func(name string) bool
}

func currentFlags(cmd *cobra.Command) flagValues {
	return flagValues{
		Device:    deviceFlag,
		Transport: transportFlag,
		PortPath:  portPathFlag,
		TCPAddr:   tcpAddrFlag,
		Newline:   newlineFlag,
		Mirror:    mirrorFlag,
		Adapter:   adapterFlag,
		Channel:   channelFlag,
		Baud:      baudFlag,
		Hex:       hexFlag,
		changed:   cmd.Flags().Changed,
	}
}

// resolveSettings merges, in increasing priority: defaults, preferences,
// the saved device entry, and command-line flags. An address argument
// wins over --device.
func resolveSettings(reg *config.Registry, f flagValues, args []string) (*sessionSettings, error) {
	target := reg.DefaultDevice()
	if f.Device != "" {
		target = f.Device
	}
	if len(args) > 0 && args[0] != "" {
		target = args[0]
	}

	addr, err := reg.LookupAddress(target)
	if err != nil {
		return nil, err
	}

	prefs := reg.Preferences
	if prefs == nil {
		prefs = config.NewPreferences()
	}
	dev := reg.GetDevice(addr)
	if dev == nil {
		dev = &config.Device{}
	}

	s := &sessionSettings{
		Address:    addr,
		Nickname:   dev.Nickname,
		Hex:        prefs.Hex,
		Adapter:    prefs.Adapter,
		MirrorAddr: prefs.MirrorAddr,
	}

	// Newline: device override, then preference, then flag
	if s.Newline, err = reg.NewlineFor(addr); err != nil {
		return nil, err
	}
	if f.Newline != "" {
		if s.Newline, err = textutil.ParseNewline(f.Newline); err != nil {
			return nil, err
		}
	}

	transportName := prefs.Transport
	if dev.Transport != "" {
		transportName = dev.Transport
	}
	if f.Transport != "" {
		transportName = f.Transport
	}
	name, err := transport.ParseName(transportName)
	if err != nil {
		return nil, err
	}

	channel := dev.Channel
	if f.Channel != 0 {
		channel = f.Channel
	}
	if channel < 0 || channel > 30 {
		return nil, fmt.Errorf("channel %d out of range 1-30", channel)
	}

	s.Transport = transport.Options{
		Transport: name,
		Channel:   uint8(channel),
		PortPath:  firstNonEmpty(f.PortPath, dev.PortPath),
		BaudRate:  firstNonZero(f.Baud, dev.BaudRate),
		TCPAddr:   firstNonEmpty(f.TCPAddr, dev.TCPAddr),
	}
	if name == transport.TCP && s.Transport.TCPAddr == "" {
		return nil, fmt.Errorf("the tcp transport needs --tcp-addr")
	}

	if f.changed != nil && f.changed("hex") {
		s.Hex = f.Hex
	}
	if f.Mirror != "" {
		s.MirrorAddr = f.Mirror
	}
	if f.Adapter != "" {
		s.Adapter = f.Adapter
	}
	if s.Adapter == "" {
		s.Adapter = bluez.DefaultAdapter
	}
	s.Transport.Adapter = s.Adapter

	return s, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonZero(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

// configPath returns --config or the default registry location
func configPath() (string, error) {
	if configFlag != "" {
		return configFlag, nil
	}
	return config.GetConfigPath()
}

// loadRegistry loads the registry from configPath
func loadRegistry() (*config.Registry, string, error) {
	path, err := configPath()
	if err != nil {
		return nil, "", err
	}
	reg, err := config.LoadFile(path)
	if err != nil {
		return nil, "", err
	}
	return reg, path, nil
}

// setupLogging configures zap. The interactive terminal owns the screen, so
// it logs to a file; other commands log to stdout.
func setupLogging(toFile bool) error {
	if !toFile {
		return logging.Initialize(logLevelFlag)
	}
	if !logging.Enabled(logLevelFlag) {
		return logging.Initialize(logLevelFlag)
	}

	path := logFileFlag
	if path == "" {
		dir, err := config.GetConfigDir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "btterm.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return logging.InitializeToFile(logLevelFlag, path)
}
