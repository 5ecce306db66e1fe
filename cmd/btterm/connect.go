package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/btterm/internal/bluez"
	"github.com/muurk/btterm/internal/config"
	"github.com/muurk/btterm/internal/logging"
	"github.com/muurk/btterm/internal/mirror"
	"github.com/muurk/btterm/internal/serial"
	"github.com/muurk/btterm/internal/terminal"
	"github.com/muurk/btterm/internal/transport"
	"github.com/muurk/btterm/internal/tui"
)

var pickFlag bool

func init() {
	connectCmd.Flags().BoolVar(&pickFlag, "pick", false, "Choose from paired devices before connecting")
	rootCmd.Flags().BoolVar(&pickFlag, "pick", false, "Choose from paired devices before connecting")

	rootCmd.AddCommand(connectCmd)
}

// connectCmd opens the interactive terminal
var connectCmd = &cobra.Command{
	Use:   "connect [address]",
	Short: "Open the interactive terminal",
	Long: `Open the interactive terminal for a device.

The device is looked up through BlueZ, then the connection is opened over
the selected transport. "auto" uses BLE for devices that only advertise the
Nordic UART service and RFCOMM otherwise.

Keys:
  enter    send the current line
  ctrl+x   toggle hex mode
  ctrl+d   disconnect
  ctrl+l   clear the log
  esc      quit`,
	Example: `  # Connect to the default device
  btterm connect

  # Connect by address or saved nickname
  btterm connect 48:E7:29:9F:90:06
  btterm connect bench

  # Choose from paired devices
  btterm connect --pick

  # Use a bound rfcomm TTY with LF line endings
  btterm connect --transport tty --port-path /dev/rfcomm1 --newline lf

  # Mirror the session to WebSocket clients
  btterm connect --mirror 127.0.0.1:8765`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConnect,
}

func runConnect(cmd *cobra.Command, args []string) error {
	if err := setupLogging(true); err != nil {
		return err
	}
	defer logging.Sync()

	ctx := cmd.Context()
	reg, path, err := loadRegistry()
	if err != nil {
		return err
	}

	if pickFlag {
		addr, err := pickDevice(ctx, reg)
		if err != nil {
			return err
		}
		args = []string{addr}
	}

	settings, err := resolveSettings(reg, currentFlags(cmd), args)
	if err != nil {
		return err
	}

	log := tui.NewLog()
	mailbox := serial.NewMailbox()
	env, err := openEnvironment(ctx, reg, path, settings, log, mailbox)
	if err != nil {
		return err
	}
	defer env.Close()

	title := settings.Address
	if settings.Nickname != "" {
		title = fmt.Sprintf("%s (%s)", settings.Nickname, settings.Address)
	}
	return tui.Run(ctx, tui.Options{
		Session: env.session,
		Log:     log,
		Mailbox: mailbox,
		Title:   title,
	})
}

// environment owns everything a session needs for its lifetime
type environment struct {
	session       *terminal.Session
	holder        *serial.Service
	mirror        *mirror.Mirror
	closeResolver func() error
}

// openEnvironment wires holder, resolver, transports and consoles into a
// session whose events go to listener
func openEnvironment(ctx context.Context, reg *config.Registry, path string, s *sessionSettings, console terminal.Console, listener serial.Listener) (*environment, error) {
	resolver, closeResolver := bluez.NewResolver(s.Adapter, !s.Transport.NeedsDevice())
	env := &environment{
		holder:        serial.NewService(),
		closeResolver: closeResolver,
	}

	consoles := terminal.MultiConsole{console}
	if s.MirrorAddr != "" {
		env.mirror = mirror.New(mirror.Config{Addr: s.MirrorAddr, Device: s.Address})
		if err := env.mirror.Start(); err != nil {
			env.Close()
			return nil, err
		}
		consoles = append(consoles, env.mirror)
	}

	session, err := terminal.NewSession(terminal.Config{
		Address:  s.Address,
		Newline:  s.Newline,
		Hex:      s.Hex,
		Holder:   env.holder,
		Resolver: recordingResolver{Resolver: resolver, registry: reg, path: path},
		Sockets:  transport.Factory(s.Transport),
		Console:  consoles,
		Listener: listener,
	})
	if err != nil {
		env.Close()
		return nil, err
	}
	env.session = session

	logging.Info("Session ready",
		zap.String("address", s.Address),
		zap.String("transport", string(s.Transport.Transport)),
		zap.String("newline", s.Newline.Name()),
	)
	return env, nil
}

// Close releases the session, the holder, the mirror and the D-Bus connection
func (e *environment) Close() {
	if e.session != nil {
		e.session.Close()
	}
	e.holder.Close()
	if e.mirror != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := e.mirror.Shutdown(ctx); err != nil {
			logging.Warn("Mirror shutdown failed", zap.Error(err))
		}
		cancel()
	}
	if err := e.closeResolver(); err != nil {
		logging.Debug("Failed to close BlueZ connection", zap.Error(err))
	}
}

// recordingResolver remembers every successfully resolved device in the
// registry so `btterm devices --saved` can list it later
type recordingResolver struct {
	bluez.Resolver
	registry *config.Registry
	path     string
}

func (r recordingResolver) Resolve(ctx context.Context, address string) (*bluez.Device, error) {
	dev, err := r.Resolver.Resolve(ctx, address)
	if err != nil || r.registry == nil {
		return dev, err
	}

	r.registry.UpdateDeviceLastSeen(dev.Address, dev.DisplayName(), dev.UUIDs)
	if r.path != "" {
		if err := r.registry.SaveFile(r.path); err != nil {
			logging.Warn("Failed to save registry", zap.Error(err))
		}
	}
	return dev, nil
}

// pickDevice lists paired devices through BlueZ and lets the user choose one
func pickDevice(ctx context.Context, reg *config.Registry) (string, error) {
	adapter := adapterFlag
	if adapter == "" && reg.Preferences != nil {
		adapter = reg.Preferences.Adapter
	}

	client, err := bluez.NewClient(adapter)
	if err != nil {
		return "", err
	}
	defer client.Close()

	devices, err := client.ListDevices(ctx, true)
	if err != nil {
		return "", err
	}

	dev, err := tui.Pick(devices)
	if errors.Is(err, tui.ErrNoSelection) {
		return "", errors.New("cancelled")
	}
	if err != nil {
		return "", err
	}
	return dev.Address, nil
}
