package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/btterm/internal/logging"
	"github.com/muurk/btterm/internal/serial"
	"github.com/muurk/btterm/internal/terminal"
)

var (
	sendWait           time.Duration
	sendConnectTimeout time.Duration
	sendQuiet          bool
)

func init() {
	sendCmd.Flags().DurationVar(&sendWait, "wait", 2*time.Second, "How long to print replies after sending")
	sendCmd.Flags().DurationVar(&sendConnectTimeout, "connect-timeout", 20*time.Second, "Give up if the connection is not up in time")
	sendCmd.Flags().BoolVarP(&sendQuiet, "quiet", "q", false, "Do not print status lines")

	rootCmd.AddCommand(sendCmd)
}

// sendCmd sends one message and prints the replies
var sendCmd = &cobra.Command{
	Use:   "send <message>",
	Short: "Send one message and print the replies",
	Long: `Connect to the device, send one message with the configured newline,
print whatever arrives for --wait, then disconnect.

Status lines go to stderr and received data to stdout, so replies can be
piped. With --hex the message is read as hex bytes.`,
	Example: `  # Send a command to the default device
  btterm send "AT"

  # Send raw bytes and wait five seconds for replies
  btterm send --hex "48 65 6C 6C 6F" --wait 5s

  # Pipe the replies of a nicknamed device
  btterm send --device bench "status" -q | grep OK`,
	Args: cobra.ExactArgs(1),
	RunE: runSend,
}

func runSend(cmd *cobra.Command, args []string) error {
	if err := setupLogging(false); err != nil {
		return err
	}
	defer logging.Sync()

	reg, path, err := loadRegistry()
	if err != nil {
		return err
	}
	settings, err := resolveSettings(reg, currentFlags(cmd), nil)
	if err != nil {
		return err
	}

	console := &streamConsole{out: os.Stdout, status: os.Stderr}
	if sendQuiet {
		console.status = io.Discard
	}
	mailbox := serial.NewMailbox()
	env, err := openEnvironment(cmd.Context(), reg, path, settings, console, mailbox)
	if err != nil {
		return err
	}
	defer env.Close()

	return sendOnce(cmd.Context(), env.session, mailbox, console, args[0], sendConnectTimeout, sendWait)
}

// sendSession is the part of terminal.Session sendOnce drives
type sendSession interface {
	serial.Listener
	Enter(ctx context.Context)
	Send(text string)
	Close()
	State() terminal.State
}

// sendOnce connects, sends text once the connection is confirmed, and
// keeps dispatching events for wait. Every session call happens on the
// calling goroutine.
func sendOnce(ctx context.Context, session sendSession, mailbox *serial.Mailbox, console *streamConsole, text string, connectTimeout, wait time.Duration) error {
	defer session.Close()

	session.Enter(ctx)
	if session.State() == terminal.Disconnected {
		return fmt.Errorf("connection failed: %s", console.LastStatus())
	}

	connectTimer := time.NewTimer(connectTimeout)
	defer connectTimer.Stop()
	var done <-chan time.Time
	sent := false

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-connectTimer.C:
			if !sent {
				return errors.New("timed out waiting for the connection")
			}

		case <-done:
			return nil

		case <-mailbox.Ready():
			for _, ev := range mailbox.Drain() {
				ev.Dispatch(session)
			}

			switch session.State() {
			case terminal.Connected:
				if !sent {
					console.notice = ""
					session.Send(text)
					sent = true
					if console.notice != "" {
						return errors.New(console.notice)
					}
					if session.State() == terminal.Disconnected {
						return fmt.Errorf("send failed: %s", console.LastStatus())
					}
					done = time.After(wait)
				}
			case terminal.Disconnected:
				if !sent {
					return fmt.Errorf("connection failed: %s", console.LastStatus())
				}
				// The device closed the connection after our message
				return nil
			}
		}
	}
}

// streamConsole prints received data to out and everything else to status
type streamConsole struct {
	out    io.Writer
	status io.Writer
	last   string
	notice string
}

var _ terminal.Console = (*streamConsole)(nil)

func (c *streamConsole) Status(text string) {
	c.last = text
	fmt.Fprintf(c.status, "* %s\n", text)
}

func (c *streamConsole) Sent(text string) {
	fmt.Fprintf(c.status, "> %s\n", text)
}

func (c *streamConsole) Received(text string) {
	fmt.Fprint(c.out, text)
}

func (c *streamConsole) Notice(text string) {
	c.notice = text
	fmt.Fprintf(c.status, "! %s\n", text)
}

// LastStatus returns the last status line without its prefix
func (c *streamConsole) LastStatus() string {
	for _, prefix := range []string{terminal.StatusConnectionFailed, terminal.StatusConnectionLost} {
		if rest, ok := strings.CutPrefix(c.last, prefix); ok {
			return rest
		}
	}
	return c.last
}
