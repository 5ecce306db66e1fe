package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/btterm/internal/bluez"
	"github.com/muurk/btterm/internal/serial"
	"github.com/muurk/btterm/internal/terminal"
)

// Session is the part of terminal.Session the screen drives
type Session interface {
	serial.Listener
	Begin() bool
	Lookup(ctx context.Context) (*bluez.Device, error)
	Start(ctx context.Context, dev *bluez.Device, err error)
	Send(text string)
	Disconnect()
	Close()
	SetHex(on bool)
	Hex() bool
	State() terminal.State
	Address() string
}

// Messages
type enterMsg struct{}

// lookupMsg carries the result of the device lookup
type lookupMsg struct {
	dev *bluez.Device
	err error
}

// eventsMsg carries a batch of holder events drained from the mailbox
type eventsMsg []serial.Event

// Options configures the terminal screen
type Options struct {
	Session Session
	Log     *Log
	Mailbox *serial.Mailbox

	// Title overrides the device address in the header, e.g. a nickname
	Title string
}

// Model is the terminal screen
type Model struct {
	ctx     context.Context
	session Session
	log     *Log
	mailbox *serial.Mailbox
	title   string

	Viewport viewport.Model
	Input    textinput.Model
	Spinner  spinner.Model
	Help     help.Model
	Keys     terminalKeyMap

	Width    int
	Height   int
	seen     int // log version last copied into the viewport
	looking  bool
	quitting bool
}

// NewModel creates the terminal screen. The session's listener must be
// opts.Mailbox so events reach Update.
func NewModel(ctx context.Context, opts Options) Model {
	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "message"
	input.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	log := opts.Log
	if log == nil {
		log = NewLog()
	}

	m := Model{
		ctx:      ctx,
		session:  opts.Session,
		log:      log,
		mailbox:  opts.Mailbox,
		title:    opts.Title,
		Viewport: viewport.New(DefaultWidth, DefaultHeight-6),
		Input:    input,
		Spinner:  s,
		Help:     help.New(),
		Keys:     newTerminalKeyMap(),
		Width:    DefaultWidth,
		Height:   DefaultHeight,
	}
	m.seen = -1
	m.updatePlaceholder()
	return m
}

// Init starts the session and begins waiting for holder events
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return enterMsg{} },
		waitForEvents(m.ctx, m.mailbox),
		textinput.Blink,
		m.Spinner.Tick,
	)
}

// waitForEvents blocks until the mailbox has events, then drains it
func waitForEvents(ctx context.Context, mb *serial.Mailbox) tea.Cmd {
	if mb == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case <-mb.Ready():
			return eventsMsg(mb.Drain())
		case <-ctx.Done():
			return nil
		}
	}
}

// lookupDevice resolves the device off the UI goroutine
func lookupDevice(ctx context.Context, s Session) tea.Cmd {
	return func() tea.Msg {
		dev, err := s.Lookup(ctx)
		return lookupMsg{dev: dev, err: err}
	}
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case enterMsg:
		if m.session.Begin() {
			m.looking = true
			cmds = append(cmds, lookupDevice(m.ctx, m.session))
		}

	case lookupMsg:
		m.looking = false
		m.session.Start(m.ctx, msg.dev, msg.err)

	case eventsMsg:
		for _, ev := range msg {
			ev.Dispatch(m.session)
		}
		cmds = append(cmds, waitForEvents(m.ctx, m.mailbox))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tea.KeyMsg:
		m.log.ClearNotice()

		switch {
		case key.Matches(msg, m.Keys.Quit):
			m.quitting = true
			m.session.Close()
			return m, tea.Quit

		case key.Matches(msg, m.Keys.Send):
			text := m.Input.Value()
			m.Input.Reset()
			m.session.Send(text)

		case key.Matches(msg, m.Keys.ToggleHex):
			m.session.SetHex(!m.session.Hex())
			m.updatePlaceholder()

		case key.Matches(msg, m.Keys.Disconnect):
			if m.session.State() != terminal.Disconnected {
				m.session.Disconnect()
				m.log.Status("disconnected")
			}

		case key.Matches(msg, m.Keys.Clear):
			m.log.Clear()

		case key.Matches(msg, m.Keys.ScrollUp), key.Matches(msg, m.Keys.ScrollDown):
			var cmd tea.Cmd
			m.Viewport, cmd = m.Viewport.Update(msg)
			cmds = append(cmds, cmd)

		default:
			var cmd tea.Cmd
			m.Input, cmd = m.Input.Update(msg)
			cmds = append(cmds, cmd)
		}

	default:
		var cmd tea.Cmd
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.syncViewport()
	return m, tea.Batch(cmds...)
}

// syncViewport copies new log content into the viewport, following the
// tail unless the user has scrolled up
func (m *Model) syncViewport() {
	if m.log.Version() == m.seen {
		return
	}
	follow := m.Viewport.AtBottom() || m.seen < 0
	m.Viewport.SetContent(m.log.String())
	if follow {
		m.Viewport.GotoBottom()
	}
	m.seen = m.log.Version()
}

func (m *Model) resize(width, height int) {
	m.Width = width
	m.Height = height

	// header (2) + input (1) + notice (1) + footer (2)
	vpHeight := height - 6
	if vpHeight < 3 {
		vpHeight = 3
	}
	m.Viewport.Width = width
	m.Viewport.Height = vpHeight
	m.Input.Width = width - lipgloss.Width(m.Input.Prompt) - 1
	m.Help.Width = width
	m.seen = -1
}

func (m *Model) updatePlaceholder() {
	if m.session != nil && m.session.Hex() {
		m.Input.Placeholder = "hex bytes, e.g. 48 65 6C 6C 6F"
	} else {
		m.Input.Placeholder = "message"
	}
}

// View renders the terminal screen
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	notice := ""
	if n := m.log.CurrentNotice(); n != "" {
		notice = NoticeStyle.Render(n)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		m.Viewport.View(),
		m.Input.View(),
		notice,
	)
	return RenderContainer(m.header(), content, m.Help.View(m.Keys), m.Width)
}

func (m Model) header() string {
	target := m.title
	if target == "" {
		target = m.session.Address()
	}

	state := m.session.State()
	badge := RenderState(state.String())
	switch {
	case m.looking:
		badge = m.Spinner.View() + RenderState("looking up")
	case state == terminal.Pending:
		badge = m.Spinner.View() + badge
	}

	mode := "text"
	if m.session.Hex() {
		mode = "hex"
	}

	parts := []string{
		headerTitle(),
		SubtleStyle.Render(target),
		badge,
		SubtleStyle.Render(fmt.Sprintf("[%s]", mode)),
	}
	return strings.Join(parts, "  ")
}

// Run runs the terminal screen until the user quits
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(NewModel(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()

	// Quitting closes the session already; an interrupted program has not
	opts.Session.Close()

	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("terminal screen failed: %w", err)
	}
	return nil
}
