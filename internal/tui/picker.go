package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/btterm/internal/bluez"
)

// ErrNoSelection is returned by Pick when the user quits without choosing
var ErrNoSelection = errors.New("no device selected")

// deviceItem wraps a bluez.Device for use with bubbles/list
type deviceItem struct {
	device bluez.Device
}

// FilterValue filters by name and address
func (d deviceItem) FilterValue() string {
	return d.device.DisplayName() + " " + d.device.Address
}

// Title returns the device name for list display
func (d deviceItem) Title() string {
	return d.device.DisplayName()
}

// Description returns device details for list display
func (d deviceItem) Description() string {
	var tags []string
	if d.device.SupportsSerialPort() {
		tags = append(tags, "SPP")
	}
	if d.device.SupportsNordicUART() {
		tags = append(tags, "BLE UART")
	}
	if d.device.Connected {
		tags = append(tags, "connected")
	}
	if len(tags) == 0 {
		return d.device.Address
	}
	return fmt.Sprintf("%s • %s", d.device.Address, strings.Join(tags, " • "))
}

// PickerModel lists devices and lets the user choose one
type PickerModel struct {
	List     list.Model
	Keys     pickerKeyMap
	Selected *bluez.Device
	Width    int
	Height   int
}

// NewPickerModel creates a picker over the given devices
func NewPickerModel(devices []bluez.Device) PickerModel {
	items := make([]list.Item, len(devices))
	for i, dev := range devices {
		items[i] = deviceItem{device: dev}
	}

	keys := newPickerKeyMap()
	l := list.New(items, list.NewDefaultDelegate(), DefaultWidth, DefaultHeight-4)
	l.Title = "Paired Devices"
	l.Styles.Title = TitleStyle
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Choose}
	}

	return PickerModel{
		List:   l,
		Keys:   keys,
		Width:  DefaultWidth,
		Height: DefaultHeight,
	}
}

// Init implements tea.Model
func (m PickerModel) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.List.SetSize(msg.Width, msg.Height-2)

	case tea.KeyMsg:
		// While filtering, keys belong to the filter input
		if m.List.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.Keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.Keys.Choose):
			if item, ok := m.List.SelectedItem().(deviceItem); ok {
				dev := item.device
				m.Selected = &dev
				return m, tea.Quit
			}
		}
	}

	var cmd tea.Cmd
	m.List, cmd = m.List.Update(msg)
	return m, cmd
}

// View renders the picker
func (m PickerModel) View() string {
	if m.Selected != nil {
		return ""
	}
	return m.List.View()
}

// Pick shows the picker and returns the chosen device
func Pick(devices []bluez.Device) (*bluez.Device, error) {
	if len(devices) == 0 {
		return nil, errors.New("no paired devices to choose from")
	}

	final, err := tea.NewProgram(NewPickerModel(devices), tea.WithAltScreen()).Run()
	if err != nil {
		return nil, fmt.Errorf("device picker failed: %w", err)
	}
	picker, ok := final.(PickerModel)
	if !ok || picker.Selected == nil {
		return nil, ErrNoSelection
	}
	return picker.Selected, nil
}
