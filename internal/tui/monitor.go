package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hco/sparkping/internal/discovery"
	"github.com/hco/sparkping/internal/monitor"
)

// Messages for monitor interaction
type monitorChangedMsg struct{}
type startResultMsg struct{ err error }

// monitorKeyMap defines key bindings for the monitor screen
type monitorKeyMap struct {
	Up    key.Binding
	Down  key.Binding
	Start key.Binding
	Stop  key.Binding
	Clear key.Binding
	Quit  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k monitorKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Start, k.Stop, k.Clear, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k monitorKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Start, k.Stop, k.Clear, k.Quit},
	}
}

// deviceItem wraps a discovered device for use with bubbles/list
type deviceItem struct {
	device discovery.Device
}

// FilterValue implements list.Item; filter by name, address, or hostname
func (d deviceItem) FilterValue() string {
	return d.device.Name + " " + d.device.Address + " " + d.device.Hostname
}

// deviceDelegate is a custom list delegate for rendering device cards
type deviceDelegate struct {
	width int
}

func (d deviceDelegate) Height() int { return 7 } // Card height including borders

func (d deviceDelegate) Spacing() int { return 1 } // Spacing between cards

func (d deviceDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d deviceDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	deviceItem, ok := item.(deviceItem)
	if !ok {
		return
	}

	device := deviceItem.device
	selected := index == m.Index()

	name := device.Name
	if name == "" {
		name = device.Hostname
	}
	if name == "" {
		name = device.Address
	}

	var content strings.Builder

	if selected {
		content.WriteString(SelectedItemStyle.Render("→ " + name))
	} else {
		content.WriteString("  " + name)
	}
	content.WriteString("\n\n")

	content.WriteString(fmt.Sprintf("  Address:  %s\n", device.Address))
	if device.Hostname != "" {
		content.WriteString(fmt.Sprintf("  Hostname: %s\n", device.Hostname))
	}

	var details []string
	if len(device.Services) > 0 {
		details = append(details, fmt.Sprintf("%d service(s)", len(device.Services)))
	}
	if len(device.Addresses) > 1 {
		details = append(details, fmt.Sprintf("%d addresses", len(device.Addresses)))
	}
	if device.DiscoveryMethod != "" {
		details = append(details, "via "+device.DiscoveryMethod)
	}
	content.WriteString("  " + SubtitleStyle.Render(strings.Join(details, " • ")))

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor).
		Padding(1, 2).
		MarginLeft(2)

	cardWidth := d.width - 6
	if cardWidth < MinTerminalWidth-6 {
		cardWidth = MinTerminalWidth - 6
	}
	if cardWidth > MaxContentWidth-6 {
		cardWidth = MaxContentWidth - 6
	}
	cardStyle = cardStyle.Width(cardWidth)

	if selected {
		cardStyle = cardStyle.BorderForeground(HighlightColor)
	}

	fmt.Fprint(w, cardStyle.Render(content.String()))
}

// MonitorModel is the live discovery monitor screen: a status header
// driven by the monitor's snapshot and a card list of discovered
// devices.
type MonitorModel struct {
	Monitor *monitor.Monitor

	// Last observed state
	Snapshot monitor.Snapshot

	// UI state
	DeviceList list.Model
	Spinner    spinner.Model
	Help       help.Model
	Keys       monitorKeyMap
	Width      int
	Height     int
}

// NewMonitorModel creates the monitor screen for an existing monitor
func NewMonitorModel(m *monitor.Monitor) MonitorModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	delegate := deviceDelegate{width: MinTerminalWidth}
	deviceList := list.New([]list.Item{}, delegate, 0, 0)
	deviceList.Title = "Discovered Devices"
	deviceList.SetShowStatusBar(false)
	deviceList.SetFilteringEnabled(true)
	deviceList.SetShowHelp(false)
	deviceList.Styles.Title = TitleStyle

	keys := monitorKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		Start: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "start"),
		),
		Stop: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "stop"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "quit"),
		),
	}

	return MonitorModel{
		Monitor:    m,
		Snapshot:   m.Snapshot(),
		DeviceList: deviceList,
		Spinner:    s,
		Help:       help.New(),
		Keys:       keys,
	}
}

// Init starts discovery immediately and begins listening for changes
func (m MonitorModel) Init() tea.Cmd {
	return tea.Batch(
		m.startDiscovery(),
		m.waitForChange(),
		m.Spinner.Tick,
	)
}

// startDiscovery is a command that opens a new discovery session
func (m MonitorModel) startDiscovery() tea.Cmd {
	mon := m.Monitor
	return func() tea.Msg {
		return startResultMsg{err: mon.Start(context.Background())}
	}
}

// waitForChange is a command that blocks until the monitor reports a
// state change
func (m MonitorModel) waitForChange() tea.Cmd {
	mon := m.Monitor
	return func() tea.Msg {
		<-mon.Updates()
		return monitorChangedMsg{}
	}
}

// Update handles messages and updates the model
func (m MonitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// While the list filter input is active, keystrokes belong to it
		if m.DeviceList.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.Monitor.Close()
			return m, tea.Quit

		case "s":
			return m, m.startDiscovery()

		case "x":
			m.Monitor.Stop()
			m.refresh()
			return m, nil

		case "c":
			m.Monitor.ClearDevices()
			m.refresh()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.DeviceList.SetDelegate(deviceDelegate{width: msg.Width})
		m.DeviceList.SetWidth(msg.Width - 4)
		m.DeviceList.SetHeight(msg.Height - 10) // Leave room for header/footer

	case monitorChangedMsg:
		m.refresh()
		return m, m.waitForChange()

	case startResultMsg:
		// Dial failures already land in the snapshot as an error
		// status; the updates listener armed in Init stays the only
		// one, so just repaint
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	m.DeviceList, cmd = m.DeviceList.Update(msg)
	return m, cmd
}

// refresh pulls the latest snapshot into the list
func (m *MonitorModel) refresh() {
	m.Snapshot = m.Monitor.Snapshot()

	items := make([]list.Item, len(m.Snapshot.Devices))
	for i, device := range m.Snapshot.Devices {
		items[i] = deviceItem{device: device}
	}
	m.DeviceList.SetItems(items)
}

// View renders the monitor screen
func (m MonitorModel) View() string {
	var b strings.Builder

	b.WriteString(m.renderStatusLine())
	b.WriteString("\n")

	if m.Snapshot.Status == monitor.StatusError {
		b.WriteString(RenderError(m.Snapshot.Message))
		b.WriteString("\n\n")
		b.WriteString("  Press 's' to restart discovery or 'c' to dismiss.\n")
	} else if len(m.DeviceList.Items()) == 0 {
		b.WriteString("\n")
		if m.Snapshot.Running {
			b.WriteString(SubtitleStyle.Render("  Listening for devices..."))
		} else {
			b.WriteString(SubtitleStyle.Render("  No devices. Press 's' to start discovery."))
		}
		b.WriteString("\n")
	} else {
		b.WriteString(m.DeviceList.View())
	}

	width, height := m.Width, m.Height
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}
	if height < 24 {
		height = 24
	}
	return RenderApplicationContainer(b.String(), m.Help.View(m.Keys), width, height)
}

// renderStatusLine renders the status, message, and device count header
func (m MonitorModel) renderStatusLine() string {
	var status string
	switch m.Snapshot.Status {
	case monitor.StatusRunning:
		status = RunningStyle.Render(m.Spinner.View() + " RUNNING")
	case monitor.StatusError:
		status = ErrorStatusStyle.Render("● ERROR")
	default:
		status = IdleStyle.Render("● IDLE")
	}

	line := fmt.Sprintf(" %s  Devices: %d", status, len(m.Snapshot.Devices))
	if m.Snapshot.Message != "" {
		line += "  " + SubtitleStyle.Render(m.Snapshot.Message)
	}
	return StatusBarStyle.Render(line)
}

// Run starts the full-screen monitor program and blocks until exit
func Run(m *monitor.Monitor) error {
	program := tea.NewProgram(NewMonitorModel(m), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
