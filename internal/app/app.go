package app

import (
	"time"

	"eddystone-radar.klederson.com/internal/beacon"
	"eddystone-radar.klederson.com/internal/config"
	"eddystone-radar.klederson.com/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
)

// AppModel is the root Bubble Tea model for the beacon radar.
type AppModel struct {
	width  int
	height int

	scanning bool
	adapter  string
	cursor   int
	detail   bool
	err      error

	reg *beacon.Registry

	// Telemetry samples per beacon identity. Only touched from Update.
	history map[string]*Ring
	events  []ui.LogEntry

	// Cached snapshot
	beacons []beacon.Beacon
}

// New creates an AppModel displaying reg.
func New(reg *beacon.Registry, adapter string) AppModel {
	return AppModel{
		scanning: true,
		adapter:  adapter,
		reg:      reg,
		history:  make(map[string]*Ring),
	}
}

// Attach forwards registry events to p. The returned function detaches.
func (m AppModel) Attach(p *tea.Program) func() {
	return m.reg.Subscribe(func(ev beacon.Event) {
		p.Send(BeaconEventMsg(ev))
	})
}

func (m AppModel) Init() tea.Cmd {
	return tickCmd()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case TickMsg:
		m.refresh()
		return m, tickCmd()

	case BeaconEventMsg:
		m.record(beacon.Event(msg))
		m.refresh()
		return m, nil

	case ScanStateMsg:
		m.scanning = msg.Running
		m.err = msg.Err
		return m, nil
	}

	return m, nil
}

func (m *AppModel) record(ev beacon.Event) {
	m.events = append(m.events, ui.LogEntry{At: time.Now(), Kind: ev.Kind, Beacon: ev.Beacon})
	if len(m.events) > config.EventLogSize {
		m.events = m.events[len(m.events)-config.EventLogSize:]
	}

	uid := ev.Beacon.UID
	switch ev.Kind {
	case beacon.EventUpdated:
		if !ev.Beacon.HasTelemetry {
			return
		}
		r, ok := m.history[uid]
		if !ok {
			r = NewRing(config.TempHistoryLen)
			m.history[uid] = r
		}
		r.Push(ev.Beacon.Temp)
	case beacon.EventExpired:
		delete(m.history, uid)
	}
}

func (m *AppModel) refresh() {
	m.beacons = m.reg.Snapshot()
	if m.cursor >= len(m.beacons) {
		m.cursor = len(m.beacons) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if len(m.beacons) == 0 {
		m.detail = false
	}
}

func (m AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		return m, tea.Quit

	case "s", "S":
		if !m.scanning {
			return m, startCmd(m.reg)
		}

	case "p", "P":
		if m.scanning {
			return m, stopCmd(m.reg)
		}

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.beacons)-1 {
			m.cursor++
		}

	case "home":
		m.cursor = 0

	case "end":
		if len(m.beacons) > 0 {
			m.cursor = len(m.beacons) - 1
		}

	case "enter":
		if len(m.beacons) > 0 {
			m.detail = true
		}

	case "esc":
		m.detail = false
	}

	return m, nil
}

func (m AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing Eddystone Radar..."
	}

	bodyH := m.height - 2 // menu + status
	if bodyH < 5 {
		bodyH = 5
	}

	listW := m.width * 2 / 5
	if listW < 30 {
		listW = 30
	}
	rightW := m.width - listW
	if rightW < 20 {
		rightW = 20
	}

	menuBar := ui.RenderMenuBar(m.width, m.adapter, m.scanning)
	list := ui.RenderBeaconList(m.beacons, listW, bodyH, m.cursor)

	var right string
	if m.detail && m.cursor < len(m.beacons) {
		b := m.beacons[m.cursor]
		var temps []float64
		if r, ok := m.history[b.UID]; ok {
			temps = r.Values()
		}
		right = ui.RenderDetailPanel(b, rightW, bodyH, temps, time.Now())
	} else {
		right = ui.RenderEventLog(m.events, rightW, bodyH)
	}

	statusBar := ui.RenderStatusBar(m.width, m.status())

	return ui.ComposeLayout(menuBar, list, right, statusBar)
}

func (m AppModel) status() ui.StatusInfo {
	s := ui.StatusInfo{
		Scanning:   m.scanning,
		Err:        m.err,
		Total:      len(m.beacons),
		Expiration: m.reg.Expiration(),
	}
	for _, b := range m.beacons {
		if b.Kind == beacon.FrameEID {
			s.EID++
		} else {
			s.UID++
		}
		if b.HasTelemetry {
			s.Telemetry++
		}
	}
	return s
}

// Registry start/stop run as commands: stopping waits for the scanner,
// which may itself be blocked sending to this program.
func startCmd(reg *beacon.Registry) tea.Cmd {
	return func() tea.Msg {
		if err := reg.Start(); err != nil {
			return ScanStateMsg{Running: false, Err: err}
		}
		return ScanStateMsg{Running: true}
	}
}

func stopCmd(reg *beacon.Registry) tea.Cmd {
	return func() tea.Msg {
		err := reg.Stop()
		return ScanStateMsg{Running: reg.Running(), Err: err}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(config.TargetFPS), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
