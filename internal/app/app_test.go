package app

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eddystone-radar.klederson.com/internal/beacon"
	"eddystone-radar.klederson.com/internal/bluetooth"
	"eddystone-radar.klederson.com/internal/config"
)

type stubController struct {
	startErr error
}

func (c stubController) StartScanning() error { return c.startErr }
func (c stubController) StopScanning() error  { return nil }

func newTestModel(t *testing.T) (AppModel, *bluetooth.Bus, *beacon.Registry) {
	t.Helper()
	bus := bluetooth.NewBus()
	reg := beacon.New(bus, stubController{}, beacon.WithExpiration(time.Hour))
	require.NoError(t, reg.Start())
	t.Cleanup(func() { _ = reg.Stop() })
	return New(reg, "hci0"), bus, reg
}

func update(t *testing.T, m AppModel, msg tea.Msg) (AppModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	am, ok := next.(AppModel)
	require.True(t, ok)
	return am, cmd
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestRing(t *testing.T) {
	r := NewRing(3)
	assert.Nil(t, r.Values())
	r.Push(1)
	r.Push(2)
	assert.Equal(t, []float64{1, 2}, r.Values())
	r.Push(3)
	r.Push(4)
	assert.Equal(t, []float64{2, 3, 4}, r.Values())
	assert.Equal(t, 3, r.Len())
}

func TestBeaconEventsUpdateModel(t *testing.T) {
	m, bus, reg := newTestModel(t)
	bus.Publish(beacon.Frame{Kind: beacon.FrameUID, UID: "A", RSSI: -60, TxPower: -59})
	bus.Publish(beacon.Frame{Kind: beacon.FrameTelemetry, UID: "A", Temp: 21.5, Voltage: 3000})

	b, ok := reg.Get("A")
	require.True(t, ok)
	m, _ = update(t, m, BeaconEventMsg{Kind: beacon.EventAdded, Beacon: b})
	m, _ = update(t, m, BeaconEventMsg{Kind: beacon.EventUpdated, Beacon: b})

	require.Len(t, m.beacons, 1)
	require.Len(t, m.events, 2)
	require.Contains(t, m.history, "A")
	assert.Equal(t, []float64{21.5}, m.history["A"].Values())

	m, _ = update(t, m, BeaconEventMsg{Kind: beacon.EventExpired, Beacon: b})
	assert.NotContains(t, m.history, "A")
	assert.Len(t, m.events, 3)
}

func TestEventLogIsBounded(t *testing.T) {
	m, _, _ := newTestModel(t)
	for i := 0; i < config.EventLogSize+10; i++ {
		m, _ = update(t, m, BeaconEventMsg{Kind: beacon.EventAdded, Beacon: beacon.Beacon{UID: "A"}})
	}
	assert.Len(t, m.events, config.EventLogSize)
}

func TestCursorAndDetail(t *testing.T) {
	m, bus, _ := newTestModel(t)
	for _, uid := range []string{"A", "B"} {
		bus.Publish(beacon.Frame{Kind: beacon.FrameUID, UID: uid, RSSI: -60, TxPower: -59})
	}
	m, _ = update(t, m, TickMsg(time.Now()))
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	m, _ = update(t, m, key("down"))
	m, _ = update(t, m, key("down"))
	assert.Equal(t, 1, m.cursor)

	m, _ = update(t, m, key("enter"))
	assert.True(t, m.detail)
	assert.Contains(t, m.View(), "BEACON DETAIL")

	m, _ = update(t, m, key("esc"))
	assert.False(t, m.detail)
	assert.Contains(t, m.View(), "EVENTS")
}

func TestPauseAndResume(t *testing.T) {
	m, _, reg := newTestModel(t)

	m, cmd := update(t, m, key("p"))
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, ScanStateMsg{Running: false}, msg)
	assert.False(t, reg.Running())
	m, _ = update(t, m, msg)
	assert.False(t, m.scanning)

	m, cmd = update(t, m, key("s"))
	require.NotNil(t, cmd)
	msg = cmd()
	assert.Equal(t, ScanStateMsg{Running: true}, msg)
	assert.True(t, reg.Running())
	m, _ = update(t, m, msg)
	assert.True(t, m.scanning)
}

func TestStartFailureIsShown(t *testing.T) {
	errScan := errors.New("no adapter")
	reg := beacon.New(bluetooth.NewBus(), stubController{startErr: errScan})
	m := New(reg, "hci0")
	m.scanning = false

	m, cmd := update(t, m, key("s"))
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.False(t, m.scanning)
	assert.ErrorIs(t, m.err, errScan)

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 30})
	assert.Contains(t, m.View(), "no adapter")
}

func TestQuit(t *testing.T) {
	m, _, _ := newTestModel(t)
	_, cmd := update(t, m, key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
