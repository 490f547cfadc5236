package bluetooth

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"eddystone-radar.klederson.com/internal/beacon"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestBusRoutesByKind(t *testing.T) {
	bus := NewBus()
	var uids, urls []beacon.Frame
	bus.AddListener(beacon.FrameUID, func(f beacon.Frame) { uids = append(uids, f) })
	bus.AddListener(beacon.FrameURL, func(f beacon.Frame) { urls = append(urls, f) })

	bus.Publish(beacon.Frame{Kind: beacon.FrameUID, UID: "A"})
	bus.Publish(beacon.Frame{Kind: beacon.FrameURL, UID: "A", URL: "https://x"})
	bus.Publish(beacon.Frame{Kind: beacon.FrameTelemetry, UID: "A"})

	require.Len(t, uids, 1)
	require.Len(t, urls, 1)
	assert.Equal(t, "https://x", urls[0].URL)
}

func TestBusRemoveListener(t *testing.T) {
	bus := NewBus()
	var calls []string
	a := bus.AddListener(beacon.FrameUID, func(beacon.Frame) { calls = append(calls, "a") })
	bus.AddListener(beacon.FrameUID, func(beacon.Frame) { calls = append(calls, "b") })
	require.Equal(t, 2, bus.Len())

	bus.Publish(beacon.Frame{Kind: beacon.FrameUID})
	bus.RemoveListener(a)
	bus.RemoveListener(a)
	bus.Publish(beacon.Frame{Kind: beacon.FrameUID})

	assert.Equal(t, []string{"a", "b", "b"}, calls)
	assert.Equal(t, 1, bus.Len())
}

func TestBusFeedsRegistry(t *testing.T) {
	bus := NewBus()
	reg := beacon.New(bus, nopController{}, beacon.WithExpiration(time.Hour))
	require.NoError(t, reg.Start())
	assert.Equal(t, 4, bus.Len())

	bus.Publish(beacon.Frame{Kind: beacon.FrameUID, UID: "A", RSSI: -60, TxPower: -59})
	bus.Publish(beacon.Frame{Kind: beacon.FrameURL, UID: "A", URL: "https://x"})
	b, ok := reg.Get("A")
	require.True(t, ok)
	assert.Equal(t, "https://x", b.URL)

	require.NoError(t, reg.Stop())
	assert.Equal(t, 0, bus.Len())
}

func TestMockScannerPublishes(t *testing.T) {
	bus := NewBus()
	var n atomic.Int64
	for _, k := range []beacon.FrameKind{beacon.FrameUID, beacon.FrameEID, beacon.FrameURL, beacon.FrameTelemetry} {
		bus.AddListener(k, func(beacon.Frame) { n.Add(1) })
	}

	s := NewMockScanner(bus, 8, time.Millisecond, 1)
	require.NoError(t, s.StartScanning())
	require.NoError(t, s.StartScanning())
	require.Eventually(t, func() bool { return n.Load() > 10 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, s.StopScanning())
	require.NoError(t, s.StopScanning())

	after := n.Load()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, after, n.Load())
}

func TestMockScannerDrivesRegistry(t *testing.T) {
	bus := NewBus()
	s := NewMockScanner(bus, 6, time.Millisecond, 7)
	reg := beacon.New(bus, s, beacon.WithExpiration(time.Hour))

	var mu sync.Mutex
	added := map[string]bool{}
	reg.Subscribe(func(ev beacon.Event) {
		if ev.Kind == beacon.EventAdded {
			mu.Lock()
			added[ev.Beacon.UID] = true
			mu.Unlock()
		}
	})

	require.NoError(t, reg.Start())
	require.Eventually(t, func() bool { return reg.Len() > 0 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, reg.Stop())

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, added, reg.Len())
}

type nopController struct{}

func (nopController) StartScanning() error { return nil }
func (nopController) StopScanning() error  { return nil }
