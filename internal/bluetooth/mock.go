package bluetooth

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"eddystone-radar.klederson.com/internal/beacon"
)

var mockURLs = []string{
	"https://goo.gl/S6zT6P",
	"https://www.example.com/exhibit/12",
	"http://www.museum.org/room/3",
	"https://physical-web.org",
	"https://bus.stop/42",
}

type mockBeacon struct {
	uid       string
	id        string
	kind      beacon.FrameKind
	txPower   int
	baseRSSI  float64
	phase     float64
	amplitude float64
	url       string
	baseTemp  float64
	voltage   int
	active    bool
}

// MockScanner publishes fabricated Eddystone frames for demo mode. Beacons
// occasionally go silent so they expire from the registry.
type MockScanner struct {
	bus      *Bus
	interval time.Duration
	rnd      *rand.Rand
	beacons  []mockBeacon

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewMockScanner creates a mock scanner with count random beacons.
func NewMockScanner(bus *Bus, count int, interval time.Duration, seed int64) *MockScanner {
	rnd := rand.New(rand.NewSource(seed))

	beacons := make([]mockBeacon, count)
	for i := range beacons {
		mb := mockBeacon{
			uid:       randomMAC(rnd),
			kind:      beacon.FrameUID,
			txPower:   -60 - rnd.Intn(15), // -60 to -74 dBm at 0m
			baseRSSI:  -45 - rnd.Float64()*45,
			phase:     rnd.Float64() * 2 * math.Pi,
			amplitude: 2 + rnd.Float64()*6,
			url:       mockURLs[rnd.Intn(len(mockURLs))],
			baseTemp:  18 + rnd.Float64()*8,
			voltage:   2700 + rnd.Intn(500),
			active:    true,
		}
		id := make([]byte, 16)
		if i%4 == 3 {
			mb.kind = beacon.FrameEID
			id = id[:8]
		}
		rnd.Read(id)
		mb.id = fmt.Sprintf("%x", id)
		beacons[i] = mb
	}

	return &MockScanner{
		bus:      bus,
		interval: interval,
		rnd:      rnd,
		beacons:  beacons,
	}
}

// StartScanning begins emitting frames in a goroutine.
func (s *MockScanner) StartScanning() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.loop(ctx, s.done)
	return nil
}

func (s *MockScanner) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	t := 0.0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t += s.interval.Seconds()
			s.emit(t)
		}
	}
}

func (s *MockScanner) emit(t float64) {
	for i := range s.beacons {
		b := &s.beacons[i]

		// Randomly toggle visibility so beacons appear and expire.
		if s.rnd.Float64() < 0.01 {
			b.active = !b.active
		}
		if !b.active {
			continue
		}

		rssi := b.baseRSSI + b.amplitude*math.Sin(t*0.5+b.phase) + (s.rnd.Float64()-0.5)*4
		switch r := s.rnd.Float64(); {
		case r < 0.3:
			s.bus.Publish(beacon.Frame{
				Kind:    b.kind,
				UID:     b.uid,
				ID:      b.id,
				RSSI:    int(rssi),
				TxPower: b.txPower,
			})
		case r < 0.5:
			s.bus.Publish(beacon.Frame{Kind: beacon.FrameURL, UID: b.uid, RSSI: int(rssi), URL: b.url})
		case r < 0.7:
			temp := b.baseTemp + math.Sin(t*0.1+b.phase)
			s.bus.Publish(beacon.Frame{
				Kind:    beacon.FrameTelemetry,
				UID:     b.uid,
				RSSI:    int(rssi),
				Temp:    math.Round(temp*256) / 256,
				Voltage: b.voltage,
			})
		case r < 0.75:
			s.bus.Publish(beacon.Frame{Kind: beacon.FrameEmpty, UID: b.uid, RSSI: int(rssi)})
		}
	}
}

// StopScanning halts the emitter and waits for its goroutine to exit.
func (s *MockScanner) StopScanning() error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	return nil
}

func randomMAC(rnd *rand.Rand) string {
	b := make([]byte, 6)
	rnd.Read(b)
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", b[0], b[1], b[2], b[3], b[4], b[5])
}
