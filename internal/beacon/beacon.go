package beacon

import (
	"math"
	"time"
)

// Beacon is a snapshot of one tracked beacon. Values handed out by the
// Registry are copies; mutating them has no effect on registry state.
type Beacon struct {
	UID     string    // Identity: the advertiser address
	ID      string    // Broadcast namespace+instance or ephemeral id (hex)
	Kind    FrameKind // FrameUID or FrameEID
	RSSI    int       // dBm at first sighting
	TxPower int       // Calibrated power broadcast by the beacon

	URL    string
	HasURL bool

	Temp         float64 // Celsius
	Voltage      int     // Battery, millivolts
	HasTelemetry bool

	FirstSeen time.Time
	LastSeen  time.Time
	ExpiresAt time.Time
}

// Distance returns the approximate distance for this beacon.
func (b Beacon) Distance() float64 {
	return Distance(b.RSSI, b.TxPower)
}

// DisplayID returns the broadcast id, or the identity if none was sent.
func (b Beacon) DisplayID() string {
	if b.ID == "" {
		return b.UID
	}
	return b.ID
}

// Distance estimates the distance to a beacon from its received signal
// strength and calibrated reference power. It returns -1 when rssi is zero.
// The curve is an empirical fit; the constants must not change.
func Distance(rssi, txPower int) float64 {
	if rssi == 0 {
		return -1
	}

	ratio := float64(rssi) / float64(txPower)

	var raw float64
	if ratio < 1.0 {
		raw = math.Pow(ratio, 10)
	} else {
		raw = 0.89976*math.Pow(ratio, 7.7095) + 0.111
	}
	return raw / 1000
}

func newBeacon(f Frame, now time.Time) Beacon {
	return Beacon{
		UID:       f.UID,
		ID:        f.ID,
		Kind:      f.Kind,
		RSSI:      f.RSSI,
		TxPower:   f.TxPower,
		FirstSeen: now,
		LastSeen:  now,
	}
}
