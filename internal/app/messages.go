package app

import (
	"time"

	"eddystone-radar.klederson.com/internal/beacon"
)

// TickMsg triggers a snapshot refresh.
type TickMsg time.Time

// BeaconEventMsg carries a registry lifecycle event into the program.
type BeaconEventMsg beacon.Event

// ScanStateMsg reports the outcome of a start or stop request.
type ScanStateMsg struct {
	Running bool
	Err     error
}
