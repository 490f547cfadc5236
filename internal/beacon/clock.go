package beacon

import "time"

// Timer is a pending expiration that can be cancelled.
type Timer interface {
	Stop() bool
}

// Clock provides time to the Registry.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
