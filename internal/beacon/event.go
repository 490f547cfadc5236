package beacon

// EventKind names a lifecycle transition of a tracked beacon.
type EventKind int

const (
	EventAdded EventKind = iota
	EventUpdated
	EventExpired
)

func (k EventKind) String() string {
	switch k {
	case EventAdded:
		return "added"
	case EventUpdated:
		return "updated"
	default:
		return "expired"
	}
}

// Event is delivered to listeners on every lifecycle transition.
type Event struct {
	Kind   EventKind
	Beacon Beacon
}

// Listener is notified of registry events. Listeners may call the
// registry's read and Ingest methods but must not call Start or Stop,
// which wait for the scanner that may be delivering the event.
type Listener func(Event)
