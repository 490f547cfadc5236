package beacon

// FrameKind identifies the category of an advertising frame.
type FrameKind int

const (
	FrameUID FrameKind = iota
	FrameEID
	FrameURL
	FrameTelemetry
	FrameEmpty
)

func (k FrameKind) String() string {
	switch k {
	case FrameUID:
		return "UID"
	case FrameEID:
		return "EID"
	case FrameURL:
		return "URL"
	case FrameTelemetry:
		return "TLM"
	default:
		return "EMPTY"
	}
}

// IsIdentity reports whether frames of this kind establish a beacon.
func (k FrameKind) IsIdentity() bool {
	return k == FrameUID || k == FrameEID
}

// Frame is a decoded advertising frame as delivered by an EventSource.
// Which fields are meaningful depends on Kind:
//
//	UID, EID   UID, ID, RSSI, TxPower
//	URL        UID, URL
//	Telemetry  UID, Temp, Voltage
type Frame struct {
	Kind    FrameKind
	UID     string
	ID      string
	RSSI    int
	TxPower int
	URL     string
	Temp    float64
	Voltage int
}

// Handler receives frames of one kind from an EventSource.
type Handler func(Frame)

// ListenerID identifies a registered Handler so it can be removed.
type ListenerID uint64

// EventSource delivers frames asynchronously to per-kind listeners.
type EventSource interface {
	AddListener(kind FrameKind, h Handler) ListenerID
	RemoveListener(id ListenerID)
}

// ScanController starts and stops the process feeding an EventSource.
type ScanController interface {
	StartScanning() error
	StopScanning() error
}
