package bluetooth

import (
	"sync"

	"eddystone-radar.klederson.com/internal/beacon"
)

type busListener struct {
	id   beacon.ListenerID
	kind beacon.FrameKind
	h    beacon.Handler
}

// Bus fans decoded frames out to listeners registered per frame kind.
// Scanners publish into it; the registry listens on it.
type Bus struct {
	mu        sync.RWMutex
	next      beacon.ListenerID
	listeners []busListener
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{}
}

// AddListener registers h for frames of the given kind.
func (b *Bus) AddListener(kind beacon.FrameKind, h beacon.Handler) beacon.ListenerID {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	b.listeners = append(b.listeners, busListener{id: b.next, kind: kind, h: h})
	return b.next
}

// RemoveListener unregisters a listener. Unknown ids are ignored.
func (b *Bus) RemoveListener(id beacon.ListenerID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, l := range b.listeners {
		if l.id == id {
			b.listeners = append(b.listeners[:i:i], b.listeners[i+1:]...)
			return
		}
	}
}

// Publish delivers f synchronously to every listener of its kind, in
// registration order.
func (b *Bus) Publish(f beacon.Frame) {
	b.mu.RLock()
	var hs []beacon.Handler
	for _, l := range b.listeners {
		if l.kind == f.Kind {
			hs = append(hs, l.h)
		}
	}
	b.mu.RUnlock()

	for _, h := range hs {
		h(f)
	}
}

// Len returns the number of registered listeners.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}
