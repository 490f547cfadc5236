package beacon

import (
	"sync"
	"time"
)

type fakeTimer struct {
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

// fakeClock fires timers only from Advance, on the calling goroutine.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return &fakeTimerHandle{c: c, t: t}
}

// Advance moves time forward and fires due timers in deadline order.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	for {
		var next *fakeTimer
		for _, t := range c.timers {
			if t.stopped || t.fired || t.at.After(target) {
				continue
			}
			if next == nil || t.at.Before(next.at) {
				next = t
			}
		}
		if next == nil {
			break
		}
		next.fired = true
		c.now = next.at
		c.mu.Unlock()
		next.f()
		c.mu.Lock()
	}
	c.now = target
	c.mu.Unlock()
}

// Armed returns the number of timers neither stopped nor fired.
func (c *fakeClock) Armed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type fakeTimerHandle struct {
	c *fakeClock
	t *fakeTimer
}

func (h *fakeTimerHandle) Stop() bool {
	h.c.mu.Lock()
	defer h.c.mu.Unlock()
	if h.t.stopped || h.t.fired {
		return false
	}
	h.t.stopped = true
	return true
}

type fakeListener struct {
	kind FrameKind
	h    Handler
}

type fakeSource struct {
	mu        sync.Mutex
	next      ListenerID
	listeners map[ListenerID]fakeListener
}

func newFakeSource() *fakeSource {
	return &fakeSource{listeners: make(map[ListenerID]fakeListener)}
}

func (s *fakeSource) AddListener(kind FrameKind, h Handler) ListenerID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.listeners[s.next] = fakeListener{kind: kind, h: h}
	return s.next
}

func (s *fakeSource) RemoveListener(id ListenerID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.listeners, id)
}

func (s *fakeSource) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

func (s *fakeSource) Emit(f Frame) {
	s.mu.Lock()
	var hs []Handler
	for id := ListenerID(1); id <= s.next; id++ {
		if l, ok := s.listeners[id]; ok && l.kind == f.Kind {
			hs = append(hs, l.h)
		}
	}
	s.mu.Unlock()
	for _, h := range hs {
		h(f)
	}
}

type fakeController struct {
	starts, stops int
	startErr      error
	stopErr       error
}

func (c *fakeController) StartScanning() error {
	c.starts++
	return c.startErr
}

func (c *fakeController) StopScanning() error {
	c.stops++
	return c.stopErr
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Listen(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

func (r *recorder) Count(k EventKind) int {
	n := 0
	for _, ev := range r.Events() {
		if ev.Kind == k {
			n++
		}
	}
	return n
}
