package beacon

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultExpiration is used when no positive expiration window is given.
const DefaultExpiration = 10 * time.Second

type entry struct {
	b     Beacon
	timer Timer
	gen   uint64 // bumped on every (re)arm or cancel
}

type listener struct {
	id uint64
	fn Listener
}

// Registry tracks live beacons seen on an EventSource. A beacon is added on
// its first identity frame, merged by URL and telemetry frames, and expires
// when no update refreshes it within the expiration window.
//
// All mutations are serialized by a single mutex. Listeners are called
// outside that mutex, in the order the events were produced.
type Registry struct {
	src        EventSource
	ctrl       ScanController
	expiration time.Duration
	clock      Clock
	log        *zap.Logger
	metrics    *Metrics

	// lifeMu serializes Start and Stop.
	lifeMu sync.Mutex

	mu          sync.Mutex
	entries     map[string]*entry
	order       []string
	running     bool
	listenerIDs []ListenerID
	pending     []Event
	draining    bool

	lmu          sync.RWMutex
	listeners    []listener
	nextListener uint64
}

// Option configures a Registry.
type Option func(*Registry)

// WithExpiration sets the expiration window. Non-positive values select
// DefaultExpiration.
func WithExpiration(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.expiration = d
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

// WithClock replaces the wall clock, mostly for tests.
func WithClock(c Clock) Option {
	return func(r *Registry) {
		if c != nil {
			r.clock = c
		}
	}
}

// WithMetrics makes the registry update m.
func WithMetrics(m *Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// New creates a stopped Registry reading frames from src and driving ctrl.
func New(src EventSource, ctrl ScanController, opts ...Option) *Registry {
	r := &Registry{
		src:        src,
		ctrl:       ctrl,
		expiration: DefaultExpiration,
		clock:      realClock{},
		log:        zap.NewNop(),
		entries:    make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Expiration returns the configured expiration window.
func (r *Registry) Expiration() time.Duration {
	return r.expiration
}

// Running reports whether the registry is between Start and Stop.
func (r *Registry) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Start subscribes to identity, URL and telemetry frames and starts the
// scan. Beacons retained from a previous run get a fresh deadline. Calling
// Start on a running registry does nothing.
func (r *Registry) Start() error {
	r.lifeMu.Lock()
	defer r.lifeMu.Unlock()

	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = true
	now := r.clock.Now()
	for _, uid := range r.order {
		r.armLocked(r.entries[uid], now)
	}
	r.mu.Unlock()

	ids := []ListenerID{
		r.src.AddListener(FrameUID, r.IngestIdentity),
		r.src.AddListener(FrameEID, r.IngestIdentity),
		r.src.AddListener(FrameURL, r.IngestURL),
		r.src.AddListener(FrameTelemetry, r.IngestTelemetry),
	}
	r.mu.Lock()
	r.listenerIDs = ids
	r.mu.Unlock()

	if err := r.ctrl.StartScanning(); err != nil {
		r.log.Error("Starting scan failed", zap.Error(err))
		r.halt()
		return fmt.Errorf("starting scan: %w", err)
	}
	r.log.Info("Beacon registry started", zap.Duration("expiration", r.expiration))
	return nil
}

// Stop unsubscribes from the event source, cancels every pending
// expiration and stops the scan. Tracked beacons are kept without a
// deadline until the next Start, so no expired event fires while stopped.
func (r *Registry) Stop() error {
	r.lifeMu.Lock()
	defer r.lifeMu.Unlock()

	if !r.halt() {
		return nil
	}
	if err := r.ctrl.StopScanning(); err != nil {
		r.log.Error("Stopping scan failed", zap.Error(err))
		return fmt.Errorf("stopping scan: %w", err)
	}
	r.log.Info("Beacon registry stopped", zap.Int("retained", r.Len()))
	return nil
}

// halt clears the running state, cancels timers and removes listeners.
// It reports whether the registry was running.
func (r *Registry) halt() bool {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return false
	}
	r.running = false
	ids := r.listenerIDs
	r.listenerIDs = nil
	for _, e := range r.entries {
		r.disarmLocked(e)
	}
	r.mu.Unlock()

	for _, id := range ids {
		r.src.RemoveListener(id)
	}
	return true
}

// Subscribe registers l for lifecycle events and returns a function that
// removes it.
func (r *Registry) Subscribe(l Listener) (cancel func()) {
	r.lmu.Lock()
	r.nextListener++
	id := r.nextListener
	r.listeners = append(r.listeners, listener{id: id, fn: l})
	r.lmu.Unlock()

	return func() {
		r.lmu.Lock()
		defer r.lmu.Unlock()
		for i, ls := range r.listeners {
			if ls.id == id {
				r.listeners = append(r.listeners[:i], r.listeners[i+1:]...)
				return
			}
		}
	}
}

// Has reports whether a beacon with the given identity is live.
func (r *Registry) Has(uid string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[uid]
	return ok
}

// Get returns a copy of the beacon with the given identity.
func (r *Registry) Get(uid string) (Beacon, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[uid]
	if !ok {
		return Beacon{}, false
	}
	return e.b, true
}

// Snapshot returns copies of all live beacons in insertion order.
func (r *Registry) Snapshot() []Beacon {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]Beacon, 0, len(r.order))
	for _, uid := range r.order {
		result = append(result, r.entries[uid].b)
	}
	return result
}

// Len returns the number of live beacons.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// IngestIdentity handles a UID or EID frame. The first frame for an
// identity creates the beacon; later ones are ignored and do not refresh
// its deadline.
func (r *Registry) IngestIdentity(f Frame) {
	if f.UID == "" {
		r.log.Debug("Dropping identity frame without identity", zap.Stringer("kind", f.Kind))
		return
	}

	r.mu.Lock()
	if _, ok := r.entries[f.UID]; ok {
		r.metrics.drop(DropDuplicate)
		r.mu.Unlock()
		return
	}

	now := r.clock.Now()
	e := &entry{b: newBeacon(f, now)}
	r.armLocked(e, now)
	r.entries[f.UID] = e
	r.order = append(r.order, f.UID)
	r.log.Debug("Beacon added",
		zap.String("uid", f.UID), zap.String("id", f.ID), zap.Int("rssi", f.RSSI))
	r.emitLocked(EventAdded, e.b)
}

// IngestURL merges a URL frame into a live beacon. Frames for unknown
// identities are ignored.
func (r *Registry) IngestURL(f Frame) {
	r.update(f, func(b *Beacon) {
		b.URL = f.URL
		b.HasURL = true
	})
}

// IngestTelemetry merges a telemetry frame into a live beacon. Frames for
// unknown identities are ignored.
func (r *Registry) IngestTelemetry(f Frame) {
	r.update(f, func(b *Beacon) {
		b.Temp = f.Temp
		b.Voltage = f.Voltage
		b.HasTelemetry = true
	})
}

func (r *Registry) update(f Frame, merge func(*Beacon)) {
	r.mu.Lock()
	e, ok := r.entries[f.UID]
	if !ok {
		r.metrics.drop(DropUnknown)
		r.mu.Unlock()
		return
	}

	now := r.clock.Now()
	merge(&e.b)
	e.b.LastSeen = now
	r.armLocked(e, now)
	r.log.Debug("Beacon updated", zap.String("uid", f.UID), zap.Stringer("frame", f.Kind))
	r.emitLocked(EventUpdated, e.b)
}

// expire is the timer callback for e armed at generation gen.
func (r *Registry) expire(e *entry, gen uint64) {
	r.mu.Lock()
	uid := e.b.UID
	if cur, ok := r.entries[uid]; !ok || cur != e || cur.gen != gen {
		// Refreshed, cancelled or already removed after the timer fired.
		r.mu.Unlock()
		return
	}

	delete(r.entries, uid)
	for i, id := range r.order {
		if id == uid {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	e.timer = nil
	r.log.Debug("Beacon expired", zap.String("uid", uid))
	r.emitLocked(EventExpired, e.b)
}

// armLocked cancels the pending expiration of e and, while running, arms a
// new one. r.mu must be held.
func (r *Registry) armLocked(e *entry, now time.Time) {
	r.disarmLocked(e)
	if !r.running {
		return
	}
	gen := e.gen
	e.b.ExpiresAt = now.Add(r.expiration)
	e.timer = r.clock.AfterFunc(r.expiration, func() { r.expire(e, gen) })
}

func (r *Registry) disarmLocked(e *entry) {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.gen++
	e.b.ExpiresAt = time.Time{}
}

// emitLocked queues an event and delivers queued events. r.mu must be held
// and is released on return. Only one goroutine delivers at a time; others
// leave their events for it, which keeps delivery in production order.
func (r *Registry) emitLocked(k EventKind, b Beacon) {
	r.metrics.event(k, len(r.entries))
	r.pending = append(r.pending, Event{Kind: k, Beacon: b})
	if r.draining {
		r.mu.Unlock()
		return
	}

	r.draining = true
	for len(r.pending) > 0 {
		events := r.pending
		r.pending = nil
		r.mu.Unlock()
		r.deliver(events)
		r.mu.Lock()
	}
	r.draining = false
	r.mu.Unlock()
}

func (r *Registry) deliver(events []Event) {
	r.lmu.RLock()
	ls := make([]listener, len(r.listeners))
	copy(ls, r.listeners)
	r.lmu.RUnlock()

	for _, ev := range events {
		for _, l := range ls {
			l.fn(ev)
		}
	}
}
