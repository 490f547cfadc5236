package beacon

import "github.com/prometheus/client_golang/prometheus"

// Drop reasons recorded in beacon_frames_dropped_total.
const (
	DropDuplicate = "duplicate"
	DropUnknown   = "unknown_identity"
)

// Metrics holds the prometheus collectors updated by a Registry.
type Metrics struct {
	Events  *prometheus.CounterVec
	Live    prometheus.Gauge
	Dropped *prometheus.CounterVec
}

// NewMetrics creates the registry collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "beacon_events_total",
				Help: "Total number of beacon lifecycle events.",
			},
			[]string{"event"},
		),
		Live: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "beacon_live",
				Help: "Number of beacons currently tracked.",
			},
		),
		Dropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "beacon_frames_dropped_total",
				Help: "Total number of frames ignored by the registry.",
			},
			[]string{"reason"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Events, m.Live, m.Dropped)
	}
	return m
}

func (m *Metrics) event(k EventKind, live int) {
	if m == nil {
		return
	}
	m.Events.WithLabelValues(k.String()).Inc()
	m.Live.Set(float64(live))
}

func (m *Metrics) drop(reason string) {
	if m == nil {
		return
	}
	m.Dropped.WithLabelValues(reason).Inc()
}
