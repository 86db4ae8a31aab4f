package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "soukhyam"

// Realtime holds the collectors for the event bus, the SSE streams and the
// escalation path. A nil *Realtime is valid and records nothing.
type Realtime struct {
	subscribers   prometheus.Gauge
	broadcasts    *prometheus.CounterVec
	evictions     prometheus.Counter
	heartbeats    prometheus.Counter
	streamsOpened prometheus.Counter
	alerts        *prometheus.CounterVec
	publishErrors prometheus.Counter
}

// NewRealtime registers the collectors on reg.
func NewRealtime(reg prometheus.Registerer) *Realtime {
	factory := promauto.With(reg)

	return &Realtime{
		subscribers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "subscribers",
			Help:      "Currently registered stream subscribers.",
		}),
		broadcasts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "events_broadcast_total",
			Help:      "Events broadcast through the bus, by type.",
		}, []string{"kind"}),
		evictions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "subscribers_evicted_total",
			Help:      "Subscribers removed by the bus because their channel could not accept an event.",
		}),
		heartbeats: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "heartbeats_total",
			Help:      "Heartbeat frames written to stream peers.",
		}),
		streamsOpened: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "streams_opened_total",
			Help:      "Stream connections accepted.",
		}),
		alerts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "escalation",
			Name:      "alerts_total",
			Help:      "Alert lifecycle transitions, by resulting status.",
		}, []string{"status"}),
		publishErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "escalation",
			Name:      "publish_errors_total",
			Help:      "Alert broadcasts that failed to publish.",
		}),
	}
}

func (m *Realtime) SubscriberAdded() {
	if m == nil {
		return
	}
	m.subscribers.Inc()
}

func (m *Realtime) SubscriberRemoved() {
	if m == nil {
		return
	}
	m.subscribers.Dec()
}

func (m *Realtime) SubscriberEvicted() {
	if m == nil {
		return
	}
	m.evictions.Inc()
}

func (m *Realtime) EventBroadcast(kind string) {
	if m == nil {
		return
	}
	m.broadcasts.WithLabelValues(kind).Inc()
}

func (m *Realtime) HeartbeatSent() {
	if m == nil {
		return
	}
	m.heartbeats.Inc()
}

func (m *Realtime) StreamOpened() {
	if m == nil {
		return
	}
	m.streamsOpened.Inc()
}

func (m *Realtime) AlertTransition(status string) {
	if m == nil {
		return
	}
	m.alerts.WithLabelValues(status).Inc()
}

func (m *Realtime) AlertPublishFailed() {
	if m == nil {
		return
	}
	m.publishErrors.Inc()
}

// Evictions exposes the eviction counter for tests and debug tooling.
func (m *Realtime) Evictions() prometheus.Counter {
	return m.evictions
}
