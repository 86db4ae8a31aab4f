package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRealtime_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRealtime(reg)

	m.SubscriberAdded()
	m.SubscriberAdded()
	m.SubscriberRemoved()
	m.EventBroadcast("sos_alert")
	m.EventBroadcast("sos_alert")
	m.EventBroadcast("wellness_update")
	m.SubscriberEvicted()
	m.HeartbeatSent()
	m.AlertTransition("active")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.subscribers))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.broadcasts.WithLabelValues("sos_alert")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.broadcasts.WithLabelValues("wellness_update")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.evictions))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.heartbeats))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.alerts.WithLabelValues("active")))
}

func TestRealtime_NilIsNoop(t *testing.T) {
	var m *Realtime

	assert.NotPanics(t, func() {
		m.SubscriberAdded()
		m.SubscriberRemoved()
		m.SubscriberEvicted()
		m.EventBroadcast("heartbeat")
		m.HeartbeatSent()
		m.StreamOpened()
		m.AlertTransition("resolved")
		m.AlertPublishFailed()
	})
}
