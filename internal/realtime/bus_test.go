package realtime

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/saturnino-fabrica-de-software/soukhyam/internal/domain"
	"github.com/saturnino-fabrica-de-software/soukhyam/internal/metrics"
)

func drain(sub *Subscriber) []Event {
	var out []Event
	for {
		select {
		case e, ok := <-sub.Events():
			if !ok {
				return out
			}
			out = append(out, e)
		default:
			return out
		}
	}
}

func TestNewBus(t *testing.T) {
	bus := NewBus()

	assert.NotNil(t, bus)
	assert.NotNil(t, bus.clients)
	assert.Equal(t, defaultSubscriberBuffer, bus.buffer)
	assert.Equal(t, 0, bus.Len())
}

func TestBus_RegisterAndUnregister(t *testing.T) {
	bus := NewBus()

	sub, err := bus.Register()
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, sub.ID())
	assert.Positive(t, sub.ConnectedAt())
	assert.Equal(t, 1, bus.Len())

	bus.Unregister(sub.ID())
	assert.Equal(t, 0, bus.Len())

	_, ok := <-sub.Events()
	assert.False(t, ok, "channel should be closed after unregister")
}

func TestBus_UnregisterIsIdempotent(t *testing.T) {
	bus := NewBus()

	sub, err := bus.Register()
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		bus.Unregister(sub.ID())
		bus.Unregister(sub.ID())
		bus.Unregister(uuid.New())
	})
	assert.Equal(t, 0, bus.Len())
}

func TestBus_BroadcastWithNoSubscribers(t *testing.T) {
	bus := NewBus()

	out := bus.Broadcast(Event{Kind: KindWellnessUpdate, Payload: map[string]any{}})

	assert.Equal(t, KindWellnessUpdate, out.Kind)
	assert.Positive(t, out.Timestamp)
}

func TestBus_BroadcastReachesEverySubscriber(t *testing.T) {
	bus := NewBus()

	subs := make([]*Subscriber, 3)
	for i := range subs {
		sub, err := bus.Register()
		require.NoError(t, err)
		subs[i] = sub
	}

	bus.Broadcast(Event{Kind: KindSOSAlert, Payload: map[string]any{"subject_id": "s1"}})

	for _, sub := range subs {
		got := drain(sub)
		require.Len(t, got, 1)
		assert.Equal(t, KindSOSAlert, got[0].Kind)
		assert.Equal(t, "s1", got[0].Payload["subject_id"])
		assert.Greater(t, got[0].Timestamp, sub.ConnectedAt())
	}
}

func TestBus_BroadcastKeepsProducerTimestamp(t *testing.T) {
	bus := NewBus()

	out := bus.Broadcast(Event{Kind: KindChatMessage, Timestamp: 42})

	assert.Equal(t, int64(42), out.Timestamp)
}

func TestBus_StampsAreStrictlyIncreasing(t *testing.T) {
	frozen := time.UnixMilli(1_700_000_000_000)
	bus := NewBus(withClock(func() time.Time { return frozen }))

	var last int64
	for i := 0; i < 100; i++ {
		e := bus.Broadcast(Event{Kind: KindHeartbeat})
		assert.Greater(t, e.Timestamp, last)
		last = e.Timestamp
	}
	assert.Greater(t, bus.Now(), last)
}

func TestBus_EvictsStalledSubscriber(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewRealtime(reg)
	bus := NewBus(WithSubscriberBuffer(1), WithMetrics(m))

	stalled, err := bus.Register()
	require.NoError(t, err)
	healthy, err := bus.Register()
	require.NoError(t, err)

	bus.Broadcast(Event{Kind: KindWellnessUpdate})
	got := drain(healthy)
	require.Len(t, got, 1)

	bus.Broadcast(Event{Kind: KindActivityStarted})

	assert.Equal(t, 1, bus.Len())
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Evictions()))

	// the stalled subscriber keeps its buffered event, then sees the close
	first, ok := <-stalled.Events()
	require.True(t, ok)
	assert.Equal(t, KindWellnessUpdate, first.Kind)
	_, ok = <-stalled.Events()
	assert.False(t, ok)

	got = drain(healthy)
	require.Len(t, got, 1)
	assert.Equal(t, KindActivityStarted, got[0].Kind)
}

func TestBus_Close(t *testing.T) {
	bus := NewBus()

	sub, err := bus.Register()
	require.NoError(t, err)

	bus.Close()
	bus.Close()

	assert.Equal(t, 0, bus.Len())
	_, ok := <-sub.Events()
	assert.False(t, ok)

	_, err = bus.Register()
	assert.ErrorIs(t, err, domain.ErrBusClosed)
}

func TestBus_ConcurrentRegisterAndBroadcast(t *testing.T) {
	bus := NewBus(WithSubscriberBuffer(1024))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			sub, err := bus.Register()
			if err != nil {
				return
			}
			bus.Unregister(sub.ID())
		}()
		go func() {
			defer wg.Done()
			bus.Broadcast(Event{Kind: KindChatMessage})
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, bus.Len())
}

// Every subscriber observes broadcasts in the same order, and that order is
// the call order.
func TestBus_OrderingProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		bus := NewBus(WithSubscriberBuffer(256))

		n := rapid.IntRange(1, 5).Draw(t, "subscribers")
		subs := make([]*Subscriber, n)
		for i := range subs {
			sub, err := bus.Register()
			if err != nil {
				t.Fatalf("register: %v", err)
			}
			subs[i] = sub
		}

		count := rapid.IntRange(0, 100).Draw(t, "events")
		kinds := make([]Kind, count)
		for i := range kinds {
			kinds[i] = rapid.SampledFrom(Kinds()).Draw(t, "kind")
			bus.Broadcast(Event{Kind: kinds[i], Payload: map[string]any{"seq": i}})
		}

		for _, sub := range subs {
			got := drain(sub)
			if len(got) != count {
				t.Fatalf("got %d events, want %d", len(got), count)
			}
			var last int64
			for i, e := range got {
				if e.Kind != kinds[i] || e.Payload["seq"] != i {
					t.Fatalf("event %d out of order: %+v", i, e)
				}
				if e.Timestamp <= last {
					t.Fatalf("timestamp %d not after %d", e.Timestamp, last)
				}
				last = e.Timestamp
			}
		}
	})
}
