package realtime

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/soukhyam/internal/domain"
	"github.com/saturnino-fabrica-de-software/soukhyam/internal/metrics"
)

const defaultSubscriberBuffer = 64

// Subscriber is one registered output channel. The bus is the only writer
// of events and closes the channel when the registration is removed.
type Subscriber struct {
	id          uuid.UUID
	events      chan Event
	connectedAt int64
}

func (s *Subscriber) ID() uuid.UUID {
	return s.id
}

// Events is closed once the subscriber has been unregistered or evicted.
func (s *Subscriber) Events() <-chan Event {
	return s.events
}

// ConnectedAt is the bus timestamp taken atomically with registration. Every
// event broadcast after registration carries a strictly greater timestamp.
func (s *Subscriber) ConnectedAt() int64 {
	return s.connectedAt
}

// BusOption configures a Bus.
type BusOption func(*Bus)

func WithSubscriberBuffer(n int) BusOption {
	return func(b *Bus) {
		if n > 0 {
			b.buffer = n
		}
	}
}

func WithMetrics(m *metrics.Realtime) BusOption {
	return func(b *Bus) {
		b.metrics = m
	}
}

func WithLogger(logger *slog.Logger) BusOption {
	return func(b *Bus) {
		b.logger = logger
	}
}

func withClock(now func() time.Time) BusOption {
	return func(b *Bus) {
		b.now = now
	}
}

// Bus is the in-process registry of live subscribers. It starts empty, grows
// and shrinks with stream connections, and is cleared by Close at shutdown.
//
// A single mutex serializes Register, Unregister and Broadcast, which gives
// every subscriber the same total order of broadcasts.
type Bus struct {
	mu        sync.Mutex
	clients   map[uuid.UUID]*Subscriber
	lastStamp int64
	closed    bool

	buffer  int
	now     func() time.Time
	logger  *slog.Logger
	metrics *metrics.Realtime
}

func NewBus(opts ...BusOption) *Bus {
	b := &Bus{
		clients: make(map[uuid.UUID]*Subscriber),
		buffer:  defaultSubscriberBuffer,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Bus) Register() (*Subscriber, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, domain.ErrBusClosed
	}

	sub := &Subscriber{
		id:          uuid.New(),
		events:      make(chan Event, b.buffer),
		connectedAt: b.stamp(),
	}
	b.clients[sub.id] = sub
	b.metrics.SubscriberAdded()

	return sub, nil
}

// Unregister removes the subscriber and closes its channel. Unknown or
// already removed ids are ignored.
func (b *Bus) Unregister(id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.removeLocked(id)
}

// Broadcast stamps the event if the producer left Timestamp unset and
// delivers it to every registered subscriber. A subscriber whose channel is
// full is treated as a dead peer: it is evicted and delivery continues.
func (b *Bus) Broadcast(e Event) Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	if e.Timestamp == 0 {
		e.Timestamp = b.stamp()
	}

	for id, sub := range b.clients {
		select {
		case sub.events <- e:
		default:
			b.logger.Warn("evicting stalled subscriber",
				"subscriber_id", id,
				"event_type", e.Kind,
			)
			b.removeLocked(id)
			b.metrics.SubscriberEvicted()
		}
	}

	b.metrics.EventBroadcast(string(e.Kind))
	return e
}

// Now returns a bus timestamp for events written directly to one peer
// (connection confirmations, heartbeats). It shares the monotonic sequence
// used by Broadcast.
func (b *Bus) Now() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.stamp()
}

func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.clients)
}

// Close removes every subscriber and rejects further registrations.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for id := range b.clients {
		b.removeLocked(id)
	}
}

func (b *Bus) removeLocked(id uuid.UUID) {
	sub, ok := b.clients[id]
	if !ok {
		return
	}
	delete(b.clients, id)
	close(sub.events)
	b.metrics.SubscriberRemoved()
}

// stamp returns wall-clock milliseconds, bumped so that values are strictly
// increasing. Callers must hold mu.
func (b *Bus) stamp() int64 {
	ts := b.now().UnixMilli()
	if ts <= b.lastStamp {
		ts = b.lastStamp + 1
	}
	b.lastStamp = ts
	return ts
}
