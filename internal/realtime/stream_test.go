package realtime

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBrokenPipe = errors.New("broken pipe")

// recorder is a FlushWriter that captures flushed frames.
type recorder struct {
	mu   sync.Mutex
	buf  bytes.Buffer
	fail bool
}

func (r *recorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.fail {
		return 0, errBrokenPipe
	}
	return r.buf.Write(p)
}

func (r *recorder) Flush() error {
	return nil
}

func (r *recorder) events() []Event {
	r.mu.Lock()
	raw := append([]byte(nil), r.buf.Bytes()...)
	r.mu.Unlock()

	var out []Event
	_ = ReadFrames(bytes.NewReader(raw), func(e Event) error {
		out = append(out, e)
		return nil
	})
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startStream(t *testing.T, bus *Bus, heartbeat time.Duration, w FlushWriter) (*Subscriber, context.CancelFunc, <-chan error) {
	t.Helper()

	stream := NewStream(bus, heartbeat, discardLogger(), nil)
	sub, err := stream.Subscribe()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- stream.Serve(ctx, sub, w)
	}()
	t.Cleanup(cancel)

	return sub, cancel, done
}

func TestNewStream_DefaultsHeartbeat(t *testing.T) {
	stream := NewStream(NewBus(), 0, discardLogger(), nil)

	assert.Equal(t, DefaultHeartbeatInterval, stream.heartbeat)
}

func TestStream_SendsConnectionFirst(t *testing.T) {
	bus := NewBus()
	rec := &recorder{}

	sub, _, _ := startStream(t, bus, time.Hour, rec)

	require.Eventually(t, func() bool { return len(rec.events()) == 1 }, time.Second, 5*time.Millisecond)

	hello := rec.events()[0]
	assert.Equal(t, KindConnection, hello.Kind)
	assert.Equal(t, connectedMessage, hello.Payload["message"])
	assert.Equal(t, sub.ID().String(), hello.Payload["subscriber_id"])
	assert.Equal(t, sub.ConnectedAt(), hello.Timestamp)
}

func TestStream_ForwardsBroadcasts(t *testing.T) {
	bus := NewBus()
	rec := &recorder{}

	startStream(t, bus, time.Hour, rec)
	require.Eventually(t, func() bool { return len(rec.events()) == 1 }, time.Second, 5*time.Millisecond)

	bus.Broadcast(Event{Kind: KindWellnessUpdate, Payload: map[string]any{"mood": "calm"}})
	bus.Broadcast(Event{Kind: KindSOSAlert, Payload: map[string]any{"subject_id": "s-1"}})

	require.Eventually(t, func() bool { return len(rec.events()) == 3 }, time.Second, 5*time.Millisecond)

	got := rec.events()
	assert.Equal(t, KindWellnessUpdate, got[1].Kind)
	assert.Equal(t, KindSOSAlert, got[2].Kind)
	assert.Greater(t, got[1].Timestamp, got[0].Timestamp)
	assert.Greater(t, got[2].Timestamp, got[1].Timestamp)
}

func TestStream_WritesHeartbeats(t *testing.T) {
	bus := NewBus()
	rec := &recorder{}

	startStream(t, bus, 20*time.Millisecond, rec)

	require.Eventually(t, func() bool {
		for _, e := range rec.events() {
			if e.Kind == KindHeartbeat {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)

	var beat Event
	for _, e := range rec.events() {
		if e.Kind == KindHeartbeat {
			beat = e
			break
		}
	}
	assert.Equal(t, "ping", beat.Payload["message"])
	assert.Positive(t, beat.Timestamp)
}

func TestStream_ContextCancelUnregisters(t *testing.T) {
	bus := NewBus()
	rec := &recorder{}

	_, cancel, done := startStream(t, bus, time.Hour, rec)
	require.Eventually(t, func() bool { return len(rec.events()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, bus.Len())

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	assert.Equal(t, 0, bus.Len())
}

func TestStream_WriteFailureUnregisters(t *testing.T) {
	bus := NewBus()
	rec := &recorder{fail: true}

	_, _, done := startStream(t, bus, time.Hour, rec)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, errBrokenPipe)
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after write failure")
	}
	assert.Equal(t, 0, bus.Len())
}

func TestStream_PeerGoneDuringBroadcast(t *testing.T) {
	bus := NewBus()
	rec := &recorder{}

	_, _, done := startStream(t, bus, time.Hour, rec)
	require.Eventually(t, func() bool { return len(rec.events()) == 1 }, time.Second, 5*time.Millisecond)

	rec.mu.Lock()
	rec.fail = true
	rec.mu.Unlock()

	bus.Broadcast(Event{Kind: KindChatMessage, Payload: map[string]any{}})

	select {
	case err := <-done:
		assert.ErrorIs(t, err, errBrokenPipe)
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after peer went away")
	}
	assert.Equal(t, 0, bus.Len())
}

func TestStream_BusCloseEndsServe(t *testing.T) {
	bus := NewBus()
	rec := &recorder{}

	_, _, done := startStream(t, bus, time.Hour, rec)
	require.Eventually(t, func() bool { return len(rec.events()) == 1 }, time.Second, 5*time.Millisecond)

	bus.Close()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrSubscriptionClosed)
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after bus close")
	}
}

func TestStream_SubscribeAfterClose(t *testing.T) {
	bus := NewBus()
	bus.Close()

	_, err := NewStream(bus, time.Second, discardLogger(), nil).Subscribe()

	assert.Error(t, err)
}
