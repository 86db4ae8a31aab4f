package realtime

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/saturnino-fabrica-de-software/soukhyam/internal/metrics"
)

const (
	DefaultHeartbeatInterval = 30 * time.Second

	connectedMessage = "Connected to Soukhyam realtime updates"
)

// ErrSubscriptionClosed is returned by Serve when the bus removed the
// subscriber (eviction or shutdown).
var ErrSubscriptionClosed = errors.New("subscription closed by bus")

// FlushWriter is the write side of one peer connection. *bufio.Writer
// satisfies it.
type FlushWriter interface {
	io.Writer
	Flush() error
}

// Stream bridges peer connections to bus subscriptions.
type Stream struct {
	bus       *Bus
	heartbeat time.Duration
	logger    *slog.Logger
	metrics   *metrics.Realtime
}

func NewStream(bus *Bus, heartbeat time.Duration, logger *slog.Logger, m *metrics.Realtime) *Stream {
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeatInterval
	}
	return &Stream{
		bus:       bus,
		heartbeat: heartbeat,
		logger:    logger,
		metrics:   m,
	}
}

// Subscribe registers a new subscriber for a peer that is about to be served.
func (s *Stream) Subscribe() (*Subscriber, error) {
	return s.bus.Register()
}

// Serve owns sub: it writes the connection confirmation, then every bus event
// and a heartbeat per interval, until the context ends, a write fails or the
// bus drops the subscription. The subscriber is unregistered and the ticker
// stopped on every return path.
func (s *Stream) Serve(ctx context.Context, sub *Subscriber, w FlushWriter) error {
	defer s.bus.Unregister(sub.ID())

	s.metrics.StreamOpened()
	logger := s.logger.With("subscriber_id", sub.ID())
	logger.Debug("stream opened")

	hello := Event{
		Kind: KindConnection,
		Payload: map[string]any{
			"message":       connectedMessage,
			"subscriber_id": sub.ID().String(),
		},
		Timestamp: sub.ConnectedAt(),
	}
	if err := s.write(w, hello); err != nil {
		logger.Debug("stream closed before confirmation", "error", err)
		return err
	}

	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("stream closed by server")
			return ctx.Err()

		case e, ok := <-sub.Events():
			if !ok {
				logger.Debug("stream subscription dropped by bus")
				return ErrSubscriptionClosed
			}
			if err := s.write(w, e); err != nil {
				logger.Debug("stream write failed", "error", err)
				return err
			}

		case <-ticker.C:
			beat := Event{
				Kind:      KindHeartbeat,
				Payload:   map[string]any{"message": "ping"},
				Timestamp: s.bus.Now(),
			}
			if err := s.write(w, beat); err != nil {
				logger.Debug("stream heartbeat failed", "error", err)
				return err
			}
			s.metrics.HeartbeatSent()
		}
	}
}

func (s *Stream) write(w FlushWriter, e Event) error {
	if err := WriteFrame(w, e); err != nil {
		return err
	}
	return w.Flush()
}
