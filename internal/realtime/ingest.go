package realtime

import (
	"context"
	"log/slog"
)

// Ingest accepts events from any producer and hands each accepted one to the
// bus exactly once. There is no batching and no deduplication.
type Ingest struct {
	bus    *Bus
	logger *slog.Logger
}

func NewIngest(bus *Bus, logger *slog.Logger) *Ingest {
	return &Ingest{
		bus:    bus,
		logger: logger,
	}
}

// Publish validates e and broadcasts it. Any producer timestamp is discarded
// so that the bus clock is the only source of event time.
func (i *Ingest) Publish(ctx context.Context, e Event) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	e.Timestamp = 0
	if e.Payload == nil {
		e.Payload = map[string]any{}
	}

	out := i.bus.Broadcast(e)

	i.logger.Debug("event published",
		"event_type", out.Kind,
		"origin_id", out.OriginID,
		"timestamp", out.Timestamp,
	)
	return nil
}
