package handler

import (
	"bufio"
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/soukhyam/internal/domain"
	"github.com/saturnino-fabrica-de-software/soukhyam/internal/realtime"
)

// EventPublisher accepts one event submission.
type EventPublisher interface {
	Publish(ctx context.Context, e realtime.Event) error
}

// RealtimeHandler serves the event stream and the publish endpoint. base
// outlives individual requests and is cancelled at shutdown so that open
// streams return.
type RealtimeHandler struct {
	base   context.Context
	stream *realtime.Stream
	ingest EventPublisher
	logger *slog.Logger
}

func NewRealtimeHandler(base context.Context, stream *realtime.Stream, ingest EventPublisher, logger *slog.Logger) *RealtimeHandler {
	return &RealtimeHandler{
		base:   base,
		stream: stream,
		ingest: ingest,
		logger: logger,
	}
}

// PublishRequest is the body of POST /v1/realtime/events.
type PublishRequest struct {
	Type     string         `json:"type"`
	Data     map[string]any `json:"data"`
	OriginID string         `json:"origin_id"`
}

type PublishResponse struct {
	Success bool `json:"success"`
}

// Stream handles GET /v1/realtime/stream
func (h *RealtimeHandler) Stream(c *fiber.Ctx) error {
	sub, err := h.stream.Subscribe()
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
	c.Set(fiber.HeaderAccessControlAllowHeaders, "Cache-Control")
	c.Set("X-Accel-Buffering", "no")

	requestID, _ := c.Locals("requestid").(string)
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		err := h.stream.Serve(h.base, sub, w)
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, realtime.ErrSubscriptionClosed) {
			h.logger.Debug("stream ended",
				"subscriber_id", sub.ID(),
				"request_id", requestID,
				"error", err,
			)
		}
	})

	return nil
}

// Publish handles POST /v1/realtime/events
func (h *RealtimeHandler) Publish(c *fiber.Ctx) error {
	var req PublishRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	event := realtime.Event{
		Kind:     realtime.Kind(req.Type),
		Payload:  req.Data,
		OriginID: req.OriginID,
	}
	if err := h.ingest.Publish(c.UserContext(), event); err != nil {
		return err
	}

	return c.JSON(PublishResponse{Success: true})
}
