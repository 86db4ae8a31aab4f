package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/soukhyam/internal/chat"
	"github.com/saturnino-fabrica-de-software/soukhyam/internal/domain"
)

// ChatResponder answers one chat turn.
type ChatResponder interface {
	Respond(ctx context.Context, req chat.Request) (*chat.Reply, error)
}

type ChatHandler struct {
	service ChatResponder
}

func NewChatHandler(service ChatResponder) *ChatHandler {
	return &ChatHandler{service: service}
}

// Respond handles POST /v1/chat
func (h *ChatHandler) Respond(c *fiber.Ctx) error {
	var req chat.Request
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	reply, err := h.service.Respond(c.UserContext(), req)
	if err != nil {
		return err
	}

	return c.JSON(reply)
}
