package handler

import (
	"github.com/gofiber/fiber/v2"
)

const version = "0.1.0"

// SubscriberCounter reports how many stream peers are registered.
type SubscriberCounter interface {
	Len() int
}

type HealthHandler struct {
	subscribers SubscriberCounter
	provider    string
}

func NewHealthHandler(subscribers SubscriberCounter, providerName string) *HealthHandler {
	return &HealthHandler{
		subscribers: subscribers,
		provider:    providerName,
	}
}

type HealthResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version,omitempty"`
	Subscribers *int   `json:"subscribers,omitempty"`
	Provider    string `json:"chat_provider,omitempty"`
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:  "ok",
		Version: version,
	})
}

func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	resp := HealthResponse{
		Status:   "ready",
		Provider: h.provider,
	}
	if h.subscribers != nil {
		n := h.subscribers.Len()
		resp.Subscribers = &n
	}
	return c.JSON(resp)
}
