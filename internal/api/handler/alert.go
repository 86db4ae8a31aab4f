package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/soukhyam/internal/domain"
	"github.com/saturnino-fabrica-de-software/soukhyam/internal/escalation"
)

// AlertService is the operator-facing side of escalation.
type AlertService interface {
	Trigger(ctx context.Context, subjectID, message string) (escalation.Alert, error)
	Acknowledge(ctx context.Context, id uuid.UUID) (escalation.Alert, error)
	Resolve(ctx context.Context, id uuid.UUID) (escalation.Alert, error)
	List() []escalation.Alert
}

type AlertHandler struct {
	service AlertService
	logger  *slog.Logger
}

func NewAlertHandler(service AlertService, logger *slog.Logger) *AlertHandler {
	return &AlertHandler{
		service: service,
		logger:  logger,
	}
}

var errSubjectRequired = errors.New("subject_id is required")

type SOSRequest struct {
	SubjectID string `json:"subject_id"`
	Message   string `json:"message"`
}

// SOSResponse reports the created alert. Broadcast is false when the alert
// was recorded but could not be pushed to live dashboards.
type SOSResponse struct {
	Alert     escalation.Alert `json:"alert"`
	Broadcast bool             `json:"broadcast"`
}

type AlertListResponse struct {
	Alerts []escalation.Alert `json:"alerts"`
	Total  int                `json:"total"`
}

// List handles GET /v1/alerts
func (h *AlertHandler) List(c *fiber.Ctx) error {
	alerts := h.service.List()
	return c.JSON(AlertListResponse{
		Alerts: alerts,
		Total:  len(alerts),
	})
}

// Trigger handles POST /v1/alerts
func (h *AlertHandler) Trigger(c *fiber.Ctx) error {
	var req SOSRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}
	if req.SubjectID == "" {
		return domain.ErrValidationFailed.WithError(errSubjectRequired)
	}

	alert, err := h.service.Trigger(c.UserContext(), req.SubjectID, req.Message)
	if err != nil {
		h.logger.Warn("sos alert recorded without broadcast",
			"alert_id", alert.ID,
			"error", err,
		)
	}

	return c.Status(fiber.StatusCreated).JSON(SOSResponse{
		Alert:     alert,
		Broadcast: err == nil,
	})
}

// Acknowledge handles POST /v1/alerts/:id/acknowledge
func (h *AlertHandler) Acknowledge(c *fiber.Ctx) error {
	id, err := alertID(c)
	if err != nil {
		return err
	}

	alert, err := h.service.Acknowledge(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(alert)
}

// Resolve handles POST /v1/alerts/:id/resolve
func (h *AlertHandler) Resolve(c *fiber.Ctx) error {
	id, err := alertID(c)
	if err != nil {
		return err
	}

	alert, err := h.service.Resolve(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(alert)
}

func alertID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, domain.ErrBadRequest.WithError(err)
	}
	return id, nil
}
