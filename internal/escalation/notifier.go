package escalation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/saturnino-fabrica-de-software/soukhyam/internal/webhook"
)

// Notifier pages an external endpoint through the webhook queue.
type Notifier struct {
	webhookService *webhook.Service
	logger         *slog.Logger
}

func NewNotifier(webhookService *webhook.Service, logger *slog.Logger) *Notifier {
	return &Notifier{
		webhookService: webhookService,
		logger:         logger,
	}
}

func (n *Notifier) Notify(ctx context.Context, alert Alert) error {
	eventType, err := eventTypeFor(alert.Status)
	if err != nil {
		return err
	}

	jobID, err := n.webhookService.Enqueue(eventType, map[string]any{
		"alert": alert,
	})
	if err != nil {
		return fmt.Errorf("enqueue webhook: %w", err)
	}

	n.logger.Info("alert notification queued",
		"alert_id", alert.ID,
		"job_id", jobID,
		"event_type", eventType,
	)

	return nil
}

func eventTypeFor(status Status) (string, error) {
	switch status {
	case StatusActive:
		return webhook.EventAlertTriggered, nil
	case StatusAcknowledged:
		return webhook.EventAlertAcknowledged, nil
	case StatusResolved:
		return webhook.EventAlertResolved, nil
	default:
		return "", fmt.Errorf("unsupported alert status: %s", status)
	}
}
