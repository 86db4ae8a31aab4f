package escalation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/soukhyam/internal/domain"
	"github.com/saturnino-fabrica-de-software/soukhyam/internal/metrics"
	"github.com/saturnino-fabrica-de-software/soukhyam/internal/realtime"
)

const defaultPublishTimeout = 5 * time.Second

// Publisher hands one event to the broadcast path.
type Publisher interface {
	Publish(ctx context.Context, e realtime.Event) error
}

// AlertNotifier is told about every lifecycle change. It must not block.
type AlertNotifier interface {
	Notify(ctx context.Context, alert Alert) error
}

type Option func(*Coordinator)

func WithPublishTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithNotifier(n AlertNotifier) Option {
	return func(c *Coordinator) {
		c.notifier = n
	}
}

func WithMetrics(m *metrics.Realtime) Option {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

// Coordinator owns the process-lifetime alert sequence, newest first. All
// reads and transitions are serialized by one mutex.
type Coordinator struct {
	mu     sync.Mutex
	alerts []*Alert
	index  map[uuid.UUID]*Alert

	publisher Publisher
	notifier  AlertNotifier
	logger    *slog.Logger
	metrics   *metrics.Realtime
	timeout   time.Duration
	now       func() time.Time
}

func NewCoordinator(publisher Publisher, logger *slog.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		index:     make(map[uuid.UUID]*Alert),
		publisher: publisher,
		logger:    logger,
		timeout:   defaultPublishTimeout,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Trigger records a new active alert and broadcasts it as a sos_alert
// event before returning. The alert exists whether or not the broadcast
// succeeds; a broadcast failure is logged and returned alongside it.
func (c *Coordinator) Trigger(ctx context.Context, subjectID, message string) (Alert, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		message = DefaultMessage
	}

	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}

	alert := &Alert{
		ID:        id,
		SubjectID: subjectID,
		Message:   message,
		Status:    StatusActive,
		CreatedAt: c.now().UTC(),
	}

	c.mu.Lock()
	c.alerts = append([]*Alert{alert}, c.alerts...)
	c.index[alert.ID] = alert
	snapshot := *alert
	c.mu.Unlock()

	c.metrics.AlertTransition(string(StatusActive))
	c.logger.Warn("crisis alert triggered",
		"alert_id", snapshot.ID,
		"subject_id", snapshot.SubjectID,
	)

	c.notify(ctx, snapshot)

	event := realtime.Event{
		Kind: realtime.KindSOSAlert,
		Payload: map[string]any{
			"alert_id":   snapshot.ID.String(),
			"subject_id": snapshot.SubjectID,
			"message":    snapshot.Message,
			"status":     string(snapshot.Status),
		},
		OriginID: snapshot.SubjectID,
	}
	if err := c.publish(ctx, event); err != nil {
		c.metrics.AlertPublishFailed()
		c.logger.Error("failed to broadcast crisis alert",
			"alert_id", snapshot.ID,
			"subject_id", snapshot.SubjectID,
			"error", err,
		)
		return snapshot, fmt.Errorf("broadcast alert %s: %w", snapshot.ID, err)
	}

	return snapshot, nil
}

func (c *Coordinator) Acknowledge(ctx context.Context, id uuid.UUID) (Alert, error) {
	return c.transition(ctx, id, StatusAcknowledged)
}

func (c *Coordinator) Resolve(ctx context.Context, id uuid.UUID) (Alert, error) {
	return c.transition(ctx, id, StatusResolved)
}

// List returns a copy of the alert sequence, newest first.
func (c *Coordinator) List() []Alert {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Alert, len(c.alerts))
	for i, a := range c.alerts {
		out[i] = *a
	}
	return out
}

func (c *Coordinator) Get(id uuid.UUID) (Alert, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	alert, ok := c.index[id]
	if !ok {
		return Alert{}, domain.ErrAlertNotFound
	}
	return *alert, nil
}

// ActiveCount counts alerts that are not resolved yet.
func (c *Coordinator) ActiveCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, a := range c.alerts {
		if a.Status != StatusResolved {
			n++
		}
	}
	return n
}

func (c *Coordinator) transition(ctx context.Context, id uuid.UUID, next Status) (Alert, error) {
	c.mu.Lock()
	alert, ok := c.index[id]
	if !ok {
		c.mu.Unlock()
		return Alert{}, domain.ErrAlertNotFound
	}
	if !alert.Status.CanTransition(next) {
		current := alert.Status
		c.mu.Unlock()
		return Alert{}, domain.ErrInvalidAlertTransition.WithError(
			fmt.Errorf("alert %s is %s, cannot become %s", id, current, next),
		)
	}

	now := c.now().UTC()
	alert.Status = next
	switch next {
	case StatusAcknowledged:
		alert.AcknowledgedAt = &now
	case StatusResolved:
		alert.ResolvedAt = &now
	}
	snapshot := *alert
	c.mu.Unlock()

	c.metrics.AlertTransition(string(next))
	c.logger.Info("crisis alert updated",
		"alert_id", id,
		"status", next,
	)

	c.notify(ctx, snapshot)

	event := realtime.Event{
		Kind: realtime.KindSystemNotification,
		Payload: map[string]any{
			"action":     "alert." + string(next),
			"alert_id":   snapshot.ID.String(),
			"subject_id": snapshot.SubjectID,
			"status":     string(snapshot.Status),
		},
	}
	if err := c.publish(ctx, event); err != nil {
		c.metrics.AlertPublishFailed()
		c.logger.Error("failed to broadcast alert update",
			"alert_id", id,
			"status", next,
			"error", err,
		)
	}

	return snapshot, nil
}

func (c *Coordinator) publish(ctx context.Context, e realtime.Event) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	return c.publisher.Publish(ctx, e)
}

func (c *Coordinator) notify(ctx context.Context, alert Alert) {
	if c.notifier == nil {
		return
	}
	if err := c.notifier.Notify(ctx, alert); err != nil {
		c.logger.Error("failed to notify alert",
			"alert_id", alert.ID,
			"status", alert.Status,
			"error", err,
		)
	}
}
