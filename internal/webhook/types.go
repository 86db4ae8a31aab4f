package webhook

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventAlertTriggered    = "alert.triggered"
	EventAlertAcknowledged = "alert.acknowledged"
	EventAlertResolved     = "alert.resolved"

	defaultMaxAttempts = 5
)

// Target is the single paging endpoint escalations are pushed to.
type Target struct {
	URL    string
	Secret string
}

type Job struct {
	ID          uuid.UUID `json:"id"`
	EventType   string    `json:"event_type"`
	Payload     []byte    `json:"payload"`
	Attempts    int       `json:"attempts"`
	MaxAttempts int       `json:"max_attempts"`
	NextRetryAt time.Time `json:"next_retry_at"`
	LastError   string    `json:"last_error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type EventPayload struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}
