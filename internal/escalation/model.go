package escalation

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive       Status = "active"
	StatusAcknowledged Status = "acknowledged"
	StatusResolved     Status = "resolved"
)

// DefaultMessage is used when an SOS is raised without context.
const DefaultMessage = "Emergency support needed"

// Alert is a crisis-escalation record. CreatedAt never changes after Trigger.
type Alert struct {
	ID             uuid.UUID  `json:"id"`
	SubjectID      string     `json:"subject_id"`
	Message        string     `json:"message"`
	Status         Status     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
}

// CanTransition reports whether moving from s to next is allowed:
// active -> acknowledged, active -> resolved, acknowledged -> resolved.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusActive:
		return next == StatusAcknowledged || next == StatusResolved
	case StatusAcknowledged:
		return next == StatusResolved
	default:
		return false
	}
}
