package connection

import (
	"errors"
	"time"
)

type State string

const (
	StateConnecting   State = "connecting"
	StateOpen         State = "open"
	StateReconnecting State = "reconnecting"
	StateClosed       State = "closed"
)

var (
	ErrStreamEnded     = errors.New("realtime stream ended")
	ErrLivenessTimeout = errors.New("no frame received within liveness timeout")
	ErrUnexpectedReply = errors.New("unexpected response from realtime server")
)

// Status is a snapshot of the manager's connectivity.
type Status struct {
	State         State     `json:"state"`
	Attempt       int       `json:"attempt"`
	LastError     error     `json:"-"`
	Offline       bool      `json:"offline"`
	LastHeartbeat time.Time `json:"last_heartbeat,omitempty"`
}

// Backoff returns min(base*2^attempt, max).
func Backoff(attempt int, base, max time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := base
	for i := 0; i < attempt; i++ {
		if d >= max {
			return max
		}
		d *= 2
	}
	if d > max {
		return max
	}
	return d
}
